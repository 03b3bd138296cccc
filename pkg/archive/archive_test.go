package archive_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/claire-namusoke/portfolio/pkg/archive"
	"github.com/claire-namusoke/portfolio/pkg/conversation"
)

var _ = Describe("Archiver", func() {
	var (
		archiver *archive.Archiver
		ctx      context.Context
	)

	transcript := []conversation.Turn{
		conversation.UserTurn("Why did you get into analytics?"),
		{Role: conversation.RoleAssistant, Text: "Because I love data-driven decisions.", InResponseTo: "Why did you get into analytics?"},
	}

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		archiver, err = archive.Open("", zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(archiver.Close()).To(Succeed())
	})

	It("returns an empty head for an empty transcript", func() {
		head, err := archiver.Archive(ctx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(head).To(BeEmpty())
	})

	It("archives turns and reads them back oldest first", func() {
		head, err := archiver.Archive(ctx, transcript)
		Expect(err).NotTo(HaveOccurred())

		history, err := archiver.History(ctx, head)
		Expect(err).NotTo(HaveOccurred())
		Expect(history.Depth).To(Equal(2))
		Expect(history.HeadHash).To(Equal(head))
		Expect(history.Turns[0].Role).To(Equal(conversation.RoleUser))
		Expect(history.Turns[0].ParentHash).To(BeNil())
		Expect(history.Turns[1].Text).To(Equal("Because I love data-driven decisions."))
		Expect(history.Turns[1].ParentHash).NotTo(BeNil())
	})

	It("collapses identical transcripts", func() {
		first, err := archiver.Archive(ctx, transcript)
		Expect(err).NotTo(HaveOccurred())
		second, err := archiver.Archive(ctx, transcript)
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(Equal(first))

		stats, err := archiver.Stats(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats).To(Equal(archive.Stats{TotalNodes: 2, RootCount: 1, LeafCount: 1}))
	})

	It("lists one history per distinct conversation", func() {
		_, err := archiver.Archive(ctx, transcript)
		Expect(err).NotTo(HaveOccurred())
		_, err = archiver.Archive(ctx, []conversation.Turn{conversation.UserTurn("Hello")})
		Expect(err).NotTo(HaveOccurred())

		histories, err := archiver.Histories(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(histories).To(HaveLen(2))
	})

	It("reports unknown heads", func() {
		_, err := archiver.History(ctx, "missing")
		Expect(err).To(HaveOccurred())
	})
})
