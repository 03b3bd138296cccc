package archivecmder

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/claire-namusoke/portfolio/pkg/archive"
	"github.com/claire-namusoke/portfolio/pkg/conversation"
)

var _ = Describe("Archive Command", func() {
	var (
		ctx     context.Context
		tmpDir  string
		srcPath string
		dstPath string
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		tmpDir, err = os.MkdirTemp("", "portfolio-archive-test-*")
		Expect(err).NotTo(HaveOccurred())
		srcPath = filepath.Join(tmpDir, "source.db")
		dstPath = filepath.Join(tmpDir, "target.db")
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	makeNode := func(role conversation.Role, text string, parent *archive.Node) *archive.Node {
		return archive.NewNode(archive.Entry{Role: role, Text: text}, parent)
	}

	seed := func(path string, nodes ...*archive.Node) {
		s, err := archive.NewSQLiteStorer(path)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()
		for _, n := range nodes {
			Expect(s.Put(ctx, n)).To(Succeed())
		}
	}

	count := func(path string) int {
		s, err := archive.NewSQLiteStorer(path)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()
		nodes, err := s.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		return len(nodes)
	}

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		cmd := NewArchiveCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(args)
		err := cmd.ExecuteContext(ctx)
		return out.String(), err
	}

	Describe("merge", func() {
		It("merges turns from source into target", func() {
			question := makeNode(conversation.RoleUser, "hello from source", nil)
			seed(srcPath, question, makeNode(conversation.RoleAssistant, "hi back", question))
			seed(dstPath, makeNode(conversation.RoleUser, "hello from target", nil))

			out, err := run("merge", "--db", dstPath, srcPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Merged 2 new turns from 1 sources"))
			Expect(count(dstPath)).To(Equal(3))
		})

		It("deduplicates when merging the same source twice", func() {
			seed(srcPath, makeNode(conversation.RoleUser, "dedup test", nil))
			seed(dstPath)

			_, err := run("merge", "--db", dstPath, srcPath)
			Expect(err).NotTo(HaveOccurred())
			out, err := run("merge", "--db", dstPath, srcPath)
			Expect(err).NotTo(HaveOccurred())

			Expect(out).To(ContainSubstring("0 new, 1 already existed"))
			Expect(count(dstPath)).To(Equal(1))
		})

		It("merges multiple sources", func() {
			src2Path := filepath.Join(tmpDir, "source2.db")
			seed(srcPath, makeNode(conversation.RoleUser, "from source 1", nil))
			seed(src2Path, makeNode(conversation.RoleUser, "from source 2", nil))

			_, err := run("merge", "--db", dstPath, srcPath, src2Path)
			Expect(err).NotTo(HaveOccurred())
			Expect(count(dstPath)).To(Equal(2))
		})

		It("requires at least one source", func() {
			_, err := run("merge", "--db", dstPath)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("list and show", func() {
		var answer *archive.Node

		BeforeEach(func() {
			question := makeNode(conversation.RoleUser, "What tools do you use?", nil)
			answer = makeNode(conversation.RoleAssistant, "SQL and PowerBI.", question)
			seed(dstPath, question, answer)
		})

		It("lists one line per conversation", func() {
			out, err := run("list", "--db", dstPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring(answer.Hash[:16]))
			Expect(out).To(ContainSubstring("What tools do you use?"))
		})

		It("shows a conversation in order", func() {
			out, err := run("show", answer.Hash, "--db", dstPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("user: What tools do you use?\nassistant: SQL and PowerBI.\n"))
		})

		It("fails for an unknown hash", func() {
			_, err := run("show", "deadbeef", "--db", dstPath)
			Expect(err).To(MatchError(ContainSubstring("node not found")))
		})

		It("reports an empty archive", func() {
			out, err := run("list", "--db", filepath.Join(tmpDir, "empty.db"))
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("No archived conversations."))
		})
	})
})
