package archive_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/claire-namusoke/portfolio/pkg/archive"
	"github.com/claire-namusoke/portfolio/pkg/conversation"
)

func entry(role conversation.Role, text string) archive.Entry {
	return archive.Entry{Role: role, Text: text}
}

var _ = Describe("SQLiteStorer", func() {
	It("creates a file database", func() {
		dbPath := filepath.Join(GinkgoT().TempDir(), "archive.db")

		s, err := archive.NewSQLiteStorer(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		_, err = os.Stat(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	It("persists across reopen", func() {
		ctx := context.Background()
		dbPath := filepath.Join(GinkgoT().TempDir(), "archive.db")

		s, err := archive.NewSQLiteStorer(dbPath)
		Expect(err).NotTo(HaveOccurred())
		node := archive.NewNode(entry(conversation.RoleUser, "kept"), nil)
		Expect(s.Put(ctx, node)).To(Succeed())
		Expect(s.Close()).To(Succeed())

		s, err = archive.NewSQLiteStorer(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		got, err := s.Get(ctx, node.Hash)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Entry.Text).To(Equal("kept"))
	})
})

var _ = Describe("Storer implementations", func() {
	storers := map[string]func() archive.Storer{
		"MemoryStorer": func() archive.Storer { return archive.NewMemoryStorer() },
		"SQLiteStorer": func() archive.Storer {
			s, err := archive.NewSQLiteStorer(":memory:")
			Expect(err).NotTo(HaveOccurred())
			return s
		},
	}

	for name, factory := range storers {
		Describe(name, func() {
			var (
				storer archive.Storer
				ctx    context.Context
			)

			BeforeEach(func() {
				ctx = context.Background()
				storer = factory()
			})

			AfterEach(func() {
				Expect(storer.Close()).To(Succeed())
			})

			It("stores and retrieves a node", func() {
				node := archive.NewNode(entry(conversation.RoleUser, "hello"), nil)
				Expect(storer.Put(ctx, node)).To(Succeed())

				got, err := storer.Get(ctx, node.Hash)
				Expect(err).NotTo(HaveOccurred())
				Expect(got.Hash).To(Equal(node.Hash))
				Expect(got.Entry).To(Equal(node.Entry))
				Expect(got.ParentHash).To(BeNil())
			})

			It("returns ErrNotFound for unknown hashes", func() {
				_, err := storer.Get(ctx, "nope")
				Expect(err).To(MatchError(archive.ErrNotFound{Hash: "nope"}))

				has, err := storer.Has(ctx, "nope")
				Expect(err).NotTo(HaveOccurred())
				Expect(has).To(BeFalse())
			})

			It("deduplicates identical nodes", func() {
				a := archive.NewNode(entry(conversation.RoleUser, "hello"), nil)
				b := archive.NewNode(entry(conversation.RoleUser, "hello"), nil)
				Expect(storer.Put(ctx, a)).To(Succeed())
				Expect(storer.Put(ctx, b)).To(Succeed())

				nodes, err := storer.List(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(nodes).To(HaveLen(1))
			})

			It("tracks roots, leaves and branches", func() {
				q := archive.NewNode(entry(conversation.RoleUser, "What is 2+2?"), nil)
				r1 := archive.NewNode(entry(conversation.RoleAssistant, "4."), q)
				r2 := archive.NewNode(entry(conversation.RoleAssistant, "Four!"), q)
				for _, n := range []*archive.Node{q, r1, r2} {
					Expect(storer.Put(ctx, n)).To(Succeed())
				}

				roots, err := storer.Roots(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(roots).To(HaveLen(1))
				Expect(roots[0].Hash).To(Equal(q.Hash))

				leaves, err := storer.Leaves(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(leaves).To(HaveLen(2))

				path, err := archive.Ancestry(ctx, storer, r2.Hash)
				Expect(err).NotTo(HaveOccurred())
				Expect(path).To(HaveLen(2))
				Expect(path[0].Hash).To(Equal(r2.Hash))
				Expect(path[1].Hash).To(Equal(q.Hash))
			})

			It("lists in insertion order", func() {
				a := archive.NewNode(entry(conversation.RoleUser, "a"), nil)
				b := archive.NewNode(entry(conversation.RoleAssistant, "b"), a)
				c := archive.NewNode(entry(conversation.RoleUser, "c"), b)
				for _, n := range []*archive.Node{a, b, c} {
					Expect(storer.Put(ctx, n)).To(Succeed())
				}

				nodes, err := storer.List(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(nodes).To(HaveLen(3))
				Expect(nodes[0].Hash).To(Equal(a.Hash))
				Expect(nodes[2].Hash).To(Equal(c.Hash))
			})
		})
	}
})
