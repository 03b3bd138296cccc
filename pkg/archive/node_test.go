package archive_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/claire-namusoke/portfolio/pkg/archive"
	"github.com/claire-namusoke/portfolio/pkg/conversation"
)

var _ = Describe("Node", func() {
	user := archive.Entry{Role: conversation.RoleUser, Text: "Why analytics?"}
	reply := archive.Entry{Role: conversation.RoleAssistant, Text: "Because.", InResponseTo: "Why analytics?"}

	It("creates a root node with no parent", func() {
		node := archive.NewNode(user, nil)
		Expect(node.ParentHash).To(BeNil())
		Expect(node.Hash).To(HaveLen(64))
	})

	It("links a child to its parent", func() {
		parent := archive.NewNode(user, nil)
		child := archive.NewNode(reply, parent)
		Expect(child.ParentHash).NotTo(BeNil())
		Expect(*child.ParentHash).To(Equal(parent.Hash))
	})

	It("hashes identical content identically", func() {
		Expect(archive.NewNode(user, nil).Hash).To(Equal(archive.NewNode(user, nil).Hash))
	})

	It("hashes differently under a different parent", func() {
		a := archive.NewNode(user, nil)
		b := archive.NewNode(archive.Entry{Role: conversation.RoleUser, Text: "Hi"}, nil)
		Expect(archive.NewNode(reply, a).Hash).NotTo(Equal(archive.NewNode(reply, b).Hash))
	})

	It("hashes differently for different content", func() {
		Expect(archive.NewNode(user, nil).Hash).NotTo(Equal(archive.NewNode(reply, nil).Hash))
	})

	It("records audio size rather than audio", func() {
		entry := archive.EntryFromTurn(conversation.Turn{
			Role:   conversation.RoleAssistant,
			Audio:  make([]byte, 2048),
			Speech: conversation.SpeechOK,
		})
		Expect(entry.AudioBytes).To(Equal(2048))
		Expect(entry.Speech).To(Equal(conversation.SpeechOK))
	})
})
