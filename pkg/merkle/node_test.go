package merkle_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/merkle"
)

var _ = Describe("Node", func() {
	user := func(text string) llm.ConversationTurn { return llm.NewTextTurn(llm.RoleUser, text) }
	assistant := func(text string) llm.ConversationTurn { return llm.NewTextTurn(llm.RoleAssistant, text) }

	Describe("NewNode", func() {
		Context("when creating the first turn (no parent)", func() {
			It("keeps the turn", func() {
				node := merkle.NewNode(user("hello"), nil)

				Expect(node.Turn).To(Equal(user("hello")))
				Expect(node.ParentHash).To(BeEmpty())
			})

			It("produces consistent hashes for the same turn", func() {
				Expect(merkle.NewNode(user("same"), nil).Hash).To(Equal(merkle.NewNode(user("same"), nil).Hash))
			})

			It("distinguishes roles and content", func() {
				Expect(merkle.NewNode(user("a"), nil).Hash).NotTo(Equal(merkle.NewNode(user("b"), nil).Hash))
				Expect(merkle.NewNode(user("a"), nil).Hash).NotTo(Equal(merkle.NewNode(assistant("a"), nil).Hash))
			})

			It("produces a valid SHA-256 hex string (64 characters)", func() {
				Expect(merkle.NewNode(user("test"), nil).Hash).To(MatchRegexp("^[a-f0-9]{64}$"))
			})
		})

		Context("when creating a later turn", func() {
			var parent *merkle.Node

			BeforeEach(func() {
				parent = merkle.NewNode(user("parent"), nil)
			})

			It("links the child to the parent", func() {
				child := merkle.NewNode(assistant("child"), parent)

				Expect(child.ParentHash).To(Equal(parent.Hash))
			})

			It("produces different hashes for the same turn under different parents", func() {
				other := merkle.NewNode(user("different parent"), nil)

				Expect(merkle.NewNode(assistant("same"), parent).Hash).
					NotTo(Equal(merkle.NewNode(assistant("same"), other).Hash))
			})
		})
	})

	Describe("Chain", func() {
		It("links turns oldest first", func() {
			nodes := merkle.Chain([]llm.ConversationTurn{user("1"), assistant("2"), user("3")})

			Expect(nodes).To(HaveLen(3))
			Expect(nodes[0].ParentHash).To(BeEmpty())
			Expect(nodes[1].ParentHash).To(Equal(nodes[0].Hash))
			Expect(nodes[2].ParentHash).To(Equal(nodes[1].Hash))
		})

		It("shares a prefix between a history and its continuation", func() {
			history := []llm.ConversationTurn{user("1"), assistant("2")}
			continued := append(append([]llm.ConversationTurn{}, history...), user("3"))

			Expect(merkle.Chain(continued)[1].Hash).To(Equal(merkle.Head(history).Hash))
		})

		It("branches when histories diverge", func() {
			a := merkle.Head([]llm.ConversationTurn{user("1"), assistant("yes")})
			b := merkle.Head([]llm.ConversationTurn{user("1"), assistant("no")})

			Expect(a.Hash).NotTo(Equal(b.Hash))
			Expect(a.ParentHash).To(Equal(b.ParentHash))
		})
	})

	Describe("Head", func() {
		It("is nil for an empty history", func() {
			Expect(merkle.Head(nil)).To(BeNil())
		})
	})
})
