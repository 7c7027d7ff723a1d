package llm_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/llm"
)

var _ = Describe("ValidateInput", func() {
	problemsOf := func(err error) []string {
		inputErr, ok := err.(*llm.InputError)
		Expect(ok).To(BeTrue(), "expected *llm.InputError, got %T", err)
		return inputErr.Problems
	}

	It("accepts well-formed turns", func() {
		err := llm.ValidateInput([]llm.ConversationTurn{
			llm.NewTextTurn(llm.RoleUser, "hello"),
			llm.NewTextTurn(llm.RoleAssistant, ""),
			{Role: llm.RoleUser, Content: []llm.ContentPart{llm.FilePart("notes.pdf", pdfDataURI)}},
		})

		Expect(err).NotTo(HaveOccurred())
	})

	It("ignores members it does not interpret", func() {
		part := llm.TextPart("hi")
		part.Extra = map[string]json.RawMessage{"annotations": json.RawMessage(`[]`)}

		err := llm.ValidateInput([]llm.ConversationTurn{{
			Role:    llm.RoleUser,
			Content: []llm.ContentPart{part},
			Extra:   map[string]json.RawMessage{"type": json.RawMessage(`"message"`), "id": json.RawMessage(`"msg_1"`)},
		}})

		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects unknown roles", func() {
		err := llm.ValidateInput([]llm.ConversationTurn{
			llm.NewTextTurn("system", "hello"),
		})

		Expect(problemsOf(err)).To(ConsistOf(ContainSubstring("input[0].role must be one of")))
	})

	It("rejects turns without content", func() {
		err := llm.ValidateInput([]llm.ConversationTurn{
			{Role: llm.RoleUser},
		})

		Expect(problemsOf(err)).To(ConsistOf("input[0].content must contain at least 1 part(s)"))
	})

	It("rejects unknown content part types", func() {
		err := llm.ValidateInput([]llm.ConversationTurn{
			llm.NewTextTurn(llm.RoleUser, "ok"),
			{Role: llm.RoleUser, Content: []llm.ContentPart{llm.TextPart("ok"), {Type: "input_image"}}},
		})

		Expect(problemsOf(err)).To(ConsistOf(ContainSubstring("input[1].content[1].type must be one of")))
	})

	It("requires a filename and a data URI on file parts", func() {
		err := llm.ValidateInput([]llm.ConversationTurn{
			{Role: llm.RoleUser, Content: []llm.ContentPart{llm.FilePart("", "not a data uri")}},
		})

		Expect(problemsOf(err)).To(ConsistOf(
			"input[0].content[0].filename is required",
			"input[0].content[0].file_data must be a data URI",
		))
	})

	It("prefixes the error message", func() {
		err := llm.ValidateInput([]llm.ConversationTurn{{Role: llm.RoleUser}})

		Expect(err.Error()).To(HavePrefix("invalid input: "))
	})
})
