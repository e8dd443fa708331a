package extraction

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// mockCompleter is a mock implementation of completion.Completer
type mockCompleter struct {
	reply       string
	err         error
	lastPrompt  string
	completions int
}

func (m *mockCompleter) Complete(_ context.Context, prompt string) (string, error) {
	m.lastPrompt = prompt
	m.completions++
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockCompleter) Close() error {
	return nil
}

var _ = Describe("parseFieldReply", func() {
	var (
		reply  string
		fields map[string]any
	)

	JustBeforeEach(func() {
		fields = parseFieldReply(reply)
	})

	When("the reply is a structured envelope with text segments", func() {
		BeforeEach(func() {
			reply = `{"content":[{"type":"text","text":"Here you go: "},{"type":"text","text":"{\"provider\":\"ACME\",\"amount\":452.10,\"currency\":\"GHS\",\"due_date\":\"2024-03-10\",\"account_number\":null,\"invoice_number\":null,\"period_start\":null,\"period_end\":null}"}]}`
		})

		It("concatenates the segments and parses the embedded object", func() {
			Expect(fields["provider"]).To(Equal("ACME"))
			Expect(fields["amount"]).To(Equal(452.10))
			Expect(fields["currency"]).To(Equal("GHS"))
		})
	})

	When("the reply embeds the object in prose", func() {
		BeforeEach(func() {
			reply = "Sure! Here are the fields:\n{\"provider\": \"ACME\", \"due_date\": \"2024-03-10\"}\nLet me know if you need anything else."
		})

		It("recovers the first top-level object", func() {
			Expect(fields["provider"]).To(Equal("ACME"))
			Expect(fields["due_date"]).To(Equal("2024-03-10"))
		})
	})

	When("the reply is wrapped in a markdown code block", func() {
		BeforeEach(func() {
			reply = "```json\n{\"provider\": \"ACME\"}\n```"
		})

		It("still recovers the object", func() {
			Expect(fields["provider"]).To(Equal("ACME"))
		})
	})

	When("the reply has no JSON object at all", func() {
		BeforeEach(func() {
			reply = "I could not read this bill."
		})

		It("returns an empty result, not an error", func() {
			Expect(fields).To(BeEmpty())
		})
	})

	When("the object is malformed", func() {
		BeforeEach(func() {
			reply = `{"provider": "ACME",`
		})

		It("returns an empty result", func() {
			Expect(fields).To(BeEmpty())
		})
	})

	When("a field has an impossible shape", func() {
		BeforeEach(func() {
			reply = `{"amount": {"value": 12}}`
		})

		It("fails schema validation and returns an empty result", func() {
			Expect(fields).To(BeEmpty())
		})
	})

	When("the amount comes back as a string", func() {
		BeforeEach(func() {
			reply = `{"amount": "GHS 452.10"}`
		})

		It("is accepted for the normalizer to coerce", func() {
			Expect(fields["amount"]).To(Equal("GHS 452.10"))
		})
	})
})

var _ = Describe("clipText", func() {
	When("the text fits the budget", func() {
		It("is returned unchanged", func() {
			Expect(clipText("short bill", 100)).To(Equal("short bill"))
		})
	})

	When("the text exceeds the budget", func() {
		var clipped string

		BeforeEach(func() {
			clipped = clipText(strings.Repeat("h", 900)+strings.Repeat("t", 900), 1000)
		})

		It("keeps the head and the tail with an elision marker", func() {
			Expect(clipped).To(HavePrefix("hhh"))
			Expect(clipped).To(HaveSuffix("ttt"))
			Expect(clipped).To(ContainSubstring("\n...\n"))
		})

		It("keeps roughly 60% head and 30% tail", func() {
			parts := strings.Split(clipped, "\n...\n")
			Expect(parts).To(HaveLen(2))
			Expect(parts[0]).To(HaveLen(600))
			Expect(parts[1]).To(HaveLen(300))
		})
	})

	When("a cut point lands inside a multi-byte rune", func() {
		It("backs off to a rune boundary and stays valid UTF-8", func() {
			clipped := clipText("a"+strings.Repeat("₵", 500)+"b", 100)
			Expect(utf8.ValidString(clipped)).To(BeTrue())
			Expect(clipped).To(ContainSubstring("\n...\n"))
		})
	})
})

var _ = Describe("ModelExtractor", func() {
	var (
		completer *mockCompleter
		extractor *ModelExtractor
		fields    map[string]any
		err       error
	)

	BeforeEach(func() {
		completer = &mockCompleter{}
		extractor = NewModelExtractor(completer)
	})

	JustBeforeEach(func() {
		fields, err = extractor.Extract(context.Background(), "ACME Power\nTotal Due: GHS 452.10")
	})

	When("the backend replies with clean JSON", func() {
		BeforeEach(func() {
			completer.reply = `{"provider": "ACME Power", "amount": 452.10, "currency": "GHS", "due_date": null, "account_number": null, "invoice_number": null, "period_start": null, "period_end": null}`
		})

		It("returns the parsed fields", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(fields["provider"]).To(Equal("ACME Power"))
		})

		It("includes the bill text in the prompt", func() {
			Expect(completer.lastPrompt).To(ContainSubstring("Total Due: GHS 452.10"))
		})

		It("instructs the backend to keep missing keys as null", func() {
			Expect(completer.lastPrompt).To(ContainSubstring("set it to null"))
		})
	})

	When("the backend replies with prose only", func() {
		BeforeEach(func() {
			completer.reply = "no structured data found"
		})

		It("returns an empty result without error", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(fields).To(BeEmpty())
		})
	})

	When("the backend transport fails", func() {
		BeforeEach(func() {
			completer.err = errors.New("connection refused")
		})

		It("surfaces the error for the orchestrator to absorb", func() {
			Expect(err).To(HaveOccurred())
			Expect(fields).To(BeNil())
		})
	})
})
