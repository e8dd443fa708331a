package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NormalizeAmount", func() {
	var (
		input  any
		result *float64
	)

	JustBeforeEach(func() {
		result = NormalizeAmount(input)
	})

	When("the amount uses a comma thousands separator", func() {
		BeforeEach(func() {
			input = "1,234.56"
		})

		It("drops the comma", func() {
			Expect(result).NotTo(BeNil())
			Expect(*result).To(Equal(1234.56))
		})
	})

	When("both separators appear with the dot first", func() {
		BeforeEach(func() {
			input = "1.234,56"
		})

		It("drops the comma, keeping the dot as the decimal point", func() {
			Expect(result).NotTo(BeNil())
			Expect(*result).To(Equal(1.23456))
		})
	})

	When("the amount has only a comma", func() {
		BeforeEach(func() {
			input = "452,10"
		})

		It("treats the comma as the decimal separator", func() {
			Expect(result).NotTo(BeNil())
			Expect(*result).To(Equal(452.10))
		})
	})

	When("the amount is a plain decimal", func() {
		BeforeEach(func() {
			input = "1234.56"
		})

		It("parses it directly", func() {
			Expect(result).NotTo(BeNil())
			Expect(*result).To(Equal(1234.56))
		})
	})

	When("the amount carries a currency marker", func() {
		BeforeEach(func() {
			input = "GH₵ 452.10"
		})

		It("strips the marker and whitespace", func() {
			Expect(result).NotTo(BeNil())
			Expect(*result).To(Equal(452.10))
		})
	})

	When("the amount is already numeric", func() {
		BeforeEach(func() {
			input = 123.45
		})

		It("passes it through", func() {
			Expect(result).NotTo(BeNil())
			Expect(*result).To(Equal(123.45))
		})
	})

	When("the amount is unparseable", func() {
		BeforeEach(func() {
			input = "call us"
		})

		It("returns nil, never an error", func() {
			Expect(result).To(BeNil())
		})
	})

	When("the amount is missing", func() {
		BeforeEach(func() {
			input = nil
		})

		It("returns nil", func() {
			Expect(result).To(BeNil())
		})
	})
})

var _ = Describe("NormalizeCurrency", func() {
	var (
		input  any
		result *string
	)

	JustBeforeEach(func() {
		result = NormalizeCurrency(input)
	})

	DescribeTable("mapping symbols and variants to ISO codes",
		func(in string, want string) {
			out := NormalizeCurrency(in)
			Expect(out).NotTo(BeNil())
			Expect(*out).To(Equal(want))
		},
		Entry("dollar sign", "$", "USD"),
		Entry("euro sign", "€", "EUR"),
		Entry("pound sign", "£", "GBP"),
		Entry("cedi symbol", "GH₵", "GHS"),
		Entry("cedi cent symbol", "GH¢", "GHS"),
		Entry("cedi legacy code", "ghc", "GHS"),
		Entry("naira sign", "₦", "NGN"),
		Entry("already normalized", "GHS", "GHS"),
		Entry("lowercase code", "usd", "USD"),
		Entry("rand", "zar", "ZAR"),
	)

	When("the currency is unrecognized", func() {
		BeforeEach(func() {
			input = "kes"
		})

		It("passes it through uppercased as a best guess", func() {
			Expect(result).NotTo(BeNil())
			Expect(*result).To(Equal("KES"))
		})
	})

	When("the currency is empty", func() {
		BeforeEach(func() {
			input = "  "
		})

		It("returns nil", func() {
			Expect(result).To(BeNil())
		})
	})

	When("the currency is missing", func() {
		BeforeEach(func() {
			input = nil
		})

		It("returns nil", func() {
			Expect(result).To(BeNil())
		})
	})
})

var _ = Describe("NormalizeDate", func() {
	var (
		input  any
		result *string
	)

	JustBeforeEach(func() {
		result = NormalizeDate(input)
	})

	DescribeTable("coercing supported forms to YYYY-MM-DD",
		func(in string, want string) {
			out := NormalizeDate(in)
			Expect(out).NotTo(BeNil())
			Expect(*out).To(Equal(want))
		},
		Entry("already ISO", "2024-03-05", "2024-03-05"),
		Entry("slash separated year first", "2024/3/5", "2024-03-05"),
		Entry("dot separated year first", "2024.03.05", "2024-03-05"),
		Entry("day month-name year with ordinal", "5th March 2024", "2024-03-05"),
		Entry("day month-name year", "5 March 2024", "2024-03-05"),
		Entry("month-name day year", "March 5, 2024", "2024-03-05"),
		Entry("abbreviated month", "5 Mar 2024", "2024-03-05"),
		Entry("four letter september", "1 Sept 2024", "2024-09-01"),
		Entry("embedded in prose", "Payment is due by 15th January 2025 at the latest", "2025-01-15"),
	)

	When("the calendar date is invalid", func() {
		BeforeEach(func() {
			input = "31 Feb 2024"
		})

		It("returns nil, never an error", func() {
			Expect(result).To(BeNil())
		})
	})

	When("an ISO-looking string has an invalid day", func() {
		BeforeEach(func() {
			input = "2024-02-31"
		})

		It("fails validation by reconstruction", func() {
			Expect(result).To(BeNil())
		})
	})

	When("the text has no date", func() {
		BeforeEach(func() {
			input = "no dates here"
		})

		It("returns nil", func() {
			Expect(result).To(BeNil())
		})
	})

	When("the date is missing", func() {
		BeforeEach(func() {
			input = nil
		})

		It("returns nil", func() {
			Expect(result).To(BeNil())
		})
	})
})
