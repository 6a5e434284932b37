package scanning

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("cleanTranscript", func() {
	var (
		input  string
		output string
	)

	JustBeforeEach(func() {
		output = cleanTranscript(input)
	})

	When("the transcript is plain text", func() {
		BeforeEach(func() {
			input = "  INDOMARET\nTOTAL 50.000  \n"
		})

		It("should trim surrounding whitespace", func() {
			Expect(output).To(Equal("INDOMARET\nTOTAL 50.000"))
		})
	})

	When("the transcript is wrapped in a code fence with a language tag", func() {
		BeforeEach(func() {
			input = "```text\nINDOMARET\nTOTAL 50.000\n```"
		})

		It("should remove the fence", func() {
			Expect(output).To(Equal("INDOMARET\nTOTAL 50.000"))
		})
	})

	When("the transcript is wrapped in a bare code fence", func() {
		BeforeEach(func() {
			input = "```\nKOPI 25.000\n```\n"
		})

		It("should remove the fence", func() {
			Expect(output).To(Equal("KOPI 25.000"))
		})
	})

	When("the transcript uses Windows line endings", func() {
		BeforeEach(func() {
			input = "A\r\nB"
		})

		It("should normalize them", func() {
			Expect(output).To(Equal("A\nB"))
		})
	})

	When("the transcript is only a fence", func() {
		BeforeEach(func() {
			input = "```"
		})

		It("should be empty", func() {
			Expect(output).To(BeEmpty())
		})
	})
})
