package scanning

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("cleanTranscript", func() {
	var (
		input string
		text  string
		err   error
	)

	JustBeforeEach(func() {
		text, err = cleanTranscript(input)
	})

	When("the transcript is plain text", func() {
		BeforeEach(func() {
			input = "Green Grocer\nMilk 12.90\nTotal 12.90"
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should keep the text", func() {
			Expect(text).To(Equal("Green Grocer\nMilk 12.90\nTotal 12.90"))
		})
	})

	When("the transcript is wrapped in a code block", func() {
		BeforeEach(func() {
			input = "```text\nGreen Grocer\nMilk 12.90\n```"
		})

		It("should strip the fences", func() {
			Expect(text).To(Equal("Green Grocer\nMilk 12.90"))
		})
	})

	When("the transcript has windows line endings and trailing spaces", func() {
		BeforeEach(func() {
			input = "Green Grocer  \r\nMilk 12.90\t\r\n"
		})

		It("should normalise the lines", func() {
			Expect(text).To(Equal("Green Grocer\nMilk 12.90"))
		})
	})

	When("the transcript is blank", func() {
		BeforeEach(func() {
			input = "  ```\n```  "
		})

		It("returns ErrNoText", func() {
			Expect(err).To(MatchError(ErrNoText))
		})
	})
})
