package lib_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nikolalohinski/terraform-provider-sailfish/lib"
)

var _ = Context("escape", func() {
	DescribeTable("should replace reserved characters",
		func(input, expected string) {
			Expect(lib.Escape(input)).To(Equal(expected))
		},
		Entry("less than", "<", "&lt;"),
		Entry("greater than", ">", "&gt;"),
		Entry("ampersand", "&", "&amp;"),
		Entry("double quote", `"`, "&quot;"),
		Entry("single quote", "'", "&#039;"),
		Entry("nothing to escape", "apple", "apple"),
		Entry("empty", "", ""),
		Entry("mixed", `<a href="x">Tom & Jerry's</a>`, "&lt;a href=&quot;x&quot;&gt;Tom &amp; Jerry&#039;s&lt;/a&gt;"),
		Entry("dangling ampersand", "a &b c", "a &amp;b c"),
		Entry("ampersand at the end", "fish &", "fish &amp;"),
		Entry("multi-byte text", "é<ü>", "é&lt;ü&gt;"),
	)
	DescribeTable("should not escape a string twice",
		func(input string) {
			once := lib.Escape(input)
			Expect(lib.Escape(once)).To(Equal(once))
		},
		Entry("less than", "<"),
		Entry("every reserved character", `<>&"'`),
		Entry("ampersand followed by an entity name without semicolon", "&amp"),
		Entry("text with entities", "Tom &amp; Jerry < &#39; &#x27;"),
	)
	It("should keep well-formed entity references", func() {
		Expect(lib.Escape("&lt; &#60; &#x3C; &copy;")).To(Equal("&lt; &#60; &#x3C; &copy;"))
		Expect(lib.Escape("&#; &#x; &;")).To(Equal("&amp;#; &amp;#x; &amp;;"))
	})
	It("should append to an existing buffer", func() {
		buffer := lib.NewBufferString("<p>")
		lib.EscapeTo(buffer, "1 < 2")
		lib.EscapeTo(buffer, "plain")
		Expect(buffer.String()).To(Equal("<p>1 &lt; 2plain"))
	})
})
