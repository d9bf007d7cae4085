package lib_test

import (
	"errors"

	"github.com/MakeNowJust/heredoc"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nikolalohinski/terraform-provider-sailfish/lib"
)

var _ = Context("filters", func() {
	var (
		pipeline *lib.Pipeline
		value    interface{}
		chain    string
		out      string
		err      error
	)
	BeforeEach(func() {
		pipeline = lib.NewPipeline(nil, nil)
		value = nil
		chain = ""
	})
	JustBeforeEach(func() {
		invocations, parseErr := lib.ParseInvocations(chain)
		Expect(parseErr).ToNot(HaveOccurred())
		out, err = pipeline.Chain(lib.AsValue(value), invocations...)
	})
	Context("dbg", func() {
		BeforeEach(func() {
			value = "foo\nbar"
			chain = "dbg"
		})
		It("should quote strings and escape control characters", func() {
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(Equal(`"foo\nbar"`))
		})
		Context("when given an argument", func() {
			BeforeEach(func() {
				chain = "dbg(1)"
			})
			It("should fail with an invalid signature", func() {
				Expect(errors.Is(err, lib.ErrInvalidSignature)).To(BeTrue())
				Expect(err.Error()).To(ContainSubstring("wrong signature for 'dbg'"))
			})
		})
	})
	Context("disp", func() {
		BeforeEach(func() {
			value = 42
			chain = "disp"
		})
		It("should display the value", func() {
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(Equal("42"))
		})
	})
	Context("upper, lower and trim", func() {
		BeforeEach(func() {
			value = "  Hello World  "
			chain = "trim | upper"
		})
		It("should change the case and strip surrounding spaces", func() {
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(Equal("HELLO WORLD"))
		})
		Context("lower", func() {
			BeforeEach(func() {
				chain = "lower"
			})
			It("should lower the case", func() {
				Expect(out).To(Equal("  hello world  "))
			})
		})
	})
	Context("truncate", func() {
		BeforeEach(func() {
			value = "héllo world"
			chain = "truncate(5)"
		})
		It("should keep the first characters", func() {
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(Equal("héllo..."))
		})
		Context("when the value is short enough", func() {
			BeforeEach(func() {
				chain = "truncate(20)"
			})
			It("should keep the value as is", func() {
				Expect(out).To(Equal("héllo world"))
			})
		})
		Context("when the length is not a number", func() {
			BeforeEach(func() {
				chain = `truncate("five")`
			})
			It("should fail", func() {
				Expect(errors.Is(err, lib.ErrInvalidSignature)).To(BeTrue())
			})
		})
		Context("when the length is missing", func() {
			BeforeEach(func() {
				chain = "truncate"
			})
			It("should fail", func() {
				Expect(err).To(MatchError(ContainSubstring("expected 1 argument(s), got 0")))
			})
		})
	})
	Context("indent", func() {
		BeforeEach(func() {
			value = "first\nsecond"
			chain = "indent(2)"
		})
		It("should prefix every line", func() {
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(Equal("  first\n  second"))
		})
		Context("when the width is negative", func() {
			BeforeEach(func() {
				chain = "indent(-2)"
			})
			It("should fail", func() {
				Expect(errors.Is(err, lib.ErrInvalidSignature)).To(BeTrue())
			})
		})
	})
	Context("json", func() {
		BeforeEach(func() {
			value = map[string]interface{}{"b": []interface{}{1, "two"}, "a": nil}
			chain = "json"
		})
		It("should marshal to JSON with sorted keys", func() {
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(Equal(`{"a":null,"b":[1,"two"]}`))
		})
	})
	Context("yaml", func() {
		BeforeEach(func() {
			value = map[string]interface{}{"a": map[string]interface{}{"b": []interface{}{1, 2}}}
			chain = "yaml"
		})
		It("should marshal to YAML with two spaces", func() {
			Expect(err).ToNot(HaveOccurred())
			assertPrettyDiff(heredoc.Doc(`
				a:
				  b:
				    - 1
				    - 2
			`), out)
		})
		Context("with a custom indent", func() {
			BeforeEach(func() {
				chain = "yaml(indent=4)"
			})
			It("should use the given indent", func() {
				Expect(err).ToNot(HaveOccurred())
				assertPrettyDiff(heredoc.Doc(`
					a:
					    b:
					        - 1
					        - 2
				`), out)
			})
		})
		Context("with an unknown keyword argument", func() {
			BeforeEach(func() {
				chain = "yaml(width=4)"
			})
			It("should fail", func() {
				Expect(errors.Is(err, lib.ErrInvalidSignature)).To(BeTrue())
				Expect(err.Error()).To(ContainSubstring("unexpected keyword argument 'width'"))
			})
		})
	})
	Context("toml", func() {
		BeforeEach(func() {
			value = map[string]interface{}{"name": "sailfish", "port": 8080}
			chain = "toml"
		})
		It("should marshal to TOML", func() {
			Expect(err).ToNot(HaveOccurred())
			assertPrettyDiff(heredoc.Doc(`
				name = 'sailfish'
				port = 8080
			`), out)
		})
		Context("when the value is a string", func() {
			BeforeEach(func() {
				value = "sailfish"
			})
			It("should fail", func() {
				Expect(err).To(MatchError(ContainSubstring("neither a map nor a struct")))
			})
		})
	})
	Context("striptags", func() {
		BeforeEach(func() {
			value = `<p class="x">Hello <b>world</b></p>`
			chain = "striptags"
		})
		It("should drop every tag", func() {
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(Equal("Hello world"))
		})
	})
	Context("markdown", func() {
		BeforeEach(func() {
			value = "# Title\n\nSome *text*"
			chain = "markdown"
		})
		It("should convert to HTML", func() {
			Expect(err).ToNot(HaveOccurred())
			assertPrettyDiff(heredoc.Doc(`
				<h1>Title</h1>
				<p>Some <em>text</em></p>
			`), out)
		})
	})
	Context("ordinal", func() {
		BeforeEach(func() {
			value = 3
			chain = "ordinal"
		})
		It("should add the english suffix", func() {
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(Equal("3rd"))
		})
		Context("when the value is a string", func() {
			BeforeEach(func() {
				value = "3"
			})
			It("should fail with a capability mismatch", func() {
				mismatch := new(lib.CapabilityMismatchError)
				Expect(errors.As(err, &mismatch)).To(BeTrue())
				Expect(mismatch.Filter).To(Equal("ordinal"))
				Expect(mismatch.Required).To(Equal(lib.Numeric))
			})
		})
	})
	Context("bytes", func() {
		BeforeEach(func() {
			value = 82854982
			chain = "bytes"
		})
		It("should format a human readable size", func() {
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(Equal("83 MB"))
		})
		Context("when the value is negative", func() {
			BeforeEach(func() {
				value = -1
			})
			It("should fail", func() {
				Expect(err).To(MatchError(ContainSubstring("not a positive number")))
			})
		})
	})
	It("should register every built-in filter", func() {
		Expect(lib.Filters.Names()).To(Equal([]string{
			"bytes", "dbg", "disp", "indent", "json", "lower", "markdown", "ordinal",
			"striptags", "toml", "trim", "truncate", "upper", "yaml",
		}))
	})
})
