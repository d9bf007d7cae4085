package lib_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nikolalohinski/terraform-provider-sailfish/lib"
)

type bold string

func (v bold) Render(b *lib.Buffer) error {
	_, err := b.WriteString("<b>" + string(v) + "</b>")
	return err
}

type trusted string

func (v trusted) Render(b *lib.Buffer) error {
	_, err := b.WriteString(string(v))
	return err
}

func (v trusted) RenderEscaped(b *lib.Buffer) error {
	return v.Render(b)
}

var _ = Context("render", func() {
	var buffer *lib.Buffer

	BeforeEach(func() {
		buffer = lib.NewBuffer()
	})
	It("should escape strings and leave numbers and booleans as is", func() {
		for _, value := range []interface{}{"c<&", " ", 42, true} {
			Expect(lib.AsValue(value).RenderEscaped(buffer)).To(Succeed())
		}
		Expect(buffer.String()).To(Equal("c&lt;&amp; 42true"))
	})
	It("should write values without escaping", func() {
		for _, value := range []interface{}{"a", "b<", 42.3, uint8(1)} {
			Expect(lib.AsValue(value).Render(buffer)).To(Succeed())
		}
		Expect(buffer.String()).To(Equal("ab<42.31"))
	})
	It("should escape the output of renderers", func() {
		Expect(lib.AsValue(bold("x")).Render(buffer)).To(Succeed())
		Expect(lib.AsValue(bold("y")).RenderEscaped(buffer)).To(Succeed())
		Expect(buffer.String()).To(Equal("<b>x</b>&lt;b&gt;y&lt;/b&gt;"))
	})
	It("should let renderers escape themselves", func() {
		Expect(lib.AsValue(trusted("<i>ok</i>")).RenderEscaped(buffer)).To(Succeed())
		Expect(buffer.String()).To(Equal("<i>ok</i>"))
	})
	It("should escape stringers", func() {
		Expect(lib.AsValue(label("<x>")).RenderEscaped(buffer)).To(Succeed())
		Expect(buffer.String()).To(Equal("label:&lt;x&gt;"))
	})
	It("should refuse values that are not renderable", func() {
		err := lib.AsValue([]int{1}).RenderEscaped(buffer)
		mismatch := new(lib.CapabilityMismatchError)
		Expect(errors.As(err, &mismatch)).To(BeTrue())
		Expect(mismatch.Required).To(Equal(lib.Renderable))
		Expect(lib.AsValue(nil).Render(buffer)).To(MatchError("value of type nil is not renderable (capabilities: debug)"))
		Expect(buffer.IsEmpty()).To(BeTrue())
	})
})
