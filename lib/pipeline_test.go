package lib_test

import (
	"errors"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nikolalohinski/terraform-provider-sailfish/lib"
)

var _ = Context("pipeline", func() {
	var (
		pipeline *lib.Pipeline
		buffer   *lib.Buffer
		logs     *strings.Builder
	)
	BeforeEach(func() {
		logs = new(strings.Builder)
		pipeline = lib.NewPipeline(lib.Filters, hclog.New(&hclog.LoggerOptions{
			Level:  hclog.Trace,
			Output: logs,
		}))
		buffer = lib.NewBufferString("<p>")
	})
	It("should escape the debug representation of a string", func() {
		Expect(pipeline.Emit(buffer, lib.EmitEscaped, lib.AsValue("foo\nbar"), lib.Invoke("dbg"))).To(Succeed())
		Expect(buffer.String()).To(Equal(`<p>&quot;foo\nbar&quot;`))
	})
	It("should write the debug representation of a string as is when raw", func() {
		Expect(pipeline.Emit(buffer, lib.EmitRaw, lib.AsValue("foo\nbar"), lib.Invoke("dbg"))).To(Succeed())
		Expect(buffer.String()).To(Equal(`<p>"foo\nbar"`))
	})
	It("should not escape twice", func() {
		Expect(pipeline.EmitExpression(buffer, lib.EmitEscaped, lib.AsValue("<"), "disp")).To(Succeed())
		Expect(pipeline.EmitExpression(buffer, lib.EmitEscaped, lib.AsValue(lib.Escape("<")), "disp")).To(Succeed())
		Expect(buffer.String()).To(Equal("<p>&lt;&lt;"))
	})
	It("should fail on unknown filters without writing anything", func() {
		err := pipeline.Emit(buffer, lib.EmitEscaped, lib.AsValue("foo"), lib.Invoke("upper"), lib.Invoke("shout"))
		unknown := new(lib.UnknownFilterError)
		Expect(errors.As(err, &unknown)).To(BeTrue())
		Expect(unknown.Name).To(Equal("shout"))
		Expect(err).To(MatchError("failed to apply 2nd filter 'shout': filter 'shout' does not exist"))
		Expect(buffer.String()).To(Equal("<p>"))
		Expect(logs.String()).To(ContainSubstring("filter failed"))
	})
	It("should apply filters left to right", func() {
		out, err := pipeline.Chain(lib.AsValue("abcdef"), lib.Invoke("truncate", 3), lib.Invoke("upper"))
		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(Equal("ABC..."))

		out, err = pipeline.Chain(lib.AsValue("x"), lib.Invoke("dbg"), lib.Invoke("dbg"))
		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(Equal(`"\"x\""`))
	})
	It("should equal the composition of single filters", func() {
		f := MustReturn(pipeline.Apply(lib.AsValue("Sail"), "lower"))
		g := MustReturn(pipeline.Apply(lib.AsValue(f), "dbg"))
		Expect(MustReturn(pipeline.Chain(lib.AsValue("Sail"), lib.Invoke("lower"), lib.Invoke("dbg")))).To(Equal(g))
		Expect(g).To(Equal(`"sail"`))
	})
	It("should check capabilities before calling a filter", func() {
		_, err := pipeline.Apply(lib.AsValue(map[string]interface{}{}), "upper")
		Expect(err).To(MatchError("filter 'upper' requires a display value, got map[string]interface {} (capabilities: debug)"))
	})
	It("should render the value itself without filters", func() {
		Expect(pipeline.Emit(buffer, lib.EmitEscaped, lib.AsValue("a&b"))).To(Succeed())
		Expect(pipeline.Emit(buffer, lib.EmitRaw, lib.AsValue("</p>"))).To(Succeed())
		Expect(buffer.String()).To(Equal("<p>a&amp;b</p>"))

		err := pipeline.Emit(buffer, lib.EmitRaw, lib.AsValue(nil))
		Expect(err).To(MatchError(ContainSubstring("failed to render value")))
		Expect(buffer.String()).To(Equal("<p>a&amp;b</p>"))
	})
	It("should parse filter expressions", func() {
		Expect(pipeline.EmitExpression(buffer, lib.EmitRaw, lib.AsValue("  sailfish "), `trim | truncate(4) | upper`)).To(Succeed())
		Expect(buffer.String()).To(Equal("<p>SAIL..."))

		Expect(pipeline.EmitExpression(buffer, lib.EmitRaw, lib.AsValue("x"), "upper |")).To(MatchError(ContainSubstring("failed to parse filters 'upper |'")))
	})
	It("should use a custom set of filters", func() {
		filters := lib.NewFilterSet(&lib.Filter{
			Name:     "shout",
			Requires: lib.Displayable,
			Function: func(in *lib.Value, params *lib.Params) (string, error) {
				s, err := in.Display()
				return s + "!", err
			},
		})
		custom := lib.NewPipeline(lib.Filters.Update(filters), nil)
		Expect(custom.EmitExpression(buffer, lib.EmitEscaped, lib.AsValue("<hi>"), "upper | shout")).To(Succeed())
		Expect(buffer.String()).To(Equal("<p>&lt;HI&gt;!"))

		_, err := pipeline.Apply(lib.AsValue("hi"), "shout")
		Expect(err).To(MatchError("filter 'shout' does not exist"))
	})
	It("should share parsed invocations between concurrent chains", func() {
		invocations, err := lib.ParseInvocations("yaml")
		Expect(err).ToNot(HaveOccurred())
		value := lib.AsValue(map[string]interface{}{"a": []interface{}{1}})

		const workers = 16
		outputs := make([]string, workers)
		failures := make([]error, workers)
		group := new(sync.WaitGroup)
		for index := 0; index < workers; index++ {
			group.Add(1)
			go func(index int) {
				defer group.Done()
				outputs[index], failures[index] = pipeline.Chain(value, invocations...)
			}(index)
		}
		group.Wait()

		for index := 0; index < workers; index++ {
			Expect(failures[index]).ToNot(HaveOccurred())
			Expect(outputs[index]).To(Equal("a:\n  - 1\n"))
		}
		Expect(invocations[0].Params.KwArgs).To(BeEmpty())
	})
	Context("directives", func() {
		It("should map tag openers", func() {
			Expect(MustReturn(lib.ParseDirective("<%="))).To(Equal(lib.EmitEscaped))
			Expect(MustReturn(lib.ParseDirective("<%-"))).To(Equal(lib.EmitRaw))
			_, err := lib.ParseDirective("<%#")
			Expect(err).To(HaveOccurred())
		})
		It("should map names", func() {
			Expect(MustReturn(lib.ParseDirectiveName("emit-raw"))).To(Equal(lib.EmitRaw))
			Expect(lib.EmitEscaped.String()).To(Equal("emit-escaped"))
			_, err := lib.ParseDirectiveName("emit")
			Expect(err).To(MatchError("unknown directive 'emit', expected 'emit-escaped' or 'emit-raw'"))
		})
	})
})

var _ = Context("filter set", func() {
	noop := func(in *lib.Value, params *lib.Params) (string, error) { return "", nil }

	It("should refuse duplicates and incomplete filters", func() {
		set := lib.NewFilterSet()
		Expect(set.Register(&lib.Filter{Name: "a", Function: noop})).To(Succeed())
		Expect(set.Register(&lib.Filter{Name: "a", Function: noop})).To(MatchError("filter 'a' is already registered"))
		Expect(set.Register(&lib.Filter{Name: "b"})).To(HaveOccurred())
		Expect(set.Exists("a")).To(BeTrue())
		Expect(set.Exists("b")).To(BeFalse())
	})
	It("should replace existing filters", func() {
		set := lib.NewFilterSet(&lib.Filter{Name: "a", Requires: lib.Numeric, Function: noop})
		set.Replace(&lib.Filter{Name: "a", Requires: lib.Debuggable, Function: noop})
		filter, ok := set.Get("a")
		Expect(ok).To(BeTrue())
		Expect(filter.Requires).To(Equal(lib.Debuggable))
	})
	It("should update without modifying either set", func() {
		first := lib.NewFilterSet(&lib.Filter{Name: "a", Function: noop}, &lib.Filter{Name: "b", Function: noop})
		second := lib.NewFilterSet(&lib.Filter{Name: "c", Function: noop})
		Expect(first.Update(second).Names()).To(Equal([]string{"a", "b", "c"}))
		Expect(first.Names()).To(Equal([]string{"a", "b"}))
		Expect(second.Names()).To(Equal([]string{"c"}))
	})
})
