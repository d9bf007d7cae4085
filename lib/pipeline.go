package lib

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

const (
	tagOpenEscaped = "<%="
	tagOpenRaw     = "<%-"
	tagClose       = "%>"
)

// Directive tells whether a fragment is HTML escaped before being written.
type Directive int

const (
	EmitEscaped Directive = iota
	EmitRaw
)

func (d Directive) String() string {
	switch d {
	case EmitEscaped:
		return "emit-escaped"
	case EmitRaw:
		return "emit-raw"
	}
	return fmt.Sprintf("Directive(%d)", int(d))
}

func (d Directive) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Directive) UnmarshalText(text []byte) error {
	parsed, err := ParseDirectiveName(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDirective maps a tag opener to its directive: `<%=` escapes, `<%-`
// does not.
func ParseDirective(opener string) (Directive, error) {
	switch opener {
	case tagOpenEscaped:
		return EmitEscaped, nil
	case tagOpenRaw:
		return EmitRaw, nil
	}
	return 0, fmt.Errorf("unknown tag opener '%s', expected '%s' or '%s'", opener, tagOpenEscaped, tagOpenRaw)
}

// ParseDirectiveName is the inverse of Directive.String.
func ParseDirectiveName(name string) (Directive, error) {
	for _, directive := range []Directive{EmitEscaped, EmitRaw} {
		if directive.String() == name {
			return directive, nil
		}
	}
	return 0, fmt.Errorf("unknown directive '%s', expected '%s' or '%s'", name, EmitEscaped, EmitRaw)
}

// Pipeline applies filters to evaluated values and appends the result to an
// output buffer. A Pipeline holds no per-render state and can be shared.
type Pipeline struct {
	Filters *FilterSet
	Logger  hclog.Logger
}

func NewPipeline(filters *FilterSet, logger hclog.Logger) *Pipeline {
	if filters == nil {
		filters = Filters
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Pipeline{Filters: filters, Logger: logger}
}

// Apply runs a single filter.
func (p *Pipeline) Apply(value *Value, name string, args ...interface{}) (string, error) {
	return p.apply(value, Invoke(name, args...))
}

func (p *Pipeline) apply(value *Value, invocation Invocation) (string, error) {
	filter, ok := p.Filters.Get(invocation.Name)
	if !ok {
		return "", &UnknownFilterError{Name: invocation.Name}
	}
	if !value.Capabilities().Has(filter.Requires) {
		return "", mismatch(filter.Name, value, filter.Requires)
	}
	params := invocation.Params
	if params == nil {
		params = NewParams()
	}
	return filter.Function(value, params)
}

// Chain runs the invocations left to right, feeding the output string of
// each filter to the next one.
func (p *Pipeline) Chain(value *Value, invocations ...Invocation) (string, error) {
	if len(invocations) == 0 {
		return value.Display()
	}
	current := value
	var out string
	for index, invocation := range invocations {
		var err error
		out, err = p.apply(current, invocation)
		if err != nil {
			p.Logger.Debug("filter failed", "filter", invocation.Name, "stage", index+1, "type", current.TypeName(), "error", err)
			return "", errors.Wrapf(err, "failed to apply %s filter '%s'", humanize.Ordinal(index+1), invocation.Name)
		}
		p.Logger.Trace("filter applied", "filter", invocation.Name, "stage", index+1, "output_length", len(out))
		current = AsValue(out)
	}
	return out, nil
}

// Emit appends the filtered value to b. Without filters the value itself is
// rendered, which requires it to be Renderable. Nothing is written to b when
// an error is returned.
func (p *Pipeline) Emit(b *Buffer, directive Directive, value *Value, invocations ...Invocation) error {
	fragment := NewBuffer()
	if len(invocations) == 0 {
		render := value.Render
		if directive == EmitEscaped {
			render = value.RenderEscaped
		}
		if err := render(fragment); err != nil {
			return errors.Wrap(err, "failed to render value")
		}
	} else {
		out, err := p.Chain(value, invocations...)
		if err != nil {
			return err
		}
		if directive == EmitEscaped {
			EscapeTo(fragment, out)
		} else {
			fragment.WriteString(out)
		}
	}
	p.Logger.Trace("fragment emitted", "directive", directive.String(), "filters", len(invocations), "length", fragment.Len())
	b.Write(fragment.Bytes())
	return nil
}

// EmitExpression is Emit with the filter chain given as text, e.g.
// `dbg | truncate(10)`.
func (p *Pipeline) EmitExpression(b *Buffer, directive Directive, value *Value, chain string) error {
	invocations, err := ParseInvocations(chain)
	if err != nil {
		return errors.Wrapf(err, "failed to parse filters '%s'", chain)
	}
	return p.Emit(b, directive, value, invocations...)
}
