package lib

import (
	"github.com/pkg/errors"
)

// Params holds the arguments of a filter invocation, e.g. the 5 in
// `truncate(5)` or the indent in `yaml(indent=4)`.
type Params struct {
	Args   []*Value
	KwArgs map[string]*Value
}

type KwArg struct {
	Name    string
	Default interface{}
}

func NewParams(args ...interface{}) *Params {
	p := &Params{KwArgs: map[string]*Value{}}
	for _, arg := range args {
		p.Args = append(p.Args, AsValue(arg))
	}
	return p
}

func (p *Params) First() *Value {
	if p == nil || len(p.Args) == 0 {
		return AsValue(nil)
	}
	return p.Args[0]
}

func (p *Params) ExpectNothing() error {
	return p.Expect(0, nil)
}

func (p *Params) ExpectArgs(n int) error {
	return p.Expect(n, nil)
}

// Expect checks that exactly n positional arguments were given and that
// every keyword argument is one of kwargs. Params are never modified, so a
// parsed invocation can be shared between renders; filters read keyword
// arguments through Keyword with the same default.
func (p *Params) Expect(n int, kwargs []*KwArg) error {
	if got := p.argCount(); got != n {
		return errors.Wrapf(ErrInvalidSignature, "expected %d argument(s), got %d", n, got)
	}
	if p == nil {
		return nil
	}
	for name := range p.KwArgs {
		known := false
		for _, kwarg := range kwargs {
			if kwarg.Name == name {
				known = true
				break
			}
		}
		if !known {
			return errors.Wrapf(ErrInvalidSignature, "unexpected keyword argument '%s'", name)
		}
	}
	return nil
}

func (p *Params) Keyword(name string, fallback interface{}) *Value {
	if p != nil {
		if value, ok := p.KwArgs[name]; ok {
			return value
		}
	}
	return AsValue(fallback)
}

func (p *Params) argCount() int {
	if p == nil {
		return 0
	}
	return len(p.Args)
}
