package lib

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"
)

// Invocation is a filter name and the arguments it is called with.
type Invocation struct {
	Name   string
	Params *Params
}

func Invoke(name string, args ...interface{}) Invocation {
	return Invocation{Name: name, Params: NewParams(args...)}
}

func (i Invocation) String() string {
	if i.Params == nil || (len(i.Params.Args) == 0 && len(i.Params.KwArgs) == 0) {
		return i.Name
	}
	args := make([]string, 0, len(i.Params.Args)+len(i.Params.KwArgs))
	for _, arg := range i.Params.Args {
		args = append(args, literal(arg))
	}
	for _, name := range sortedKeys(i.Params.KwArgs) {
		args = append(args, name+"="+literal(i.Params.KwArgs[name]))
	}
	return i.Name + "(" + strings.Join(args, ", ") + ")"
}

func literal(v *Value) string {
	if v.IsString() {
		return strconv.Quote(v.Val.(string))
	}
	return v.String()
}

// Tag is a parsed output tag such as `<%= user.name | upper %>`. The
// expression is kept as text for the caller to evaluate.
type Tag struct {
	Directive  Directive
	Expression string
	Filters    []Invocation
}

func ParseTag(source string) (*Tag, error) {
	start := len(source) - len(strings.TrimLeft(source, " \t\r\n"))
	trimmed := strings.TrimSpace(source)
	if len(trimmed) < len(tagOpenEscaped) {
		return nil, &SyntaxError{Offset: start, Message: "expected a tag opener"}
	}
	directive, err := ParseDirective(trimmed[:len(tagOpenEscaped)])
	if err != nil {
		return nil, &SyntaxError{Offset: start, Message: err.Error()}
	}
	if !strings.HasSuffix(trimmed, tagClose) || len(trimmed) < len(tagOpenEscaped)+len(tagClose) {
		return nil, &SyntaxError{Offset: start + len(trimmed), Message: fmt.Sprintf("expected tag to end with '%s'", tagClose)}
	}
	bodyOffset := start + len(tagOpenEscaped)
	body := trimmed[len(tagOpenEscaped) : len(trimmed)-len(tagClose)]

	cut := topLevelPipe(body)
	tag := &Tag{Directive: directive, Expression: strings.TrimSpace(body[:cut])}
	if tag.Expression == "" {
		return nil, &SyntaxError{Offset: bodyOffset, Message: "empty expression"}
	}
	if cut == len(body) {
		return tag, nil
	}
	chain := body[cut+1:]
	if strings.TrimSpace(chain) == "" {
		return nil, &SyntaxError{Offset: bodyOffset + len(body), Message: "expected a filter name after '|'"}
	}
	tag.Filters, err = ParseInvocations(chain)
	if err != nil {
		if syntaxErr, ok := err.(*SyntaxError); ok {
			syntaxErr.Offset += bodyOffset + cut + 1
		}
		return nil, err
	}
	return tag, nil
}

// topLevelPipe returns the index of the first '|' outside of quotes and
// brackets, ignoring '||', or len(s) when there is none.
func topLevelPipe(s string) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch {
			case c == '\\' && quote != '`':
				i++
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '|':
			if i+1 < len(s) && s[i+1] == '|' {
				i++
				continue
			}
			if depth == 0 {
				return i
			}
		}
	}
	return len(s)
}

// ParseInvocations parses a filter chain like `dbg | truncate(5)`. An empty
// chain yields no invocations.
func ParseInvocations(source string) ([]Invocation, error) {
	p := newInvocationParser(source)
	if p.token == scanner.EOF {
		return nil, p.err
	}
	var invocations []Invocation
	for {
		invocation, err := p.parseInvocation()
		if err != nil {
			return nil, err
		}
		invocations = append(invocations, invocation)
		if p.token == scanner.EOF {
			break
		}
		if p.token != '|' {
			return nil, p.fail("expected '|' or end of input, got %s", p.describe())
		}
		p.next()
	}
	if p.err != nil {
		return nil, p.err
	}
	return invocations, nil
}

type invocationParser struct {
	source  string
	scanner scanner.Scanner
	token   rune
	err     error
}

func newInvocationParser(source string) *invocationParser {
	p := &invocationParser{source: source}
	p.scanner.Init(strings.NewReader(source))
	p.scanner.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats | scanner.ScanStrings | scanner.ScanRawStrings
	p.scanner.Error = func(s *scanner.Scanner, msg string) {
		if p.err == nil {
			p.err = &SyntaxError{Offset: s.Pos().Offset, Message: msg}
		}
	}
	p.next()
	return p
}

func (p *invocationParser) next() {
	p.token = p.scanner.Scan()
}

func (p *invocationParser) offset() int {
	if p.token == scanner.EOF || !p.scanner.Position.IsValid() {
		return len(p.source)
	}
	return p.scanner.Position.Offset
}

func (p *invocationParser) describe() string {
	if p.token == scanner.EOF {
		return "end of input"
	}
	return fmt.Sprintf("'%s'", p.scanner.TokenText())
}

func (p *invocationParser) fail(format string, args ...interface{}) error {
	if p.err != nil {
		return p.err
	}
	return &SyntaxError{Offset: p.offset(), Message: fmt.Sprintf(format, args...)}
}

func (p *invocationParser) parseInvocation() (Invocation, error) {
	if p.token != scanner.Ident {
		return Invocation{}, p.fail("expected a filter name, got %s", p.describe())
	}
	invocation := Invocation{Name: p.scanner.TokenText(), Params: NewParams()}
	p.next()
	if p.token != '(' {
		return invocation, nil
	}
	p.next()
	for p.token != ')' {
		if err := p.parseArgument(invocation.Params); err != nil {
			return Invocation{}, err
		}
		switch p.token {
		case ',':
			p.next()
		case ')':
		default:
			return Invocation{}, p.fail("expected ',' or ')', got %s", p.describe())
		}
	}
	p.next()
	return invocation, nil
}

func (p *invocationParser) parseArgument(params *Params) error {
	if p.token == scanner.Ident && !isKeywordLiteral(p.scanner.TokenText()) {
		name := p.scanner.TokenText()
		p.next()
		if p.token != '=' {
			return p.fail("expected '=' after keyword argument '%s', got %s", name, p.describe())
		}
		p.next()
		value, err := p.parseLiteral()
		if err != nil {
			return err
		}
		if _, exists := params.KwArgs[name]; exists {
			return p.fail("keyword argument '%s' repeated", name)
		}
		params.KwArgs[name] = value
		return nil
	}
	if len(params.KwArgs) > 0 {
		return p.fail("positional argument follows keyword argument")
	}
	value, err := p.parseLiteral()
	if err != nil {
		return err
	}
	params.Args = append(params.Args, value)
	return nil
}

func (p *invocationParser) parseLiteral() (*Value, error) {
	negative := false
	if p.token == '-' {
		negative = true
		p.next()
	}
	text := p.scanner.TokenText()
	var value interface{}
	switch p.token {
	case scanner.Int:
		i, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return nil, p.fail("invalid integer %s", text)
		}
		if negative {
			i = -i
		}
		value = i
	case scanner.Float:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.fail("invalid float %s", text)
		}
		if negative {
			f = -f
		}
		value = f
	case scanner.String, scanner.RawString:
		if negative {
			return nil, p.fail("unexpected '-' before string")
		}
		s, err := strconv.Unquote(text)
		if err != nil {
			return nil, p.fail("invalid string %s", text)
		}
		value = s
	case '\'':
		if negative {
			return nil, p.fail("unexpected '-' before string")
		}
		unquoted, err := p.parseSingleQuoted()
		if err != nil {
			return nil, err
		}
		value = unquoted
	case scanner.Ident:
		if negative || !isKeywordLiteral(text) {
			return nil, p.fail("expected a literal, got %s", p.describe())
		}
		switch text {
		case "true":
			value = true
		case "false":
			value = false
		}
	default:
		return nil, p.fail("expected a literal, got %s", p.describe())
	}
	p.next()
	return AsValue(value), nil
}

// parseSingleQuoted reads the rest of a '...' string, which text/scanner
// would otherwise take for a character literal.
func (p *invocationParser) parseSingleQuoted() (string, error) {
	var b strings.Builder
	for {
		switch ch := p.scanner.Next(); ch {
		case scanner.EOF, '\n':
			return "", p.fail("unterminated string")
		case '\'':
			return b.String(), nil
		case '\\':
			switch escaped := p.scanner.Next(); escaped {
			case scanner.EOF:
				return "", p.fail("unterminated string")
			case '\'', '\\':
				b.WriteRune(escaped)
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			default:
				b.WriteRune('\\')
				b.WriteRune(escaped)
			}
		default:
			b.WriteRune(ch)
		}
	}
}

func isKeywordLiteral(s string) bool {
	return s == "true" || s == "false" || s == "nil"
}
