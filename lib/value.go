package lib

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Capability is the set of ways a value can be formatted.
type Capability uint8

const (
	Debuggable Capability = 1 << iota
	Displayable
	Renderable
	Numeric
)

var capabilityNames = []struct {
	capability Capability
	noun       string
	adjective  string
}{
	{Debuggable, "debug", "debuggable"},
	{Displayable, "display", "displayable"},
	{Renderable, "render", "renderable"},
	{Numeric, "numeric", "numeric"},
}

func (c Capability) Has(required Capability) bool {
	return c&required == required
}

func (c Capability) String() string {
	return c.join(func(i int) string { return capabilityNames[i].noun })
}

func (c Capability) Adjective() string {
	return c.join(func(i int) string { return capabilityNames[i].adjective })
}

func (c Capability) join(name func(int) string) string {
	names := make([]string, 0, len(capabilityNames))
	for i, entry := range capabilityNames {
		if c.Has(entry.capability) {
			names = append(names, name(i))
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "+")
}

// Debugger is implemented by values with their own developer-facing
// representation.
type Debugger interface {
	Debug() string
}

// Value is the evaluated result of a template expression.
type Value struct {
	Val interface{}
}

func AsValue(i interface{}) *Value {
	if v, ok := i.(*Value); ok {
		return v
	}
	return &Value{Val: i}
}

func (v *Value) Interface() interface{} {
	return v.Val
}

func (v *Value) TypeName() string {
	if v.Val == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v.Val)
}

func (v *Value) IsNil() bool {
	if v.Val == nil {
		return true
	}
	rv := reflect.ValueOf(v.Val)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func (v *Value) IsString() bool {
	_, ok := v.Val.(string)
	return ok
}

func (v *Value) Capabilities() Capability {
	var c Capability
	switch v.Val.(type) {
	case Debugger, fmt.GoStringer:
		c |= Debuggable
	}
	switch v.Val.(type) {
	case fmt.Stringer, error:
		c |= Displayable | Renderable
	}
	if _, ok := v.Val.(Renderer); ok {
		c |= Renderable
	}
	if v.Val == nil {
		return c | Debuggable
	}
	switch reflect.ValueOf(v.Val).Kind() {
	case reflect.String, reflect.Bool:
		c |= Debuggable | Displayable | Renderable
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		c |= Debuggable | Displayable | Renderable | Numeric
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
	default:
		c |= Debuggable
	}
	return c
}

// Debug returns the developer-facing representation of the value.
func (v *Value) Debug() (string, error) {
	switch val := v.Val.(type) {
	case Debugger:
		return val.Debug(), nil
	case fmt.GoStringer:
		return val.GoString(), nil
	}
	if !v.Capabilities().Has(Debuggable) {
		return "", mismatch("", v, Debuggable)
	}
	if v.Val == nil {
		return "nil", nil
	}
	rv := reflect.ValueOf(v.Val)
	switch rv.Kind() {
	case reflect.String:
		return strconv.Quote(rv.String()), nil
	case reflect.Float32:
		return formatFloat(rv.Float(), 32), nil
	case reflect.Float64:
		return formatFloat(rv.Float(), 64), nil
	}
	return fmt.Sprintf("%#v", v.Val), nil
}

// Display returns the user-facing representation of the value.
func (v *Value) Display() (string, error) {
	switch val := v.Val.(type) {
	case fmt.Stringer:
		return val.String(), nil
	case error:
		return val.Error(), nil
	}
	if v.Val == nil {
		return "", mismatch("", v, Displayable)
	}
	rv := reflect.ValueOf(v.Val)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return formatFloat(rv.Float(), 32), nil
	case reflect.Float64:
		return formatFloat(rv.Float(), 64), nil
	}
	return "", mismatch("", v, Displayable)
}

// String never fails: it falls back from display to debug to the type name.
func (v *Value) String() string {
	if s, err := v.Display(); err == nil {
		return s
	}
	if s, err := v.Debug(); err == nil {
		return s
	}
	return "<" + v.TypeName() + ">"
}

func (v *Value) Integer() (int64, bool) {
	if v.Val == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v.Val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

func (v *Value) Float() (float64, bool) {
	if v.Val == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v.Val)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	if i, ok := v.Integer(); ok {
		return float64(i), true
	}
	return 0, false
}

func (v *Value) isPlainNumberOrBool() bool {
	switch v.Val.(type) {
	case fmt.Stringer, error, Renderer:
		return false
	}
	c := v.Capabilities()
	return c.Has(Numeric) || (v.Val != nil && reflect.ValueOf(v.Val).Kind() == reflect.Bool)
}

// formatFloat mirrors the shortest round-trip notation of the sailfish
// runtime: integral values keep a ".0" suffix and the exponent form is used
// outside [1e-5, 1e16).
func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if abs := math.Abs(f); abs != 0 && (abs < 1e-5 || abs >= 1e16) {
		mantissa, exponent, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, bitSize), "e")
		n, _ := strconv.Atoi(exponent)
		return mantissa + "e" + strconv.Itoa(n)
	}
	s := strconv.FormatFloat(f, 'f', -1, bitSize)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
