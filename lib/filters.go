package lib

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	json "github.com/json-iterator/go"
	"github.com/microcosm-cc/bluemonday"
	"github.com/openconfig/goyang/pkg/indent"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

var Filters = NewFilterSet(
	&Filter{Name: "bytes", Requires: Numeric, Function: filterBytes},
	&Filter{Name: "dbg", Requires: Debuggable, Function: filterDbg},
	&Filter{Name: "disp", Requires: Displayable, Function: filterDisp},
	&Filter{Name: "indent", Requires: Displayable, Function: filterIndent},
	&Filter{Name: "json", Requires: Debuggable, Function: filterJSON},
	&Filter{Name: "lower", Requires: Displayable, Function: filterLower},
	&Filter{Name: "markdown", Requires: Displayable, Function: filterMarkdown},
	&Filter{Name: "ordinal", Requires: Numeric, Function: filterOrdinal},
	&Filter{Name: "striptags", Requires: Displayable, Function: filterStripTags},
	&Filter{Name: "toml", Requires: Debuggable, Function: filterTOML},
	&Filter{Name: "trim", Requires: Displayable, Function: filterTrim},
	&Filter{Name: "truncate", Requires: Displayable, Function: filterTruncate},
	&Filter{Name: "upper", Requires: Displayable, Function: filterUpper},
	&Filter{Name: "yaml", Requires: Debuggable, Function: filterYAML},
)

var (
	jsonAPI     = json.ConfigCompatibleWithStandardLibrary
	stripPolicy = bluemonday.StrictPolicy()
)

func filterDbg(in *Value, params *Params) (string, error) {
	if err := params.ExpectNothing(); err != nil {
		return "", errors.Wrap(err, "wrong signature for 'dbg'")
	}
	return in.Debug()
}

func filterDisp(in *Value, params *Params) (string, error) {
	if err := params.ExpectNothing(); err != nil {
		return "", errors.Wrap(err, "wrong signature for 'disp'")
	}
	return in.Display()
}

func filterUpper(in *Value, params *Params) (string, error) {
	if err := params.ExpectNothing(); err != nil {
		return "", errors.Wrap(err, "wrong signature for 'upper'")
	}
	s, err := in.Display()
	if err != nil {
		return "", err
	}
	return strings.ToUpper(s), nil
}

func filterLower(in *Value, params *Params) (string, error) {
	if err := params.ExpectNothing(); err != nil {
		return "", errors.Wrap(err, "wrong signature for 'lower'")
	}
	s, err := in.Display()
	if err != nil {
		return "", err
	}
	return strings.ToLower(s), nil
}

func filterTrim(in *Value, params *Params) (string, error) {
	if err := params.ExpectNothing(); err != nil {
		return "", errors.Wrap(err, "wrong signature for 'trim'")
	}
	s, err := in.Display()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

func filterTruncate(in *Value, params *Params) (string, error) {
	if err := params.ExpectArgs(1); err != nil {
		return "", errors.Wrap(err, "wrong signature for 'truncate'")
	}
	limit, ok := params.First().Integer()
	if !ok || limit < 0 {
		return "", errors.Wrapf(ErrInvalidSignature, "1st argument passed to filter 'truncate' is not a positive integer: %s", params.First().String())
	}
	s, err := in.Display()
	if err != nil {
		return "", err
	}
	if int64(utf8.RuneCountInString(s)) <= limit {
		return s, nil
	}
	runes := []rune(s)
	return string(runes[:limit]) + "...", nil
}

func filterIndent(in *Value, params *Params) (string, error) {
	if err := params.ExpectArgs(1); err != nil {
		return "", errors.Wrap(err, "wrong signature for 'indent'")
	}
	width, ok := params.First().Integer()
	if !ok || width < 0 {
		return "", errors.Wrapf(ErrInvalidSignature, "1st argument passed to filter 'indent' is not a positive integer: %s", params.First().String())
	}
	s, err := in.Display()
	if err != nil {
		return "", err
	}
	return indent.String(strings.Repeat(" ", int(width)), s), nil
}

func filterJSON(in *Value, params *Params) (string, error) {
	if err := params.ExpectNothing(); err != nil {
		return "", errors.Wrap(err, "wrong signature for 'json'")
	}
	out, err := jsonAPI.MarshalToString(in.Interface())
	if err != nil {
		return "", fmt.Errorf("unable to marshal to json: %s: %s", in.String(), err)
	}
	return out, nil
}

func filterYAML(in *Value, params *Params) (string, error) {
	const defaultIndent = 2

	if err := params.Expect(0, []*KwArg{{Name: "indent", Default: defaultIndent}}); err != nil {
		return "", errors.Wrap(err, "wrong signature for 'yaml'")
	}
	width, ok := params.Keyword("indent", defaultIndent).Integer()
	if !ok || width <= 0 {
		return "", errors.Wrapf(ErrInvalidSignature, "expected a positive integer for 'indent', got %s", params.Keyword("indent", nil).String())
	}
	output := bytes.NewBuffer(nil)
	encoder := yaml.NewEncoder(output)
	encoder.SetIndent(int(width))
	if err := encoder.Encode(in.Interface()); err != nil {
		return "", fmt.Errorf("unable to marshal to yaml: %s: %s", in.String(), err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("unable to marshal to yaml: %s: %s", in.String(), err)
	}
	return output.String(), nil
}

func filterTOML(in *Value, params *Params) (string, error) {
	if err := params.ExpectNothing(); err != nil {
		return "", errors.Wrap(err, "wrong signature for 'toml'")
	}
	kind := reflect.Invalid
	if !in.IsNil() {
		rv := reflect.Indirect(reflect.ValueOf(in.Interface()))
		kind = rv.Kind()
	}
	if kind != reflect.Map && kind != reflect.Struct {
		return "", fmt.Errorf("filter 'toml' was passed '%s' which is neither a map nor a struct", in.String())
	}
	out, err := toml.Marshal(in.Interface())
	if err != nil {
		return "", errors.Wrap(err, "unable to marshal to toml")
	}
	return string(out), nil
}

func filterStripTags(in *Value, params *Params) (string, error) {
	if err := params.ExpectNothing(); err != nil {
		return "", errors.Wrap(err, "wrong signature for 'striptags'")
	}
	s, err := in.Display()
	if err != nil {
		return "", err
	}
	return stripPolicy.Sanitize(s), nil
}

func filterMarkdown(in *Value, params *Params) (string, error) {
	if err := params.ExpectNothing(); err != nil {
		return "", errors.Wrap(err, "wrong signature for 'markdown'")
	}
	s, err := in.Display()
	if err != nil {
		return "", err
	}
	out := NewBufferSize(len(s))
	if err := goldmark.Convert([]byte(s), out); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %s", err)
	}
	return out.String(), nil
}

func filterOrdinal(in *Value, params *Params) (string, error) {
	if err := params.ExpectNothing(); err != nil {
		return "", errors.Wrap(err, "wrong signature for 'ordinal'")
	}
	n, ok := in.Integer()
	if !ok {
		return "", fmt.Errorf("filter 'ordinal' was passed '%s' which is not a finite number", in.String())
	}
	return humanize.Ordinal(int(n)), nil
}

func filterBytes(in *Value, params *Params) (string, error) {
	if err := params.ExpectNothing(); err != nil {
		return "", errors.Wrap(err, "wrong signature for 'bytes'")
	}
	n, ok := in.Integer()
	if !ok || n < 0 {
		return "", fmt.Errorf("filter 'bytes' was passed '%s' which is not a positive number", in.String())
	}
	return humanize.Bytes(uint64(n)), nil
}
