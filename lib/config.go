package lib

import (
	"encoding/json"
	"time"
)

const defaultRenderTimeout = 5 * time.Second

// Context is everything a single template render needs.
type Context struct {
	Source        Source                     `json:"source"`
	Configuration Configuration              `json:"configuration"`
	Values        []Values                   `json:"values,omitempty"`
	Schemas       map[string]json.RawMessage `json:"schemas,omitempty"`
	Timeout       time.Duration              `json:"timeout,omitempty"`
	// OutputFile, when set, receives the rendered result atomically.
	OutputFile string `json:"output_file,omitempty"`
}

type Source struct {
	Template  string `json:"template"`
	Directory string `json:"directory"`
}

// Values is one serialized layer of template values.
type Values struct {
	Data []byte `json:"data"`
	Type string `json:"type"`
}

type Configuration struct {
	Directive       Directive  `json:"directive"`
	StrictUndefined bool       `json:"strict_undefined"`
	TrimBlocks      bool       `json:"trim_blocks"`
	LeftStripBlocks bool       `json:"left_strip_blocks"`
	Delimiters      Delimiters `json:"delimiters"`
}

type Delimiters struct {
	BlockStart    string `json:"block_start"`
	BlockEnd      string `json:"block_end"`
	VariableStart string `json:"variable_start"`
	VariableEnd   string `json:"variable_end"`
	CommentStart  string `json:"comment_start"`
	CommentEnd    string `json:"comment_end"`
}

var DefaultDelimiters = Delimiters{
	BlockStart:    "{%",
	BlockEnd:      "%}",
	VariableStart: "{{",
	VariableEnd:   "}}",
	CommentStart:  "{#",
	CommentEnd:    "#}",
}

// DefaultConfiguration escapes output and uses the jinja delimiters.
func DefaultConfiguration() Configuration {
	return Configuration{
		Directive:  EmitEscaped,
		Delimiters: DefaultDelimiters,
	}
}

// withDefaults fills unset delimiters.
func (d Delimiters) withDefaults() Delimiters {
	for _, field := range []struct {
		value    *string
		fallback string
	}{
		{&d.BlockStart, DefaultDelimiters.BlockStart},
		{&d.BlockEnd, DefaultDelimiters.BlockEnd},
		{&d.VariableStart, DefaultDelimiters.VariableStart},
		{&d.VariableEnd, DefaultDelimiters.VariableEnd},
		{&d.CommentStart, DefaultDelimiters.CommentStart},
		{&d.CommentEnd, DefaultDelimiters.CommentEnd},
	} {
		if *field.value == "" {
			*field.value = field.fallback
		}
	}
	return d
}
