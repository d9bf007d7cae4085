package lib

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/nikolalohinski/gonja/v2/builtins"
	"github.com/nikolalohinski/gonja/v2/config"
	"github.com/nikolalohinski/gonja/v2/exec"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const templateName = "template"

// Gonja exposes the filters to the gonja engine. Errors are carried inside
// the returned value, which makes gonja abort the render. With EmitEscaped
// the output is escaped here and marked safe, so filtered fragments go
// through Escape rather than the gonja escaper.
func (s *FilterSet) Gonja(directive Directive) *exec.FilterSet {
	pipeline := NewPipeline(s, nil)
	functions := make(map[string]exec.FilterFunction)
	for _, name := range s.Names() {
		functions[name] = gonjaFilter(pipeline, directive, name)
	}
	return exec.NewFilterSet(functions)
}

func gonjaFilter(pipeline *Pipeline, directive Directive, name string) exec.FilterFunction {
	return func(e *exec.Evaluator, in *exec.Value, params *exec.VarArgs) *exec.Value {
		if in.IsError() {
			return in
		}
		invocation := Invocation{Name: name, Params: NewParams()}
		if params != nil {
			for _, arg := range params.Args {
				invocation.Params.Args = append(invocation.Params.Args, AsValue(arg.Interface()))
			}
			for key, arg := range params.KwArgs {
				invocation.Params.KwArgs[key] = AsValue(arg.Interface())
			}
		}
		out, err := pipeline.apply(AsValue(in.Interface()), invocation)
		if err != nil {
			return exec.AsValue(exec.ErrInvalidCall(fmt.Errorf("filter '%s': %s", name, err)))
		}
		if directive == EmitEscaped {
			return exec.AsSafeValue(Escape(out))
		}
		return exec.AsValue(out)
	}
}

// Render renders the jinja template of ctx with the built-in gonja filters
// and the filters of this package.
func Render(ctx *Context) ([]byte, map[string]interface{}, error) {
	timeout := ctx.Timeout
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}
	channel := make(chan struct {
		Result string
		Values map[string]interface{}
		Err    error
	}, 1)
	go func() {
		result := struct {
			Result string
			Values map[string]interface{}
			Err    error
		}{}
		defer func() {
			if err := recover(); err != nil {
				result.Err = fmt.Errorf(heredoc.Doc(`
				a runtime error led gonja to panic: %s

				Known possible reasons for gonja panic attacks are:
				- call to a non existent macro
				- trying to do python-like object indexing using something like 'object["key"]'
				`), err)
			}
			channel <- result
		}()

		template, err := getTemplate(ctx)
		if err != nil {
			result.Err = fmt.Errorf("failed to parse template: %s", err)
			return
		}

		result.Values, err = MergeValues(ctx.Values)
		if err != nil {
			result.Err = fmt.Errorf("failed to parse values: %s", err)
			return
		}

		if err := validate(result.Values, ctx.Schemas); err != nil {
			result.Err = fmt.Errorf("failed to validate context against schema: %s", err)
			return
		}

		result.Result, result.Err = template.ExecuteToString(exec.NewContext(result.Values))
	}()
	select {
	case output := <-channel:
		if output.Err != nil {
			return nil, nil, fmt.Errorf("failed to execute template: %s", output.Err)
		}
		if ctx.OutputFile != "" {
			if err := NewBufferString(output.Result).WriteFile(ctx.OutputFile); err != nil {
				return nil, nil, fmt.Errorf("failed to write output file %s: %s", ctx.OutputFile, err)
			}
		}
		return []byte(output.Result), output.Values, nil
	case <-time.After(timeout):
		return nil, nil, fmt.Errorf(heredoc.Doc(`
			rendering timed out after %s: known possible reasons for timeouts are:
			- an unclosed string
			- an unclosed variable block in an included template
		`), timeout.String())
	}
}

func getTemplate(ctx *Context) (*exec.Template, error) {
	delimiters := ctx.Configuration.Delimiters.withDefaults()
	gonjaConfig := &config.Config{
		BlockStartString:    delimiters.BlockStart,
		BlockEndString:      delimiters.BlockEnd,
		VariableStartString: delimiters.VariableStart,
		VariableEndString:   delimiters.VariableEnd,
		CommentStartString:  delimiters.CommentStart,
		CommentEndString:    delimiters.CommentEnd,
		AutoEscape:          ctx.Configuration.Directive == EmitEscaped,
		StrictUndefined:     ctx.Configuration.StrictUndefined,
		TrimBlocks:          ctx.Configuration.TrimBlocks,
		LeftStripBlocks:     ctx.Configuration.LeftStripBlocks,
	}

	loader, err := newSourceLoader(templateName, ctx.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to get a template loader: %s", err)
	}

	environment := &exec.Environment{
		Filters:           builtins.Filters.Update(Filters.Gonja(ctx.Configuration.Directive)),
		Tests:             builtins.Tests.Update(Tests),
		ControlStructures: builtins.ControlStructures,
		Methods:           builtins.Methods,
		Context:           builtins.GlobalFunctions.Update(Globals),
	}

	return exec.NewTemplate(templateName, gonjaConfig, loader, environment)
}

func validate(values map[string]interface{}, schemas map[string]json.RawMessage) error {
	schemaErrors := []string{}
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		validator, err := jsonschema.CompileString(name+".json", string(schemas[name]))
		if err != nil {
			return fmt.Errorf("failed to compile '%s' JSON schema %s: %s", name, schemas[name], err)
		}

		// round trip through JSON so the validator only sees JSON types
		payload := new(interface{})
		raw, err := jsonAPI.Marshal(values)
		if err != nil {
			return fmt.Errorf("failed to marshal context to JSON: %s", err)
		}
		if err := jsonAPI.Unmarshal(raw, payload); err != nil {
			return fmt.Errorf("failed to unmarshal context back from JSON: %s", err)
		}

		if err := validator.Validate(*payload); err != nil {
			schemaErrors = append(schemaErrors, fmt.Errorf("failed to pass '%s' JSON schema validation: %s", name, err).Error())
			continue
		}
	}

	if len(schemaErrors) > 0 {
		return fmt.Errorf("\n\t%s", strings.Join(schemaErrors, "\n\t"))
	}

	return nil
}
