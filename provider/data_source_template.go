package sailfish

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/terraform-plugin-sdk/v2/diag"
	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/schema"
	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/validation"

	"github.com/nikolalohinski/terraform-provider-sailfish/lib"
)

var contextTypes = []string{"yaml", "json", "toml"}

var directives = []string{lib.EmitEscaped.String(), lib.EmitRaw.String()}

func strictUndefinedSchema() *schema.Schema {
	return &schema.Schema{
		Type:        schema.TypeBool,
		Description: "Toggle to fail rendering on missing attribute/item",
		Optional:    true,
	}
}

func trimBlocksSchema() *schema.Schema {
	return &schema.Schema{
		Type:        schema.TypeBool,
		Description: "Toggle to remove the first newline after a block",
		Optional:    true,
	}
}

func leftStripBlocksSchema() *schema.Schema {
	return &schema.Schema{
		Type:        schema.TypeBool,
		Description: "Toggle to trim leading spaces and tabs from the start of a line to a block",
		Optional:    true,
	}
}

func directiveSchema() *schema.Schema {
	return &schema.Schema{
		Type:         schema.TypeString,
		Optional:     true,
		ValidateFunc: validation.StringInSlice(directives, false),
		Description:  fmt.Sprintf("Whether output is HTML escaped (one of: %s), defaults to the provider `autoescape` setting", strings.Join(directives, ", ")),
	}
}

func delimitersSchema() *schema.Schema {
	return &schema.Schema{
		Type:        schema.TypeList,
		Description: "Custom delimiters for the jinja engine",
		Optional:    true,
		MaxItems:    1,
		Elem: &schema.Resource{
			Schema: map[string]*schema.Schema{
				"block_start": {
					Type:     schema.TypeString,
					Optional: true,
					Default:  lib.DefaultDelimiters.BlockStart,
				},
				"block_end": {
					Type:     schema.TypeString,
					Optional: true,
					Default:  lib.DefaultDelimiters.BlockEnd,
				},
				"variable_start": {
					Type:     schema.TypeString,
					Optional: true,
					Default:  lib.DefaultDelimiters.VariableStart,
				},
				"variable_end": {
					Type:     schema.TypeString,
					Optional: true,
					Default:  lib.DefaultDelimiters.VariableEnd,
				},
				"comment_start": {
					Type:     schema.TypeString,
					Optional: true,
					Default:  lib.DefaultDelimiters.CommentStart,
				},
				"comment_end": {
					Type:     schema.TypeString,
					Optional: true,
					Default:  lib.DefaultDelimiters.CommentEnd,
				},
			},
		},
	}
}

func parseDelimiters(block map[string]interface{}) lib.Delimiters {
	get := func(name string) string {
		value, _ := block[name].(string)
		return value
	}
	return lib.Delimiters{
		BlockStart:    get("block_start"),
		BlockEnd:      get("block_end"),
		VariableStart: get("variable_start"),
		VariableEnd:   get("variable_end"),
		CommentStart:  get("comment_start"),
		CommentEnd:    get("comment_end"),
	}
}

func dataSourceTemplate() *schema.Resource {
	return &schema.Resource{
		ReadContext: readTemplate,
		Description: "The sailfish_template data source renders a jinja template where every sailfish filter is available, with possible JSON schema validation of the context",
		Schema: map[string]*schema.Schema{
			"template": {
				Type:        schema.TypeString,
				Required:    true,
				Description: "Inline jinja template to render",
			},
			"directory": {
				Type:        schema.TypeString,
				Optional:    true,
				Default:     ".",
				Description: "Directory used to resolve included templates",
			},
			"context": {
				Type:        schema.TypeList,
				Optional:    true,
				Description: "Layers of context to use while rendering the template, merged in order",
				Elem: &schema.Resource{
					Schema: map[string]*schema.Schema{
						"type": {
							Type:         schema.TypeString,
							Required:     true,
							ValidateFunc: validation.StringInSlice(contextTypes, true),
							Description:  fmt.Sprintf("Type of parsing (one of: %s) to perform on the given string", strings.Join(contextTypes, ", ")),
						},
						"data": {
							Type:        schema.TypeString,
							Required:    true,
							Description: "String holding the serialized context",
						},
					},
				},
			},
			"context_files": {
				Type:        schema.TypeList,
				Optional:    true,
				Description: "Glob patterns, `**` included, of context files merged before the `context` blocks",
				Elem: &schema.Schema{
					Type: schema.TypeString,
				},
			},
			"schemas": {
				Type:        schema.TypeMap,
				Optional:    true,
				Description: "Map of either inline or paths to JSON schemas to validate one by one in name order against the context",
				Elem: &schema.Schema{
					Type: schema.TypeString,
				},
			},
			"output_file": {
				Type:        schema.TypeString,
				Optional:    true,
				Description: "Path of a file atomically replaced with the rendered result on every read",
			},
			"directive":         directiveSchema(),
			"delimiters":        delimitersSchema(),
			"strict_undefined":  strictUndefinedSchema(),
			"trim_blocks":       trimBlocksSchema(),
			"left_strip_blocks": leftStripBlocksSchema(),
			"result": {
				Type:        schema.TypeString,
				Computed:    true,
				Description: "Rendered template with the given context",
			},
			"merged_context": {
				Type:        schema.TypeString,
				Computed:    true,
				Description: "JSON encoded representation of the merged context that has been applied to the template",
			},
		},
	}
}

func readTemplate(ctx context.Context, d *schema.ResourceData, meta interface{}) diag.Diagnostics {
	m := getMeta(meta)

	renderContext, err := parseRenderContext(d, m.Configuration)
	if err != nil {
		return diag.Errorf("failed to parse data source: %s", err)
	}

	m.Logger.Debug("rendering template", "layers", len(renderContext.Values), "schemas", len(renderContext.Schemas), "directive", renderContext.Configuration.Directive.String(), "output_file", renderContext.OutputFile)
	result, values, err := lib.Render(renderContext)
	if err != nil {
		return diag.FromErr(err)
	}

	if err := d.Set("result", string(result)); err != nil {
		return diag.Errorf("failed to output result: %s", err)
	}

	mergedContext, err := json.Marshal(values)
	if err != nil {
		return diag.Errorf("failed to marshal merged context: %s", err)
	}
	if err := d.Set("merged_context", string(mergedContext)); err != nil {
		return diag.Errorf("failed to output merged context: %s", err)
	}

	d.SetId(hash(result))

	return nil
}

func parseRenderContext(d *schema.ResourceData, configuration lib.Configuration) (*lib.Context, error) {
	renderContext := &lib.Context{
		Source: lib.Source{
			Template:  d.Get("template").(string),
			Directory: d.Get("directory").(string),
		},
		OutputFile:    d.Get("output_file").(string),
		Configuration: configuration,
		Schemas:       make(map[string]json.RawMessage),
	}

	if directive, ok := d.GetOk("directive"); ok {
		parsed, err := lib.ParseDirectiveName(directive.(string))
		if err != nil {
			return nil, err
		}
		renderContext.Configuration.Directive = parsed
	}
	if delimiters, ok := d.GetOk("delimiters.0"); ok {
		renderContext.Configuration.Delimiters = parseDelimiters(delimiters.(map[string]interface{}))
	}
	if strictUndefined, ok := d.GetOk("strict_undefined"); ok {
		renderContext.Configuration.StrictUndefined = strictUndefined.(bool)
	}
	if leftStripBlocks, ok := d.GetOk("left_strip_blocks"); ok {
		renderContext.Configuration.LeftStripBlocks = leftStripBlocks.(bool)
	}
	if trimBlocks, ok := d.GetOk("trim_blocks"); ok {
		renderContext.Configuration.TrimBlocks = trimBlocks.(bool)
	}

	if patterns, ok := d.GetOk("context_files"); ok {
		globs := make([]string, 0)
		for _, pattern := range patterns.([]interface{}) {
			globs = append(globs, pattern.(string))
		}
		files, err := lib.LoadValuesFiles(globs...)
		if err != nil {
			return nil, fmt.Errorf("failed to load context files: %s", err)
		}
		renderContext.Values = append(renderContext.Values, files...)
	}

	if blocks, ok := d.GetOk("context"); ok {
		for index := range blocks.([]interface{}) {
			renderContext.Values = append(renderContext.Values, lib.Values{
				Type: d.Get(fmt.Sprintf("context.%d.type", index)).(string),
				Data: []byte(d.Get(fmt.Sprintf("context.%d.data", index)).(string)),
			})
		}
	}

	if schemas, ok := d.GetOk("schemas"); ok {
		for name, value := range schemas.(map[string]interface{}) {
			content := value.(string)
			if _, err := os.Stat(content); err == nil {
				raw, err := os.ReadFile(content)
				if err != nil {
					return nil, fmt.Errorf("failed to read path %s: %s", content, err)
				}
				content = string(raw)
			}
			renderContext.Schemas[name] = json.RawMessage(content)
		}
	}

	return renderContext, nil
}

func hash(result []byte) string {
	sum := sha256.Sum256(result)
	return base64.URLEncoding.EncodeToString(sum[:])
}
