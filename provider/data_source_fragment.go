package sailfish

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/terraform-plugin-sdk/v2/diag"
	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/schema"
	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/validation"

	"github.com/nikolalohinski/terraform-provider-sailfish/lib"
)

var valueTypes = []string{"string", "yaml", "json", "toml"}

func dataSourceFragment() *schema.Resource {
	return &schema.Resource{
		ReadContext: readFragment,
		Description: "The sailfish_fragment data source applies a chain of sailfish filters to a value, the way `<%= value | filters %>` does",
		Schema: map[string]*schema.Schema{
			"value": {
				Type:        schema.TypeString,
				Required:    true,
				Description: "Value to format, decoded according to `type`",
			},
			"type": {
				Type:         schema.TypeString,
				Optional:     true,
				Default:      "string",
				ValidateFunc: validation.StringInSlice(valueTypes, true),
				Description:  fmt.Sprintf("Type of parsing (one of: %s) to perform on the given value", strings.Join(valueTypes, ", ")),
			},
			"filters": {
				Type:        schema.TypeString,
				Optional:    true,
				Description: "Filter chain applied left to right, e.g. `dbg | truncate(10)`",
			},
			"directive": directiveSchema(),
			"result": {
				Type:        schema.TypeString,
				Computed:    true,
				Description: "Formatted value",
			},
		},
	}
}

func readFragment(ctx context.Context, d *schema.ResourceData, meta interface{}) diag.Diagnostics {
	m := getMeta(meta)

	directive := m.Configuration.Directive
	if name, ok := d.GetOk("directive"); ok {
		parsed, err := lib.ParseDirectiveName(name.(string))
		if err != nil {
			return diag.FromErr(err)
		}
		directive = parsed
	}

	value, err := lib.DecodeValue(lib.Values{
		Data: []byte(d.Get("value").(string)),
		Type: d.Get("type").(string),
	})
	if err != nil {
		return diag.Errorf("failed to decode value: %s", err)
	}

	buffer := lib.NewBuffer()
	pipeline := lib.NewPipeline(lib.Filters, m.Logger)
	if err := pipeline.EmitExpression(buffer, directive, lib.AsValue(value), d.Get("filters").(string)); err != nil {
		return diag.Errorf("failed to emit fragment: %s", err)
	}

	if err := d.Set("result", buffer.String()); err != nil {
		return diag.Errorf("failed to output result: %s", err)
	}
	d.SetId(hash(buffer.Bytes()))

	return nil
}
