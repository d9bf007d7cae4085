package sailfish

import (
	"context"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/terraform-plugin-sdk/v2/diag"
	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/schema"

	"github.com/nikolalohinski/terraform-provider-sailfish/lib"
)

type providerMeta struct {
	Configuration lib.Configuration
	Logger        hclog.Logger
}

// Provider returns a *schema.Provider.
func Provider() *schema.Provider {
	delimiters := delimitersSchema()
	delimiters.Description = "Provider-wide custom delimiters for the jinja engine"
	strictUndefined := strictUndefinedSchema()
	strictUndefined.Description = "Provider-wide toggle to fail on missing attribute/item"
	trimBlocks := trimBlocksSchema()
	trimBlocks.Description = "Provider-wide toggle to remove the first newline after a block"
	leftStripBlocks := leftStripBlocksSchema()
	leftStripBlocks.Description = "Provider-wide toggle to trim leading spaces and tabs from the start of a line to a block"
	return &schema.Provider{
		Schema: map[string]*schema.Schema{
			"autoescape": {
				Type:        schema.TypeBool,
				Optional:    true,
				Default:     true,
				Description: "Provider-wide toggle to HTML escape rendered output unless a data source sets its own directive",
			},
			"delimiters":        delimiters,
			"strict_undefined":  strictUndefined,
			"trim_blocks":       trimBlocks,
			"left_strip_blocks": leftStripBlocks,
		},
		DataSourcesMap: map[string]*schema.Resource{
			"sailfish_fragment": dataSourceFragment(),
			"sailfish_template": dataSourceTemplate(),
		},
		ConfigureContextFunc: providerConfigure,
	}
}

func providerConfigure(ctx context.Context, d *schema.ResourceData) (interface{}, diag.Diagnostics) {
	configuration := lib.DefaultConfiguration()
	if !d.Get("autoescape").(bool) {
		configuration.Directive = lib.EmitRaw
	}
	if delimiters, ok := d.GetOk("delimiters.0"); ok {
		configuration.Delimiters = parseDelimiters(delimiters.(map[string]interface{}))
	}
	if strictUndefined, ok := d.GetOk("strict_undefined"); ok {
		configuration.StrictUndefined = strictUndefined.(bool)
	}
	if leftStripBlocks, ok := d.GetOk("left_strip_blocks"); ok {
		configuration.LeftStripBlocks = leftStripBlocks.(bool)
	}
	if trimBlocks, ok := d.GetOk("trim_blocks"); ok {
		configuration.TrimBlocks = trimBlocks.(bool)
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "sailfish",
		Level:  hclog.LevelFromString(os.Getenv("TF_LOG")),
		Output: os.Stderr,
	})
	return &providerMeta{Configuration: configuration, Logger: logger}, nil
}

func getMeta(meta interface{}) *providerMeta {
	if m, ok := meta.(*providerMeta); ok && m != nil {
		return m
	}
	return &providerMeta{Configuration: lib.DefaultConfiguration(), Logger: hclog.NewNullLogger()}
}
