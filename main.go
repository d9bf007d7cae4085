package main

import (
	"github.com/hashicorp/terraform-plugin-sdk/v2/plugin"

	sailfish "github.com/nikolalohinski/terraform-provider-sailfish/provider"
)

func main() {
	plugin.Serve(&plugin.ServeOpts{ProviderFunc: sailfish.Provider})
}
