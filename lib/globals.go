package lib

import (
	"errors"

	"github.com/google/uuid"
	"github.com/nikolalohinski/gonja/v2/exec"
)

// Set with -ldflags "-X github.com/nikolalohinski/terraform-provider-sailfish/lib.version=..."
var (
	version = "0.0.0+trunk"
	commit  = "0000000000000000000000000000000000000000"
)

const repository = "https://github.com/NikolaLohinski/terraform-provider-sailfish"

// Globals are the variables and functions every template sees: build
// information under `sailfish`, the filter catalog with the capability each
// filter requires, and uuid().
var Globals = exec.NewContext(map[string]interface{}{
	"sailfish": map[string]interface{}{
		"version":    version,
		"commit":     commit,
		"repository": repository,
		"directives": []string{EmitEscaped.String(), EmitRaw.String()},
	},
	"filters": filterCatalog(Filters),
	"uuid":    globalUUID,
})

func filterCatalog(filters *FilterSet) map[string]string {
	catalog := make(map[string]string)
	for _, name := range filters.Names() {
		filter, _ := filters.Get(name)
		catalog[name] = filter.Requires.Adjective()
	}
	return catalog
}

func globalUUID(e *exec.Evaluator, params *exec.VarArgs) *exec.Value {
	if params != nil && (len(params.Args) > 0 || len(params.KwArgs) > 0) {
		return exec.AsValue(exec.ErrInvalidCall(errors.New("uuid takes no argument")))
	}
	return exec.AsValue(uuid.New().String())
}
