package lib

import (
	"errors"

	"github.com/nikolalohinski/gonja/v2/exec"
)

var Tests = exec.NewTestSet(map[string]exec.TestFunction{
	"debuggable":  capabilityTest(Debuggable),
	"displayable": capabilityTest(Displayable),
	"renderable":  capabilityTest(Renderable),
	"numeric":     capabilityTest(Numeric),
})

func capabilityTest(capability Capability) exec.TestFunction {
	return func(ctx *exec.Context, in *exec.Value, params *exec.VarArgs) (bool, error) {
		if in.IsError() {
			return false, errors.New(in.Error())
		}
		if params != nil && (len(params.Args) > 0 || len(params.KwArgs) > 0) {
			return false, exec.ErrInvalidCall(errors.New("capability tests take no argument"))
		}
		return AsValue(in.Interface()).Capabilities().Has(capability), nil
	}
}
