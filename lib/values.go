package lib

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/imdario/mergo"
	"github.com/pelletier/go-toml/v2"
	"github.com/yargevad/filepathx"
	"gopkg.in/yaml.v3"
)

var valueTypes = map[string]string{
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".toml": "toml",
}

// MergeValues decodes each layer and merges them in order, later layers
// overriding earlier ones.
func MergeValues(values []Values) (map[string]interface{}, error) {
	var mergedValues map[string]interface{}
	for index, value := range values {
		layer := make(map[string]interface{})
		if err := unmarshalValues(value, &layer); err != nil {
			return nil, err
		}

		if mergedValues == nil {
			mergedValues = layer
			continue
		}
		if err := mergo.Merge(&mergedValues, layer, mergo.WithOverride, mergo.WithOverwriteWithEmptyValue); err != nil {
			return nil, fmt.Errorf("failed to merge %s values layer: %s", humanize.Ordinal(index+1), err)
		}
	}
	if mergedValues == nil {
		mergedValues = make(map[string]interface{})
	}
	return mergedValues, nil
}

// DecodeValue decodes a single document or, for the "string" type, returns
// the data as is.
func DecodeValue(value Values) (interface{}, error) {
	if strings.ToLower(value.Type) == "string" || value.Type == "" {
		return string(value.Data), nil
	}
	object := new(interface{})
	if err := unmarshalValues(value, object); err != nil {
		return nil, err
	}
	return *object, nil
}

func unmarshalValues(value Values, out interface{}) error {
	switch strings.ToLower(value.Type) {
	case "json":
		// Validate JSON before unmarshalling with the YAML decoder, which keeps integers as integers
		if err := jsonAPI.Unmarshal(value.Data, new(interface{})); err != nil {
			return fmt.Errorf("failed to decode JSON context: %s", err)
		}
		if err := yaml.Unmarshal(value.Data, out); err != nil {
			return fmt.Errorf("failed to unmarshal JSON context: %s", err)
		}
	case "yaml":
		if err := yaml.Unmarshal(value.Data, out); err != nil {
			return fmt.Errorf("failed to unmarshal YAML context: %s", err)
		}
	case "toml":
		if err := toml.Unmarshal(value.Data, out); err != nil {
			return fmt.Errorf("failed to unmarshal TOML context: %s", err)
		}
	default:
		return fmt.Errorf("provided context has an unsupported type: %v", value.Type)
	}
	return nil
}

// LoadValuesFiles reads every file matching the patterns, which may use
// `**`, typing each one by its extension. Matches of a pattern are sorted.
func LoadValuesFiles(patterns ...string) ([]Values, error) {
	values := make([]Values, 0)
	for _, pattern := range patterns {
		matches, err := filepathx.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to traverse %s: %s", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no file matches %s", pattern)
		}
		sort.Strings(matches)
		for _, match := range matches {
			kind, ok := valueTypes[strings.ToLower(filepath.Ext(match))]
			if !ok {
				return nil, fmt.Errorf("file %s has no supported extension", match)
			}
			data, err := os.ReadFile(match)
			if err != nil {
				return nil, fmt.Errorf("failed to read file at path %s: %s", match, err)
			}
			values = append(values, Values{Data: data, Type: kind})
		}
	}
	return values, nil
}
