package testsupport

import (
	"os"

	"gopkg.in/yaml.v3"
)

// LoadYAMLFixture decodes a yaml fixture into v.
func LoadYAMLFixture(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, v)
}
