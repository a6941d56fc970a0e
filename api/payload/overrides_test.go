package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestParseOverrides(t *testing.T) {
	overrides, err := ParseOverrides([]string{"config.name=my_lora", "a.b=x=y"})
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"config.name": "my_lora", "a.b": "x=y"}, overrides)

	_, err = ParseOverrides([]string{"novalue"})
	assert.Error(t, err)
	_, err = ParseOverrides([]string{"=value"})
	assert.Error(t, err)
	_, err = ParseOverrides([]string{"a..b=value"})
	assert.Error(t, err)
}

func TestApplyOverridesNoop(t *testing.T) {
	data := []byte("# comment kept\nkey:   value\n")
	result, err := ApplyOverrides(data, nil)
	assert.NoError(t, err)
	assert.Equal(t, data, result)
}

func TestApplyOverrides(t *testing.T) {
	result, err := ApplyOverrides([]byte(testConfig), map[string]string{
		"config.name":                     "renamed",
		"config.process.0.train.steps":    "2000",
		"config.process.0.train.lr":       "1e-4",
		"config.process.0.save.dtype":     "float16",
		"config.process.0.network.linear": "16",
		"meta.enabled":                    "true",
	})
	assert.NoError(t, err)

	var doc struct {
		Config struct {
			Name    string `yaml:"name"`
			Process []struct {
				Train struct {
					Steps int     `yaml:"steps"`
					LR    float64 `yaml:"lr"`
				} `yaml:"train"`
				Save struct {
					Dtype string `yaml:"dtype"`
				} `yaml:"save"`
				Network struct {
					Linear int `yaml:"linear"`
				} `yaml:"network"`
			} `yaml:"process"`
		} `yaml:"config"`
		Meta struct {
			Enabled bool `yaml:"enabled"`
		} `yaml:"meta"`
	}
	err = yaml.Unmarshal(result, &doc)
	assert.NoError(t, err)
	assert.Equal(t, "renamed", doc.Config.Name)
	assert.Len(t, doc.Config.Process, 1)
	assert.Equal(t, 2000, doc.Config.Process[0].Train.Steps)
	assert.Equal(t, 0.0001, doc.Config.Process[0].Train.LR)
	assert.Equal(t, "float16", doc.Config.Process[0].Save.Dtype)
	assert.Equal(t, 16, doc.Config.Process[0].Network.Linear)
	assert.True(t, doc.Meta.Enabled)
}

func TestApplyOverridesAppendsToList(t *testing.T) {
	result, err := ApplyOverrides([]byte("items:\n  - a\n"), map[string]string{"items.1": "b"})
	assert.NoError(t, err)

	var doc map[string][]string
	assert.NoError(t, yaml.Unmarshal(result, &doc))
	assert.Equal(t, []string{"a", "b"}, doc["items"])
}

func TestApplyOverridesErrors(t *testing.T) {
	_, err := ApplyOverrides([]byte("items:\n  - a\n"), map[string]string{"items.5": "b"})
	assert.Error(t, err)

	_, err = ApplyOverrides([]byte("items:\n  - a\n"), map[string]string{"items.first": "b"})
	assert.Error(t, err)

	_, err = ApplyOverrides([]byte("name: scalar\n"), map[string]string{"name.inner": "b"})
	assert.Error(t, err)
}

func TestParseScalar(t *testing.T) {
	assert.Equal(t, 12, parseScalar("12"))
	assert.Equal(t, true, parseScalar("true"))
	assert.Equal(t, "text", parseScalar("text"))
	assert.Equal(t, "", parseScalar(""))
	assert.Equal(t, "[1, 2]", parseScalar("[1, 2]"))
}
