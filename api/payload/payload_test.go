package payload

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.uncharted.software/WM/runsync-client/api/job"
)

const testConfig = `job: extension
config:
  name: flux_lora
  process:
    - type: sd_trainer
      train:
        steps: 1000
        lr: 0.0004
`

func writeConfig(t *testing.T, contents string) string {
	configPath := path.Join(t.TempDir(), "ultra_fast_fluxdev.yaml")
	err := os.WriteFile(configPath, []byte(contents), 0644)
	assert.NoError(t, err)
	return configPath
}

func testOptions(t *testing.T) Options {
	return Options{
		ConfigPath: writeConfig(t, testConfig),
		DatasetURL: "https://example.com/dataset.zip",
		WebhookURL: "https://example.com/hook",
	}
}

func TestNewJobID(t *testing.T) {
	alnum := regexp.MustCompile(`^[a-z0-9]+$`)
	first := NewJobID()
	second := NewJobID()
	assert.Regexp(t, alnum, first)
	assert.Len(t, first, 32)
	assert.NotEqual(t, first, second)
}

func TestBuildEncodesConfigVerbatim(t *testing.T) {
	opts := testOptions(t)

	input, err := Build(opts)
	assert.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(input.Config)
	assert.NoError(t, err)
	assert.Equal(t, testConfig, string(decoded))
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte(testConfig)), input.Config)
	assert.Equal(t, opts.DatasetURL, input.DatasetURL)
	assert.Equal(t, opts.WebhookURL, input.WebhookURL)
	assert.NotEmpty(t, input.JobID)
}

func TestBuildKeepsSuppliedJobID(t *testing.T) {
	opts := testOptions(t)
	opts.JobID = "myjob42"

	input, err := Build(opts)
	assert.NoError(t, err)
	assert.Equal(t, "myjob42", input.JobID)
}

func TestBuildArbitraryText(t *testing.T) {
	// the config is not required to be valid yaml unless it is overridden
	opts := testOptions(t)
	opts.ConfigPath = writeConfig(t, "{{ not: yaml ]]\n")

	input, err := Build(opts)
	assert.NoError(t, err)
	assert.Equal(t, EncodeConfig([]byte("{{ not: yaml ]]\n")), input.Config)

	opts.Overrides = map[string]string{"a": "b"}
	_, err = Build(opts)
	assert.Error(t, err)
}

func TestBuildMissingConfig(t *testing.T) {
	opts := testOptions(t)
	opts.ConfigPath = path.Join(t.TempDir(), "missing.yaml")

	_, err := Build(opts)
	assert.Error(t, err)
}

func TestBuildWithOverrides(t *testing.T) {
	opts := testOptions(t)
	opts.Overrides = map[string]string{"config.process.0.train.steps": "2000"}

	input, err := Build(opts)
	assert.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(input.Config)
	assert.NoError(t, err)
	assert.Contains(t, string(decoded), "steps: 2000")
}

func TestValidate(t *testing.T) {
	valid := job.TrainingInput{
		Config:     EncodeConfig([]byte(testConfig)),
		DatasetURL: "https://example.com/dataset.zip",
		JobID:      "abc",
		WebhookURL: "http://localhost:4040/webhook",
	}
	assert.NoError(t, Validate(&valid))

	tests := []struct {
		name   string
		mutate func(in *job.TrainingInput)
	}{
		{"missing config", func(in *job.TrainingInput) { in.Config = "" }},
		{"bad base64", func(in *job.TrainingInput) { in.Config = "%%%" }},
		{"missing job id", func(in *job.TrainingInput) { in.JobID = "" }},
		{"missing dataset", func(in *job.TrainingInput) { in.DatasetURL = "" }},
		{"relative dataset", func(in *job.TrainingInput) { in.DatasetURL = "data/50.zip" }},
		{"ftp webhook", func(in *job.TrainingInput) { in.WebhookURL = "ftp://example.com/hook" }},
		{"bad control", func(in *job.TrainingInput) { in.ControlURL = "not a url" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			assert.Error(t, Validate(&in))
		})
	}
}

func TestWriteFile(t *testing.T) {
	input, err := Build(testOptions(t))
	assert.NoError(t, err)

	outPath := path.Join(t.TempDir(), "test_input.json")
	err = WriteFile(outPath, input)
	assert.NoError(t, err)

	data, err := os.ReadFile(outPath)
	assert.NoError(t, err)

	var fields map[string]interface{}
	err = json.Unmarshal(data, &fields)
	assert.NoError(t, err)
	assert.Len(t, fields, 4)
	for _, key := range []string{"config", "dataset_url", "job_id", "webhook_url"} {
		assert.IsType(t, "", fields[key], key)
	}
	assert.Equal(t, EncodeConfig([]byte(testConfig)), fields["config"])

	// two space indentation
	assert.Contains(t, string(data), "{\n  \"config\": ")
}

func TestWriteFileControlURL(t *testing.T) {
	opts := testOptions(t)
	opts.ControlURL = "https://example.com/control"
	input, err := Build(opts)
	assert.NoError(t, err)

	outPath := path.Join(t.TempDir(), "test_input.json")
	assert.NoError(t, WriteFile(outPath, input))

	data, err := os.ReadFile(outPath)
	assert.NoError(t, err)
	var fields map[string]interface{}
	assert.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "https://example.com/control", fields["control_url"])
}
