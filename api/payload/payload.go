package payload

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gitlab.uncharted.software/WM/runsync-client/api/job"
)

// Options controls how a training input is assembled.  Empty JobID means a new one is
// generated.
type Options struct {
	ConfigPath string
	DatasetURL string
	WebhookURL string
	ControlURL string
	JobID      string
	Overrides  map[string]string
}

// NewJobID returns a random lowercase alphanumeric token.
func NewJobID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// EncodeConfig base64 encodes the config contents as is.
func EncodeConfig(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Build reads the training config, applies any overrides and returns a validated
// training input.
func Build(opts Options) (*job.TrainingInput, error) {
	data, err := os.ReadFile(opts.ConfigPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", opts.ConfigPath)
	}

	data, err = ApplyOverrides(data, opts.Overrides)
	if err != nil {
		return nil, err
	}

	jobID := opts.JobID
	if jobID == "" {
		jobID = NewJobID()
	}

	input := &job.TrainingInput{
		Config:     EncodeConfig(data),
		DatasetURL: opts.DatasetURL,
		JobID:      jobID,
		WebhookURL: opts.WebhookURL,
		ControlURL: opts.ControlURL,
	}
	if err := Validate(input); err != nil {
		return nil, err
	}
	return input, nil
}

// Validate checks that a training input carries the fields the worker requires.
func Validate(input *job.TrainingInput) error {
	if input.Config == "" {
		return errors.New("config missing")
	}
	if _, err := base64.StdEncoding.DecodeString(input.Config); err != nil {
		return errors.Wrap(err, "config is not valid base64")
	}
	if input.JobID == "" {
		return errors.New("job_id missing")
	}
	if err := checkURL("dataset_url", input.DatasetURL); err != nil {
		return err
	}
	if err := checkURL("webhook_url", input.WebhookURL); err != nil {
		return err
	}
	if input.ControlURL != "" {
		if err := checkURL("control_url", input.ControlURL); err != nil {
			return err
		}
	}
	return nil
}

func checkURL(name string, value string) error {
	if value == "" {
		return errors.Errorf("%s missing", name)
	}
	u, err := url.Parse(value)
	if err != nil {
		return errors.Wrapf(err, "%s is not a valid url", name)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Errorf("%s must be an absolute http(s) url: %s", name, value)
	}
	return nil
}

// WriteFile stores the training input as indented JSON.
func WriteFile(path string, input *job.TrainingInput) error {
	data, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal training input")
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
