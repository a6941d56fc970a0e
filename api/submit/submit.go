package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"gitlab.uncharted.software/WM/runsync-client/api/job"
	"gitlab.uncharted.software/WM/runsync-client/api/payload"
	"gitlab.uncharted.software/WM/runsync-client/api/runpod"
	"gitlab.uncharted.software/WM/runsync-client/config"
)

// ErrMissingAPIKey is returned when a request would be sent without credentials.
var ErrMissingAPIKey = errors.New("RUNPOD_API_KEY is not set")

// Options drives a single submission.
type Options struct {
	payload.Options
	EndpointID string
	InputPath  string
	Wait       bool
	DryRun     bool
}

// Run builds the training input, writes it to InputPath and, unless DryRun is set, submits
// it to the runsync endpoint.  The response and its results are written to out.  A job
// that ends in a failed state is reported as an error after its response was printed.
func Run(ctx context.Context, cfg *config.Config, opts Options, out io.Writer) (*job.RunResponse, error) {
	if !opts.DryRun && cfg.Environment.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	input, err := payload.Build(opts.Options)
	if err != nil {
		return nil, err
	}
	if err := payload.WriteFile(opts.InputPath, input); err != nil {
		return nil, err
	}
	cfg.Logger.Infof("Wrote training input for job %s to %s", input.JobID, opts.InputPath)

	if opts.DryRun {
		return nil, nil
	}

	client := runpod.NewClient(cfg, opts.EndpointID)
	resp, err := client.RunSync(ctx, input)
	if err != nil {
		return nil, err
	}
	if opts.Wait && resp.Pending() {
		resp, err = client.Wait(ctx, resp)
		if err != nil {
			// print the last known state before giving up
			if printErr := PrintResponse(out, resp); printErr != nil {
				cfg.Logger.Warnf("Failed to print last response for job %s: %v", resp.ID, printErr)
			}
			return resp, err
		}
	}

	if err := PrintResponse(out, resp); err != nil {
		return resp, err
	}
	if resp.Failed() {
		return resp, errors.Errorf("job %s finished with status %s: %s", resp.ID, resp.Status, resp.Error)
	}
	return resp, nil
}

// PrintResponse writes the full response followed by the worker results.
func PrintResponse(out io.Writer, resp *job.RunResponse) error {
	raw := resp.Raw
	if len(raw) == 0 {
		marshalled, err := json.Marshal(resp)
		if err != nil {
			return errors.Wrap(err, "failed to marshal response")
		}
		raw = marshalled
	}
	indented := bytes.Buffer{}
	if err := json.Indent(&indented, raw, "", "  "); err != nil {
		return errors.Wrap(err, "failed to format response")
	}

	results := bytes.Buffer{}
	if raw := resp.Results(); len(raw) > 0 {
		if err := json.Indent(&results, raw, "", "  "); err != nil {
			return errors.Wrap(err, "failed to format results")
		}
	} else {
		results.WriteString("null")
	}

	if _, err := fmt.Fprintf(out, "%s\n%s\n", indented.String(), results.String()); err != nil {
		return errors.Wrap(err, "failed to write response")
	}
	return nil
}
