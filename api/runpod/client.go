package runpod

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/machinebox/graphql"
	"github.com/pkg/errors"
	"gitlab.uncharted.software/WM/runsync-client/api/job"
	"gitlab.uncharted.software/WM/runsync-client/config"
)

// maximum number of body bytes quoted in a status error
const errorBodyLimit = 512

// lower bound on the delay between two status polls
const minPollInterval = 250 * time.Millisecond

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP error! status: %d: %s", e.StatusCode, e.Body)
}

// Client talks to a single RunPod serverless endpoint.
type Client struct {
	config.Config
	endpointID   string
	httpClient   *http.Client
	graphql      *graphql.Client
	pollInterval time.Duration
}

// NewClient creates a client for the configured endpoint.  An empty endpointID falls back
// to the environment's endpoint.
func NewClient(cfg *config.Config, endpointID string) *Client {
	if endpointID == "" {
		endpointID = cfg.Environment.EndpointID
	}

	// standard http client with our timeout
	httpClient := &http.Client{Timeout: cfg.Environment.Timeout()}

	// graphql client that uses our http client - our timeout is applied transitively
	graphQLClient := graphql.NewClient(cfg.Environment.GraphqlAddr, graphql.WithHTTPClient(httpClient))

	pollInterval := cfg.Environment.PollInterval()
	if pollInterval < minPollInterval {
		pollInterval = minPollInterval
	}

	return &Client{
		Config: config.Config{
			Logger:      cfg.Logger,
			Environment: cfg.Environment,
		},
		endpointID:   endpointID,
		httpClient:   httpClient,
		graphql:      graphQLClient,
		pollInterval: pollInterval,
	}
}

// EndpointID returns the endpoint requests are sent to.
func (c *Client) EndpointID() string {
	return c.endpointID
}

func (c *Client) endpointURL(parts ...string) string {
	base := strings.TrimRight(c.Environment.APIAddr, "/")
	return base + "/" + strings.Join(append([]string{c.endpointID}, parts...), "/")
}

// RunSync submits the training input and waits for the synchronous response.
func (c *Client) RunSync(ctx context.Context, input *job.TrainingInput) (*job.RunResponse, error) {
	body, err := json.Marshal(job.RunRequest{Input: input})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal run request")
	}

	c.Logger.Infof("Submitting job %s to endpoint %s", input.JobID, c.endpointID)
	started := time.Now()
	var resp job.RunResponse
	if err := c.do(ctx, http.MethodPost, c.endpointURL("runsync"), body, &resp); err != nil {
		return nil, errors.Wrap(err, "runsync request failed")
	}
	c.Logger.Infof("Job %s returned %s after %.2fs", resp.ID, resp.Status, time.Since(started).Seconds())
	return &resp, nil
}

// Status fetches the current state of a job.
func (c *Client) Status(ctx context.Context, jobID string) (*job.RunResponse, error) {
	var resp job.RunResponse
	if err := c.do(ctx, http.MethodGet, c.endpointURL("status", jobID), nil, &resp); err != nil {
		return nil, errors.Wrapf(err, "status request for %s failed", jobID)
	}
	return &resp, nil
}

// Cancel requests cancellation of a queued or running job.
func (c *Client) Cancel(ctx context.Context, jobID string) (*job.RunResponse, error) {
	var resp job.RunResponse
	if err := c.do(ctx, http.MethodPost, c.endpointURL("cancel", jobID), nil, &resp); err != nil {
		return nil, errors.Wrapf(err, "cancel request for %s failed", jobID)
	}
	return &resp, nil
}

// Health fetches the endpoint's job and worker counts.
func (c *Client) Health(ctx context.Context) (*job.Health, error) {
	var health job.Health
	if err := c.do(ctx, http.MethodGet, c.endpointURL("health"), nil, &health); err != nil {
		return nil, errors.Wrap(err, "health request failed")
	}
	return &health, nil
}

// Wait polls the job status until it leaves the queued/running states.  The supplied
// response is returned unchanged if it is already terminal.
func (c *Client) Wait(ctx context.Context, resp *job.RunResponse) (*job.RunResponse, error) {
	current := resp
	for current.Pending() {
		c.Logger.Debugf("Job %s is %s, polling again in %s", current.ID, current.Status, c.pollInterval)
		select {
		case <-ctx.Done():
			return current, errors.Wrapf(ctx.Err(), "stopped waiting for job %s", current.ID)
		case <-time.After(c.pollInterval):
		}

		next, err := c.Status(ctx, current.ID)
		if err != nil {
			return current, err
		}
		if next.ID == "" {
			next.ID = current.ID
		}
		current = next
	}
	return current, nil
}

func (c *Client) do(ctx context.Context, method string, url string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Environment.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := strings.TrimSpace(string(respBody))
		if len(text) > errorBodyLimit {
			text = text[:errorBodyLimit] + "..."
		}
		return &StatusError{StatusCode: resp.StatusCode, Body: text}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrap(err, "failed to unmarshal response body")
	}
	if run, ok := out.(*job.RunResponse); ok {
		run.Raw = respBody
	}
	return nil
}
