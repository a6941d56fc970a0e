package job

import (
	"encoding/json"
	"time"
)

// Job statuses reported by the RunPod serverless API.
const (
	StatusInQueue    = "IN_QUEUE"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
	StatusCancelled  = "CANCELLED"
	StatusTimedOut   = "TIMED_OUT"
)

// TrainingInput is the payload the training worker expects under the request's `input`
// key.  ControlURL is optional and omitted from the serialized form when empty.
type TrainingInput struct {
	Config     string `json:"config"`
	DatasetURL string `json:"dataset_url"`
	JobID      string `json:"job_id"`
	WebhookURL string `json:"webhook_url"`
	ControlURL string `json:"control_url,omitempty"`
}

// RunRequest is the body posted to the runsync endpoint.
type RunRequest struct {
	Input *TrainingInput `json:"input"`
}

// Result is a single entry of the worker output.
type Result struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
	Message  string `json:"message,omitempty"`
	ModelURL string `json:"model_url,omitempty"`
}

// RunResponse is returned by the runsync, status and cancel endpoints.  Output is kept
// as sent since its shape is up to the worker.  Raw holds the whole body as received so
// that it can be printed without loss.
type RunResponse struct {
	ID            string          `json:"id"`
	Status        string          `json:"status"`
	DelayTime     int64           `json:"delayTime,omitempty"`
	ExecutionTime int64           `json:"executionTime,omitempty"`
	Output        json.RawMessage `json:"output,omitempty"`
	Error         string          `json:"error,omitempty"`
	Raw           json.RawMessage `json:"-"`
}

// Pending indicates that the job has not reached a terminal state yet.
func (r *RunResponse) Pending() bool {
	return r.Status == StatusInQueue || r.Status == StatusInProgress
}

// Failed indicates that the job ended without completing.
func (r *RunResponse) Failed() bool {
	return r.Status == StatusFailed || r.Status == StatusCancelled || r.Status == StatusTimedOut
}

// Results returns `output.results` exactly as sent, or nil when the output is missing or
// is not an object.
func (r *RunResponse) Results() json.RawMessage {
	if len(r.Output) == 0 {
		return nil
	}
	var output struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(r.Output, &output); err != nil {
		return nil
	}
	return output.Results
}

// TypedResults decodes `output.results` into the training worker's result model.
func (r *RunResponse) TypedResults() ([]Result, error) {
	raw := r.Results()
	if len(raw) == 0 {
		return nil, nil
	}
	var results []Result
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Health summarizes the endpoint's job and worker counts.
type Health struct {
	Jobs struct {
		Completed  int `json:"completed"`
		Failed     int `json:"failed"`
		InProgress int `json:"inProgress"`
		InQueue    int `json:"inQueue"`
		Retried    int `json:"retried"`
	} `json:"jobs"`
	Workers struct {
		Idle    int `json:"idle"`
		Running int `json:"running"`
	} `json:"workers"`
}

// Notification is posted by the worker to the job's webhook URL.
type Notification struct {
	Type       string          `json:"type"`
	JobID      string          `json:"job_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	ReceivedAt time.Time       `json:"received_at"`
}
