package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const envPrefix = "runpod"

// Environment contains the imported environment variables.
type Environment struct {
	// Debug vs Deploy
	Mode string `default:"dev"`
	// Bearer token for the RunPod API
	APIKey string `envconfig:"API_KEY" json:"-"`
	// Serverless endpoint that runs the training worker
	EndpointID string `default:"7wuje5a92wlzwd" split_words:"true"`
	// REST API base address, the endpoint ID is appended to it
	APIAddr string `envconfig:"API_ADDR" default:"https://api.runpod.ai/v2"`
	// GraphQL API address used for endpoint listing
	GraphqlAddr string `envconfig:"GRAPHQL_ADDR" default:"https://api.runpod.io/graphql"`
	// Request timeout, 0 disables it
	TimeoutSec int `default:"4096" split_words:"true"`
	// Status polling interval while a job is queued or running
	PollIntervalSec int `default:"5" split_words:"true"`
	// Keep polling /status when runsync returns before the job finished
	WaitForCompletion bool `default:"true" split_words:"true"`
	// Training config sent to the worker
	ConfigPath string `default:"ultra_fast_fluxdev.yaml" split_words:"true"`
	// Where the generated payload is written
	InputPath string `default:"test_input.json" split_words:"true"`
	DatasetURL string `envconfig:"DATASET_URL" default:"https://huggingface.co/nerijs/im-a-cool-lora/resolve/main/50_svportrait64.zip"`
	WebhookURL string `envconfig:"WEBHOOK_URL" default:"https://webhook.site/bd42310b-68b7-4d8f-a720-d0d15b1e3014"`
	// Webhook receiver listen address
	Addr string `default:":4040"`
	// Webhook receiver queue size
	NotificationQueueSize int `default:"100" split_words:"true"`
	// Use persisted queue or default (memory only) queue.
	PersistedQueue bool `default:"true" split_words:"true"`
	// Directory to store the queue data in when persisted queue is used.
	QueueDir string `default:"./" split_words:"true"`
	// Name of queue when persisted queue is used.
	QueueName string `default:"notifications" split_words:"true"`
}

func (e Environment) String() string {
	masked := struct {
		Environment
		APIKey string
	}{e, maskKey(e.APIKey)}
	settings, err := json.MarshalIndent(masked, "", "    ")
	if err != nil {
		return fmt.Errorf("Failed to marshal env: %v", err).Error()
	}
	return fmt.Sprintf("Environment Settings:\n%s\n", string(settings))
}

// Timeout returns the HTTP client timeout.
func (e *Environment) Timeout() time.Duration {
	return time.Duration(e.TimeoutSec) * time.Second
}

// PollInterval returns the delay between two status polls.
func (e *Environment) PollInterval() time.Duration {
	return time.Duration(e.PollIntervalSec) * time.Second
}

func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "********"
	}
	return key[:4] + "********"
}

// Load imports the environment variables and returns them in an Environment.
func Load(envFile string) (*Environment, error) {
	testEnv := os.Getenv("RUNPOD_MODE")
	// if no mode in the existing environment, load the env file if there is one,
	// otherwise (in production) just check existing host environment
	if "" == testEnv && envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "Error loading %s file", envFile)
		}
	}

	var env Environment
	err := envconfig.Process(envPrefix, &env)
	if err != nil {
		return nil, errors.Wrap(err, "Error processing environment config")
	}
	if env.PollIntervalSec < 1 {
		return nil, errors.Errorf("RUNPOD_POLL_INTERVAL_SEC must be at least 1, got %d", env.PollIntervalSec)
	}
	return &env, nil
}
