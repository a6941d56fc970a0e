package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"
	"gitlab.uncharted.software/WM/runsync-client/api/payload"
	"gitlab.uncharted.software/WM/runsync-client/api/submit"
)

var (
	endpointFlag = cli.StringFlag{
		Name:  "endpoint",
		Usage: "Serverless endpoint ID (default: RUNPOD_ENDPOINT_ID)",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "Training config YAML (default: RUNPOD_CONFIG_PATH)",
	}
	outputFlag = cli.StringFlag{
		Name:  "output",
		Usage: "File the training input is written to (default: RUNPOD_INPUT_PATH)",
	}
	datasetURLFlag = cli.StringFlag{
		Name:  "dataset-url",
		Usage: "Zip archive with the training images (default: RUNPOD_DATASET_URL)",
	}
	webhookURLFlag = cli.StringFlag{
		Name:  "webhook-url",
		Usage: "URL notified when the job completes (default: RUNPOD_WEBHOOK_URL)",
	}
	controlURLFlag = cli.StringFlag{
		Name:  "control-url",
		Usage: "Optional control URL passed to the worker",
	}
	jobIDFlag = cli.StringFlag{
		Name:  "job-id",
		Usage: "Job ID to use instead of a random one",
	}
	setFlag = cli.StringSliceFlag{
		Name:  "set",
		Usage: "Override a config value, e.g. --set config.process.0.train.steps=2000",
	}
	noWaitFlag = cli.BoolFlag{
		Name:  "no-wait",
		Usage: "Do not poll for completion when runsync returns early",
	}
	dryRunFlag = cli.BoolFlag{
		Name:  "dry-run",
		Usage: "Only write the training input file",
	}

	submitFlags = []cli.Flag{
		endpointFlag,
		configFlag,
		outputFlag,
		datasetURLFlag,
		webhookURLFlag,
		controlURLFlag,
		jobIDFlag,
		setFlag,
		noWaitFlag,
		dryRunFlag,
	}

	submitCommand = cli.Command{
		Action:    submitJob,
		Name:      "submit",
		Usage:     "Submit a training job and print its results (default command)",
		ArgsUsage: " ",
		Flags:     submitFlags,
		Description: `
The submit command base64 encodes the training config, writes the job input
to disk and posts it to the endpoint's runsync route.  The full response is
printed followed by output.results.`,
	}
)

func stringOr(ctx *cli.Context, flag cli.StringFlag, fallback string) string {
	if value := ctx.String(flag.Name); value != "" {
		return value
	}
	return fallback
}

// signalContext returns a context cancelled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func submitJob(ctx *cli.Context) error {
	if args := ctx.Args(); len(args) > 0 {
		return cli.NewExitError("invalid command: "+args[0], 1)
	}

	overrides, err := payload.ParseOverrides(ctx.StringSlice(setFlag.Name))
	if err != nil {
		return err
	}

	env := cfg.Environment
	opts := submit.Options{
		Options: payload.Options{
			ConfigPath: stringOr(ctx, configFlag, env.ConfigPath),
			DatasetURL: stringOr(ctx, datasetURLFlag, env.DatasetURL),
			WebhookURL: stringOr(ctx, webhookURLFlag, env.WebhookURL),
			ControlURL: ctx.String(controlURLFlag.Name),
			JobID:      ctx.String(jobIDFlag.Name),
			Overrides:  overrides,
		},
		EndpointID: stringOr(ctx, endpointFlag, env.EndpointID),
		InputPath:  stringOr(ctx, outputFlag, env.InputPath),
		Wait:       env.WaitForCompletion && !ctx.Bool(noWaitFlag.Name),
		DryRun:     ctx.Bool(dryRunFlag.Name),
	}

	runCtx, stop := signalContext()
	defer stop()

	_, err = submit.Run(runCtx, cfg, opts, os.Stdout)
	return err
}
