package main

import (
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/urfave/cli"
	"gitlab.uncharted.software/WM/runsync-client/config"
	"go.uber.org/zap"
)

const defaultEnvFile = ".env"

var (
	// populated at compile time based on data injected by the makefile
	version   = "unset"
	timestamp = "unset"
)

var (
	app = cli.NewApp()

	envFileFlag = cli.StringFlag{
		Name:  "env-file",
		Usage: "Environment file loaded when RUNPOD_MODE is not set",
		Value: defaultEnvFile,
	}

	// shared by all commands, set up in app.Before
	cfg    *config.Config
	logger *zap.Logger
)

func init() {
	app.Name = "runsync-client"
	app.Usage = "submit LoRA training jobs to a RunPod serverless endpoint"
	app.Version = fmt.Sprintf("%s (%s)", version, timestamp)
	app.HideVersion = true // we have a command to print the version
	app.Action = submitJob
	app.Flags = append([]cli.Flag{envFileFlag}, submitFlags...)
	app.Commands = []cli.Command{
		submitCommand,
		statusCommand,
		cancelCommand,
		healthCommand,
		endpointsCommand,
		serveCommand,
		versionCommand,
	}
	sort.Sort(cli.CommandsByName(app.Commands))

	app.Before = setup
	app.After = func(ctx *cli.Context) error {
		if logger != nil {
			_ = logger.Sync()
		}
		return nil
	}
}

// setup loads the environment and the logger shared by every command.
func setup(ctx *cli.Context) error {
	env, err := config.Load(ctx.GlobalString(envFileFlag.Name))
	if err != nil {
		return err
	}

	logger, err = config.NewLogger(env.Mode)
	if err != nil {
		return err
	}
	sugar := logger.Sugar()

	cfg = &config.Config{
		Logger:      sugar,
		Environment: env,
	}
	sugar.Debugf("Version: %s Timestamp: %s", version, timestamp)
	sugar.Debug(env)
	return nil
}

func main() {
	if err := app.Run(os.Args); err != nil {
		if cfg != nil {
			cfg.Logger.Errorf("%+v", err)
			_ = logger.Sync()
		} else {
			log.Printf("Error: %v", err)
		}
		os.Exit(1)
	}
}
