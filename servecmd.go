package main

import (
	"context"
	"net/http"
	"time"

	"github.com/urfave/cli"
	"gitlab.uncharted.software/WM/runsync-client/api"
	"gitlab.uncharted.software/WM/runsync-client/api/queue"
)

var (
	addrFlag = cli.StringFlag{
		Name:  "addr",
		Usage: "Listen address (default: RUNPOD_ADDR)",
	}

	serveCommand = cli.Command{
		Action:    serve,
		Name:      "serve",
		Usage:     "Run a receiver for the worker's webhook notifications",
		ArgsUsage: " ",
		Flags:     []cli.Flag{addrFlag},
		Description: `
Point --webhook-url at http://<host><addr>/webhook to collect the
notifications the worker sends when a job completes.`,
	}
)

func serve(ctx *cli.Context) error {
	env := cfg.Environment
	sugar := cfg.Logger

	// Setup the notification queue
	var notificationQueue queue.NotificationQueue
	if env.PersistedQueue {
		var err error
		notificationQueue, err = queue.NewPersistedFIFOQueue(env.NotificationQueueSize, env.QueueDir, env.QueueName)
		if err != nil {
			return err
		}
		sugar.Infof("Loaded queue with %d entries from %s%s", notificationQueue.Size(), env.QueueDir, env.QueueName)
	} else {
		// in-memory queue, data does not survive a restart
		notificationQueue = queue.NewListFIFOQueue(env.NotificationQueueSize)
	}
	defer func() {
		if err := notificationQueue.Close(); err != nil {
			sugar.Error(err)
		}
	}()

	r, err := api.NewRouter(*cfg, notificationQueue)
	if err != nil {
		return err
	}

	addr := stringOr(ctx, addrFlag, env.Addr)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	runCtx, stop := signalContext()
	defer stop()
	go func() {
		<-runCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	// Start listening
	sugar.Infof("Listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	sugar.Info("Receiver stopped")
	return nil
}
