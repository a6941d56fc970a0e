package main

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"gitlab.uncharted.software/WM/runsync-client/api/runpod"
	"gitlab.uncharted.software/WM/runsync-client/api/submit"
)

var (
	statusCommand = cli.Command{
		Action:    status,
		Name:      "status",
		Usage:     "Print the status of a job",
		ArgsUsage: "<job-id>",
		Flags:     []cli.Flag{endpointFlag},
	}
	cancelCommand = cli.Command{
		Action:    cancel,
		Name:      "cancel",
		Usage:     "Cancel a queued or running job",
		ArgsUsage: "<job-id>",
		Flags:     []cli.Flag{endpointFlag},
	}
	healthCommand = cli.Command{
		Action:    health,
		Name:      "health",
		Usage:     "Print the endpoint's job and worker counts",
		ArgsUsage: " ",
		Flags:     []cli.Flag{endpointFlag},
	}
	endpointsCommand = cli.Command{
		Action:    endpoints,
		Name:      "endpoints",
		Usage:     "List the account's serverless endpoints",
		ArgsUsage: " ",
	}
	versionCommand = cli.Command{
		Action:    printVersion,
		Name:      "version",
		Usage:     "Print version numbers",
		ArgsUsage: " ",
	}
)

func newClient(ctx *cli.Context) (*runpod.Client, error) {
	if cfg.Environment.APIKey == "" {
		return nil, submit.ErrMissingAPIKey
	}
	return runpod.NewClient(cfg, ctx.String(endpointFlag.Name)), nil
}

func jobIDArg(ctx *cli.Context) (string, error) {
	if ctx.NArg() != 1 {
		return "", cli.NewExitError("Usage: runsync-client "+ctx.Command.Name+" <job-id>", 1)
	}
	return ctx.Args().First(), nil
}

func status(ctx *cli.Context) error {
	jobID, err := jobIDArg(ctx)
	if err != nil {
		return err
	}
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	runCtx, stop := signalContext()
	defer stop()

	resp, err := client.Status(runCtx, jobID)
	if err != nil {
		return err
	}
	return submit.PrintResponse(os.Stdout, resp)
}

func cancel(ctx *cli.Context) error {
	jobID, err := jobIDArg(ctx)
	if err != nil {
		return err
	}
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	runCtx, stop := signalContext()
	defer stop()

	resp, err := client.Cancel(runCtx, jobID)
	if err != nil {
		return err
	}
	cfg.Logger.Infof("Job %s is %s", jobID, resp.Status)
	return submit.PrintResponse(os.Stdout, resp)
}

func health(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	runCtx, stop := signalContext()
	defer stop()

	h, err := client.Health(runCtx)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Endpoint", "Completed", "Failed", "In Progress", "In Queue", "Retried", "Idle Workers", "Running Workers"})
	table.Append([]string{
		client.EndpointID(),
		strconv.Itoa(h.Jobs.Completed),
		strconv.Itoa(h.Jobs.Failed),
		strconv.Itoa(h.Jobs.InProgress),
		strconv.Itoa(h.Jobs.InQueue),
		strconv.Itoa(h.Jobs.Retried),
		strconv.Itoa(h.Workers.Idle),
		strconv.Itoa(h.Workers.Running),
	})
	table.Render()
	return nil
}

func endpoints(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	runCtx, stop := signalContext()
	defer stop()

	list, err := client.Endpoints(runCtx)
	if err != nil {
		return err
	}
	if runpod.FindEndpoint(list, cfg.Environment.EndpointID) == nil {
		cfg.Logger.Warnf("Configured endpoint %s is not owned by this account", cfg.Environment.EndpointID)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "GPUs", "Min Workers", "Max Workers", "Idle Timeout"})
	for _, e := range list {
		table.Append([]string{
			e.ID,
			e.Name,
			e.GpuIDs,
			strconv.Itoa(e.WorkersMin),
			strconv.Itoa(e.WorkersMax),
			strconv.Itoa(e.IdleTimeout) + "s",
		})
	}
	table.Render()
	return nil
}

func printVersion(ctx *cli.Context) error {
	fmt.Println("Version:", version)
	fmt.Println("Timestamp:", timestamp)
	fmt.Println("Go Version:", runtime.Version())
	fmt.Println("Operating System:", runtime.GOOS)
	return nil
}
