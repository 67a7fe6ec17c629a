package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/copytrader-io/copybot/cli/render"
	"github.com/copytrader-io/copybot/iox"
	"github.com/copytrader-io/copybot/log"
	"github.com/copytrader-io/copybot/metrics"
	"github.com/copytrader-io/copybot/recorder"
	"github.com/copytrader-io/copybot/types"
)

// RecordCommand returns the record command: run the recorder service.
func RecordCommand() *cli.Command {
	return &cli.Command{
		Name:  "record",
		Usage: "Poll market events and store the run's event stream",
		Flags: []cli.Flag{
			ConfigFlag,
			FormatFlag,
			&cli.StringFlag{
				Name:  "run-id",
				Usage: "Run ID (default: recorder-<unix_timestamp>)",
			},
			&cli.IntFlag{
				Name:  "max-events",
				Usage: "Stop after this many events",
				Value: 25,
			},
			&cli.DurationFlag{
				Name:  "max-duration",
				Usage: "Stop after this wall-clock budget (0 = no bound)",
			},
			&cli.DurationFlag{
				Name:  "poll-interval",
				Usage: "Stub poller event interval",
				Value: 2 * time.Second,
			},
			&cli.StringFlag{
				Name:  "market-id",
				Usage: "Market ID label for stub poller events",
			},
		},
		Action: recordAction,
	}
}

func recordAction(c *cli.Context) error {
	runID := c.String("run-id")
	if runID == "" {
		runID = types.NewRunID(recorder.ServiceName)
	}
	if !types.ValidRunID(runID) {
		return cli.Exit(fmt.Sprintf("invalid run-id %q: want <name>-<unix_timestamp>", runID), exitConfigError)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	services, settings, err := buildServices(c)
	if err != nil {
		return err
	}
	defer iox.DiscardClose(services)

	logger := log.NewLogger(recorder.ServiceName, runID)
	collector := metrics.NewCollector(
		recorder.ServiceName, runID, settings.Objects.Backend, settings.Events.Backend)

	svc, err := recorder.New(recorder.Config{
		RunID: runID,
		Poller: &recorder.StubPoller{
			Interval: c.Duration("poll-interval"),
			MarketID: c.String("market-id"),
		},
		MaxEvents:   c.Int("max-events"),
		MaxDuration: c.Duration("max-duration"),
		Cloud:       services,
		Logger:      logger,
		Metrics:     collector,
	})
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	result, err := svc.Run(c.Context)
	if err != nil {
		return cli.Exit(fmt.Sprintf("recorder run %s failed: %v", runID, err), exitRunError)
	}

	return r.Render(result)
}
