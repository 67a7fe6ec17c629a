package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/copytrader-io/copybot/cli/render"
	"github.com/copytrader-io/copybot/iox"
	"github.com/copytrader-io/copybot/log"
	"github.com/copytrader-io/copybot/manifest"
	"github.com/copytrader-io/copybot/metrics"
	"github.com/copytrader-io/copybot/recorder"
	"github.com/copytrader-io/copybot/simulation"
	"github.com/copytrader-io/copybot/types"
)

// ReplayCommand returns the replay command: run the simulation service over
// a recorded event stream.
func ReplayCommand() *cli.Command {
	return &cli.Command{
		Name:  "replay",
		Usage: "Replay a recorded event stream and store a summary",
		Flags: []cli.Flag{
			ConfigFlag,
			FormatFlag,
			&cli.StringFlag{
				Name:  "run-id",
				Usage: "Run ID (default: replay-<unix_timestamp>)",
			},
			&cli.StringFlag{
				Name:  "from-run",
				Usage: "Recorder run ID whose events.jsonl to replay",
			},
			&cli.StringFlag{
				Name:  "from-key",
				Usage: "Object-store key of the events.jsonl to replay",
			},
			&cli.StringFlag{
				Name:  "from-file",
				Usage: "Local events.jsonl path to replay",
			},
		},
		Action: replayAction,
	}
}

func replayAction(c *cli.Context) error {
	runID := c.String("run-id")
	if runID == "" {
		runID = types.NewReplayRunID()
	}
	if !types.ValidRunID(runID) {
		return cli.Exit(fmt.Sprintf("invalid run-id %q: want <name>-<unix_timestamp>", runID), exitConfigError)
	}

	sourceKey, sourceFile, err := replaySource(c)
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
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

	logger := log.NewLogger(simulation.ServiceName, runID)
	collector := metrics.NewCollector(
		simulation.ServiceName, runID, settings.Objects.Backend, settings.Events.Backend)

	svc, err := simulation.New(simulation.Config{
		RunID:      runID,
		SourceKey:  sourceKey,
		SourceFile: sourceFile,
		Cloud:      services,
		Logger:     logger,
		Metrics:    collector,
	})
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	result, err := svc.Run(c.Context)
	if err != nil {
		return cli.Exit(fmt.Sprintf("replay run %s failed: %v", runID, err), exitRunError)
	}

	return r.Render(result)
}

// replaySource resolves the source flags to exactly one stream location.
func replaySource(c *cli.Context) (sourceKey, sourceFile string, err error) {
	fromRun := c.String("from-run")
	fromKey := c.String("from-key")
	fromFile := c.String("from-file")

	set := 0
	for _, v := range []string{fromRun, fromKey, fromFile} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return "", "", fmt.Errorf("exactly one of --from-run, --from-key, --from-file is required")
	}

	switch {
	case fromRun != "":
		if !types.ValidRunID(fromRun) {
			return "", "", fmt.Errorf("invalid --from-run %q: want <name>-<unix_timestamp>", fromRun)
		}
		return manifest.CanonicalArtifactKey(recorder.ServiceName, fromRun, recorder.EventsFilename), "", nil
	case fromKey != "":
		return fromKey, "", nil
	default:
		return "", fromFile, nil
	}
}
