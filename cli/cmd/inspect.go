package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/copytrader-io/copybot/cli/render"
	"github.com/copytrader-io/copybot/cloud"
	"github.com/copytrader-io/copybot/iox"
	"github.com/copytrader-io/copybot/manifest"
	"github.com/copytrader-io/copybot/simulation"
	"github.com/copytrader-io/copybot/types"
)

// InspectResult is the inspect command's output: the run manifest plus the
// replay summary when the run produced one.
type InspectResult struct {
	Manifest *manifest.RunManifest `json:"manifest"`
	Summary  *simulation.Summary   `json:"summary,omitempty"`
}

// InspectCommand returns the inspect command: fetch and display a run's
// manifest and, for simulation runs, its replay summary.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Show the stored manifest for a run",
		Flags: append(ReadOnlyFlags(),
			&cli.StringFlag{
				Name:     "service",
				Usage:    "Service that produced the run (recorder, simulation)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "run-id",
				Usage:    "Run ID to inspect",
				Required: true,
			},
		),
		Action: inspectAction,
	}
}

func inspectAction(c *cli.Context) error {
	if c.Bool("tui") {
		return cli.Exit("--tui is only supported by the runs command", exitConfigError)
	}

	service := c.String("service")
	runID := c.String("run-id")
	if !types.ValidRunID(runID) {
		return cli.Exit(fmt.Sprintf("invalid run-id %q: want <name>-<unix_timestamp>", runID), exitConfigError)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	services, _, err := buildServices(c)
	if err != nil {
		return err
	}
	defer iox.DiscardClose(services)

	key := manifest.CanonicalArtifactKey(service, runID, manifest.Filename)
	data, err := services.Objects.Get(c.Context, key)
	if err != nil {
		if errors.Is(err, cloud.ErrNotFound) {
			return cli.Exit(fmt.Sprintf("no manifest stored for %s run %s", service, runID), exitRunError)
		}
		return cli.Exit(fmt.Sprintf("fetch manifest: %v", err), exitRunError)
	}

	mf, err := manifest.Parse(data)
	if err != nil {
		return cli.Exit(fmt.Sprintf("parse manifest for %s run %s: %v", service, runID, err), exitRunError)
	}

	result := InspectResult{Manifest: mf}
	if service == simulation.ServiceName {
		result.Summary = fetchSummary(c, services.Objects, runID)
	}

	return r.Render(result)
}

// fetchSummary loads the replay summary beside a simulation manifest.
// A missing or unreadable summary is not an error; the manifest is still
// worth showing.
func fetchSummary(c *cli.Context, store cloud.ObjectStore, runID string) *simulation.Summary {
	key := manifest.CanonicalArtifactKey(simulation.ServiceName, runID, simulation.SummaryFilename)
	data, err := store.Get(c.Context, key)
	if err != nil {
		return nil
	}
	var summary simulation.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil
	}
	return &summary
}
