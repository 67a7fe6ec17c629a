package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/copytrader-io/copybot/cli/render"
	"github.com/copytrader-io/copybot/cli/tui"
	"github.com/copytrader-io/copybot/cloud"
	"github.com/copytrader-io/copybot/iox"
	"github.com/copytrader-io/copybot/manifest"
)

// RunRow is one listed run.
type RunRow struct {
	Service   string  `json:"service"`
	RunID     string  `json:"run_id"`
	StartedAt string  `json:"started_at"`
	DurationS float64 `json:"duration_s"`
	Artifacts int     `json:"artifacts"`
	GitSHA    string  `json:"git_sha"`
}

// RunsCommand returns the runs command: list stored runs across services.
func RunsCommand() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "List stored runs and their manifests",
		Flags: append(ReadOnlyFlags(),
			&cli.StringFlag{
				Name:  "service",
				Usage: "Only list runs from this service",
			},
		),
		Action: runsAction,
	}
}

func runsAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	services, _, err := buildServices(c)
	if err != nil {
		return err
	}
	defer iox.DiscardClose(services)

	lister, ok := services.Objects.(cloud.Lister)
	if !ok {
		return cli.Exit("the configured object store backend does not support listing", exitConfigError)
	}

	serviceFilter := c.String("service")
	prefix := ""
	if serviceFilter != "" {
		prefix = serviceFilter + "/"
	}

	keys, err := lister.List(c.Context, prefix)
	if err != nil {
		return cli.Exit(fmt.Sprintf("list runs: %v", err), exitRunError)
	}

	entries := collectRuns(c, services.Objects, keys)
	if c.Bool("tui") {
		if err := tui.RunBrowser(entries); err != nil {
			return cli.Exit(fmt.Sprintf("runs browser: %v", err), exitRunError)
		}
		return nil
	}

	rows := make([]RunRow, 0, len(entries))
	for _, e := range entries {
		row := RunRow{Service: e.Service, RunID: e.RunID}
		if e.Manifest != nil {
			row.StartedAt = time.Unix(int64(e.Manifest.StartedAt), 0).UTC().Format(time.RFC3339)
			row.DurationS = e.Manifest.DurationS
			row.Artifacts = len(e.Manifest.Artifacts)
			row.GitSHA = e.Manifest.GitSHA
		}
		rows = append(rows, row)
	}
	return r.Render(rows)
}

// collectRuns turns manifest keys into run entries, loading each manifest.
// Keys that are not <service>/<run_id>/manifest.json are skipped; runs whose
// manifest fails to load or parse still appear, without manifest detail.
func collectRuns(c *cli.Context, store cloud.ObjectStore, keys []string) []tui.RunEntry {
	entries := make([]tui.RunEntry, 0)
	for _, key := range keys {
		parts := strings.Split(key, "/")
		if len(parts) != 3 || parts[2] != manifest.Filename {
			continue
		}
		entry := tui.RunEntry{Service: parts[0], RunID: parts[1]}
		if data, err := store.Get(c.Context, key); err == nil {
			if mf, err := manifest.Parse(data); err == nil {
				entry.Manifest = mf
			}
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Service != entries[j].Service {
			return entries[i].Service < entries[j].Service
		}
		return entries[i].RunID < entries[j].RunID
	})
	return entries
}
