package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/copytrader-io/copybot/cli/render"
	"github.com/copytrader-io/copybot/types"
)

// VersionResponse is the response for the version command.
// All components share a single version (lockstep versioning).
type VersionResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// VersionCommand returns the version command. It never touches the
// configured backends.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Flags:  ReadOnlyFlags(),
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.Bool("tui") {
			return cli.Exit("--tui is only supported by the runs command", exitConfigError)
		}

		r, err := render.NewRenderer(c)
		if err != nil {
			return cli.Exit(err.Error(), exitConfigError)
		}

		return r.Render(VersionResponse{
			Version: types.Version,
			Commit:  commit,
		})
	}
}
