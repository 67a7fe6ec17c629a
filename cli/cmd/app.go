package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/copytrader-io/copybot/types"
)

// NewApp builds the copybot CLI application. commit identifies the build
// and is injected by the linker at release time.
func NewApp(commit string) *cli.App {
	return &cli.App{
		Name:    "copybot",
		Usage:   "Polymarket copy-trading toolkit - record market events, replay them, inspect runs",
		Version: types.Version,
		Commands: []*cli.Command{
			RecordCommand(),
			ReplayCommand(),
			InspectCommand(),
			RunsCommand(),
			VersionCommand(commit),
		},
		ExitErrHandler: ExitErrHandler,
	}
}

// ExitErrHandler handles errors from the CLI, respecting cli.ExitCoder.
func ExitErrHandler(c *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() returns "exit status N"; skip those
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(exitRunError)
}
