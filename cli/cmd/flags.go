// Package cmd provides CLI commands for the copybot binary.
package cmd

import "github.com/urfave/cli/v2"

// Exit codes shared by all commands.
const (
	exitSuccess     = 0
	exitRunError    = 1
	exitConfigError = 2
)

// Shared flags.
var (
	// ConfigFlag points at the YAML config file. When omitted,
	// ./copybot.yaml is used if present.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to copybot.yaml config file",
	}

	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// TUIFlag enables Bubble Tea interactive mode.
	// Only valid for the runs command.
	TUIFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Enable interactive TUI mode (runs only)",
	}
)

// ReadOnlyFlags returns the shared flags for read-only commands.
// Includes --tui so that unsupported commands can give explicit error
// messages instead of generic "flag not defined" errors.
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{
		ConfigFlag,
		FormatFlag,
		TUIFlag,
	}
}
