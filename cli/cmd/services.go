package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/copytrader-io/copybot/cli/config"
	"github.com/copytrader-io/copybot/cloud"
	"github.com/copytrader-io/copybot/cloud/factory"
)

// resolveSettings loads and validates configuration before any work happens.
// Validation failures exit with a non-zero status and the validation message.
func resolveSettings(c *cli.Context) (*config.Settings, error) {
	settings, err := config.Resolve(c.String("config"))
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("configuration error: %v", err), exitConfigError)
	}
	return settings, nil
}

// buildServices resolves settings and constructs the cloud service
// container. The caller owns Close.
func buildServices(c *cli.Context) (*cloud.Services, *config.Settings, error) {
	settings, err := resolveSettings(c)
	if err != nil {
		return nil, nil, err
	}

	services, err := factory.New(c.Context, settings.FactoryConfig())
	if err != nil {
		return nil, nil, cli.Exit(fmt.Sprintf("configuration error: %v", err), exitConfigError)
	}
	return services, settings, nil
}
