package configs

import (
	"flag"
	"os"

	"github.com/devmeet/devmeet/internal/infrastructure/env"
)

// DetermineConfigPath resolves the config file from the --config flag, the
// DEVMEET_CONFIG env var, or a list of conventional locations. An empty
// result means "defaults only", which is a supported mode.
func DetermineConfigPath() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = env.GetString("DEVMEET_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"/etc/devmeet/config.yaml",
			"/app/config.yaml", // common in Docker
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	return configPath
}
