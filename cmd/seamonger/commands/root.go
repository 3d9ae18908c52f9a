package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/seamonger/procurement/internal/config"
	"github.com/seamonger/procurement/internal/printer"
)

// configEnv names the environment variable holding a config file path.
const configEnv = "SEAMONGER_CONFIG"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "seamonger",
	Short: "Seamonger - supplier procurement for a seafood shop",
	Long: `Seamonger watches the shop for unfulfilled orders, asks the best-matching
supplier for stock over WhatsApp, mirrors every exchange to the founder and
learns supplier trust from their replies.

Configuration comes from a JSON or YAML file (--config, $SEAMONGER_CONFIG, or
config.json / config.yaml next to the binary or in the working directory)
with environment variable overrides.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute runs the root command.
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version string reported by --version.
func SetVersionInfo(v, c, d string) {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a JSON or YAML config file")
}

// resolveConfigPath picks the config file: --config flag, then $SEAMONGER_CONFIG,
// then auto-discovery. An empty result means environment-only configuration.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if p := os.Getenv(configEnv); p != "" {
		return p
	}
	return discoverConfig()
}

var configNames = []string{"config.json", "config.yaml", "config.yml"}

// discoverConfig looks for a config file next to the executable, then in the cwd.
func discoverConfig() string {
	var dirs []string
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	dirs = append(dirs, ".")

	for _, dir := range dirs {
		for _, name := range configNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}

func loadConfig() (*config.Config, error) {
	path := resolveConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		where := path
		if where == "" {
			where = "environment only"
		}
		return nil, printer.Error("Failed to load configuration", err.Error(),
			"config source: "+where,
			"pass --config <path> or set "+configEnv)
	}
	return cfg, nil
}
