package cmd

import (
	"os"

	"github.com/gnzdotmx/pequebum/internal/config"
	"github.com/gnzdotmx/pequebum/internal/utils"
	"github.com/spf13/cobra"
)

var (
	// verbosityLevel is the command-line flag for setting the log level
	verbosityLevel string
	// configPath points at the YAML settings file
	configPath string
	// strictExit makes a FAILED run exit with status 1
	strictExit bool
)

var rootCmd = &cobra.Command{
	Use:   "pequebum",
	Short: "Produce and publish one kids fun-fact video",
	Long: `PequeBum asks Gemini for a short fun fact for kids, renders it over a
flat color or a random clip with music, and uploads it to YouTube as
made for kids. Running it without a subcommand produces one video.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := verbosityLevel
		if !cmd.Flags().Changed("log-level") {
			if env := os.Getenv("PEQUEBUM_LOG_LEVEL"); env != "" {
				level = env
			}
		}
		utils.SetLogLevel(utils.LogLevelFromString(level))
	},
	RunE: runPipeline,
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads --config, or pequebum.yaml when the flag was not given
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultFile
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&verbosityLevel, "log-level", "l", "normal",
		"Set the logging verbosity level: quiet, normal, verbose, debug")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to the YAML config file (default "+config.DefaultFile+" when present)")
	rootCmd.PersistentFlags().BoolVar(&strictExit, "strict-exit", false,
		"Exit with status 1 when the run fails")
}
