package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"skillalign/internal/config"
	"skillalign/internal/logging"
)

var (
	cfgPath      string
	logLevel     string
	outputFormat string

	globalConfig *config.AppConfig
	globalLogger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "skillalign",
	Short: "Extract skills from text and align them to reference taxonomies",
	Long: `skillalign finds skill phrases in job postings, course descriptions and
other free text, then maps each one onto the closest unclaimed entry of a
reference taxonomy (OSN, LIGHTCAST, ...) by embedding cosine similarity.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}
		var (
			cfg  *config.AppConfig
			path string
			err  error
		)
		if cfgPath == "" {
			cfg, path, err = config.LoadDefault()
		} else {
			cfg, err = config.Load(cfgPath)
			path = cfgPath
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		logger, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}
		if err := checkFormat(outputFormat); err != nil {
			return err
		}
		globalConfig = cfg
		globalLogger = logger
		logger.WithField("config", path).Debug("configuration loaded")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file (default ./config.yaml, then ~/.config/skillalign/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "json", "Output format: json or yaml")
}
