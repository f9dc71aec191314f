package main

import (
	"fmt"
	"os"

	"github.com/akmonengine/tether/config"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	steps      int
	plot       bool
	outFile    string
	logFile    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "tether",
		Short:         "chain of rigid bodies dragged by a controllable head",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the scene headless with its scripted input",
		Args:  cobra.NoArgs,
		RunE:  runScene,
	}
	runCmd.Flags().IntVar(&steps, "steps", 0, "number of steps, overrides the config")
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot the head and tail trajectories")

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "drive the head from the keyboard (arrows, w/s, q to quit)",
		Args:  cobra.NoArgs,
		RunE:  playScene,
	}
	playCmd.Flags().StringVar(&logFile, "log", "", "write the event log to this file")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if outFile != "" {
				return config.Save(outFile, cfg)
			}
			return config.Encode(cmd.OutOrStdout(), cfg)
		},
	}
	configCmd.Flags().StringVar(&outFile, "out", "", "write to this file instead of stdout")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, playCmd, configCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the config file or preset, then applies TETHER_* overrides
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "" && preset != "":
		return nil, fmt.Errorf("--config and --preset are mutually exclusive")
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", configFile, err)
		}
		cfg = loaded
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q, available: %v", preset, config.ListPresets())
		}
	default:
		cfg = config.DefaultConfig()
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
