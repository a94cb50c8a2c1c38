package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mural/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigPathCommand(ctx))

	return configCmd
}

func (c *commandContext) configPathFlag() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set api_key (or export STEAM_API_KEY) for Web API fetching; without it mural scrapes the community browse pages.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Short:       "Show the resolved configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configPathFlag())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out)

			fmt.Fprintln(out, renderSectionHeader("Paths"))
			fmt.Fprintf(out, "  steamcmd:         %s\n", orUnset(cfg.Paths.Steamcmd))
			fmt.Fprintf(out, "  wallpaper_engine: %s\n", orUnset(cfg.Paths.WallpaperEngine))
			fmt.Fprintf(out, "  workshop_root:    %s\n", orUnset(cfg.Paths.WorkshopRoot))
			fmt.Fprintf(out, "  state_file:       %s\n", cfg.Paths.StateFile)
			fmt.Fprintf(out, "  activation_log:   %s\n", cfg.Paths.ActivationLog)
			fmt.Fprintf(out, "  log_dir:          %s\n", cfg.Paths.LogDir)
			fmt.Fprintln(out)

			fmt.Fprintln(out, renderSectionHeader("Filters"))
			fmt.Fprintf(out, "  show_only:   %s\n", orUnset(cfg.Filters.ShowOnly))
			fmt.Fprintf(out, "  tags:        %s\n", orUnset(cfg.Filters.Tags))
			fmt.Fprintf(out, "  types:       %s\n", orUnset(cfg.Filters.Types))
			fmt.Fprintf(out, "  age:         %s\n", orUnset(cfg.Filters.Age))
			fmt.Fprintf(out, "  resolution:  %s\n", orUnset(cfg.Filters.Resolution))
			fmt.Fprintf(out, "  exclude:     %s\n", orUnset(cfg.Filters.Exclude))
			fmt.Fprintln(out)

			fmt.Fprintln(out, renderSectionHeader("Rotation"))
			fmt.Fprintf(out, "  sort:               %s\n", cfg.Sort.Method)
			fmt.Fprintf(out, "  one_per_run:        %s\n", yesNo(cfg.Rotation.OnePerRun))
			fmt.Fprintf(out, "  rotate_if_all_done: %s\n", yesNo(cfg.Rotation.RotateIfAllDone))
			fmt.Fprintf(out, "  max_attempts:       %d\n", cfg.Rotation.MaxAttemptsPerRun)
			fmt.Fprintln(out)

			fmt.Fprintln(out, renderSectionHeader("Schedule"))
			fmt.Fprintf(out, "  run_on_startup:  %s\n", yesNo(cfg.Schedule.RunOnStartup))
			fmt.Fprintf(out, "  interval:        %s\n", cfg.Schedule.Interval)
			fmt.Fprintf(out, "  detect_interval: %s\n", cfg.Schedule.DetectInterval)
			fmt.Fprintln(out)

			fmt.Fprintln(out, renderSectionHeader("Cleanup"))
			fmt.Fprintf(out, "  delete_previous: %s\n", yesNo(cfg.Cleanup.DeletePrevious))
			fmt.Fprintf(out, "  keep_last_n:     %d\n", cfg.Cleanup.KeepLastN)
			fmt.Fprintf(out, "  use_recycle_bin: %s\n", yesNo(cfg.Cleanup.UseRecycleBin))

			return nil
		},
	}
}

func newConfigPathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the resolved configuration file path",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, _, err := config.Load(ctx.configPathFlag())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func orUnset(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(unset)"
	}
	return value
}
