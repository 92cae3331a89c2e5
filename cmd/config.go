package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/atmscope/internal/config"
	"github.com/KaramelBytes/atmscope/internal/geo"
	"github.com/KaramelBytes/atmscope/internal/logger"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set atmscope configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "db_driver: %s\n", cfg.DBDriver)
		fmt.Fprintf(out, "dsn: %s\n", logger.RedactDSN(cfg.DSN))
		fmt.Fprintf(out, "projection: %s\n", cfg.Projection)
		fmt.Fprintf(out, "output_dir: %s\n", cfg.OutputDir)
		fmt.Fprintf(out, "batch_size: %d\n", cfg.BatchSize)
		fmt.Fprintf(out, "zip_top_n: %d\n", cfg.ZipTopN)
		fmt.Fprintf(out, "crosstab_rows: %d\n", cfg.CrosstabRows)
		fmt.Fprintf(out, "heat_radius: %d\n", cfg.HeatRadius)
		fmt.Fprintf(out, "heat_blur: %d\n", cfg.HeatBlur)
		fmt.Fprintf(out, "log_mode: %s\n", cfg.LogMode)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long:  "Set a config value and save to disk. Keys: " + strings.Join(cfgpkg.Keys, ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "db_driver":
			switch strings.ToLower(val) {
			case "sqlite", "sqlite3":
				cfg.DBDriver = "sqlite"
			case "postgres", "postgresql", "pg":
				cfg.DBDriver = "postgres"
			default:
				return fmt.Errorf("invalid db_driver: %s (use sqlite or postgres)", val)
			}
		case "dsn":
			cfg.DSN = val
		case "projection":
			p, err := geo.ParseProjection(val)
			if err != nil {
				return err
			}
			cfg.Projection = p.Name()
		case "output_dir":
			cfg.OutputDir = val
		case "log_mode":
			switch val {
			case "dev", "prod":
				cfg.LogMode = val
			default:
				return fmt.Errorf("invalid log_mode: %s (use dev or prod)", val)
			}
		case "batch_size", "zip_top_n", "crosstab_rows", "heat_radius", "heat_blur":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid positive int for %s: %v", key, val)
			}
			setInt(key, i)
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func setInt(key string, i int) {
	switch key {
	case "batch_size":
		cfg.BatchSize = i
	case "zip_top_n":
		cfg.ZipTopN = i
	case "crosstab_rows":
		cfg.CrosstabRows = i
	case "heat_radius":
		cfg.HeatRadius = i
	case "heat_blur":
		cfg.HeatBlur = i
	}
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
