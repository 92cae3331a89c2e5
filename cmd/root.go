package cmd

import (
	"fmt"
	"io"
	"os"

	cfgpkg "github.com/KaramelBytes/atmscope/internal/config"
	"github.com/KaramelBytes/atmscope/internal/geo"
	"github.com/KaramelBytes/atmscope/internal/logger"
	"github.com/KaramelBytes/atmscope/internal/store"
	"github.com/KaramelBytes/atmscope/internal/utils"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
	// Connection and projection flags (override config if set)
	flagDBDriver   string
	flagDSN        string
	flagProjection string

	// Loaded configuration
	cfg *cfgpkg.Global
)

// log is replaced by the configured logger once the command starts.
var log = logger.Nop()

var rootCmd = &cobra.Command{
	Use:   "atmscope",
	Short: "atmscope: ATM density and distance analysis",
	Long: `atmscope loads ATM location records into a database, converts their planar
coordinates to latitude/longitude, and reports ATM density by ward and ZIP code
with interactive maps. It can also map every ATM of one operator and report the
distances between them.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	os.Exit(run(os.Stderr))
}

// run executes the root command and returns the process exit code. The
// logger is flushed on every path.
func run(stderr io.Writer) int {
	defer func() { log.Sync() }()
	if err := rootCmd.Execute(); err != nil {
		log.Error("command failed", "error", err)
		fmt.Fprintln(stderr, "✗ Error:", err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentPreRunE = loadConfig
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.atmscope/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagDBDriver, "db-driver", "", "database driver: sqlite or postgres (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDSN, "dsn", "", "database DSN or sqlite file path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagProjection, "projection", "", "source projection of X/Y, e.g. EPSG:2893 (overrides config)")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = c

	f := cmd.Root().PersistentFlags()
	if f.Changed("db-driver") && flagDBDriver != "" {
		cfg.DBDriver = flagDBDriver
	}
	if f.Changed("dsn") && flagDSN != "" {
		cfg.DSN = flagDSN
	}
	if f.Changed("projection") && flagProjection != "" {
		cfg.Projection = flagProjection
	}

	l, err := logger.New(cfg.LogMode, debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log = l.With("run_id", uuid.NewString())
	return nil
}

// openSession connects to the configured store. Callers must Close it.
func openSession() (*store.Session, error) {
	dsn, err := utils.ExpandHome(cfg.DSN)
	if err != nil {
		return nil, err
	}
	return store.Open(store.Options{
		Driver:    cfg.DBDriver,
		DSN:       dsn,
		BatchSize: cfg.BatchSize,
		Debug:     debug,
	}, log)
}

// notLoaded reports, and tells the user, when load has never created the
// ATM table.
func notLoaded(cmd *cobra.Command, sess *store.Session) bool {
	if sess.Exists(cmd.Context()) {
		return false
	}
	fmt.Fprintln(cmd.OutOrStdout(), "(no ATMs loaded)")
	return true
}

func newConverter() (*geo.Converter, error) {
	proj, err := geo.ParseProjection(cfg.Projection)
	if err != nil {
		return nil, err
	}
	return geo.NewConverter(proj, log), nil
}

func outputPath(dir, name string) (string, error) {
	if dir == "" {
		dir = cfg.OutputDir
	}
	return utils.ArtifactPath(dir, name)
}
