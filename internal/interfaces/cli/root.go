// Package cli implements the orphamine command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/turtacn/OrphaMine/internal/config"
	"github.com/turtacn/OrphaMine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OrphaMine/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/OrphaMine/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	NoColor      bool
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	Collector    prometheus.MetricsCollector
	Metrics      *prometheus.PipelineMetrics
	RunID        string
	OutputFormat string
	Verbose      bool

	closers []func()
}

// onClose registers fn to run when the command finishes, in reverse order.
func (c *CLIContext) onClose(fn func()) {
	c.closers = append(c.closers, fn)
}

// Close releases everything the command opened and writes the metrics
// textfile when one is configured.
func (c *CLIContext) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
	if path := c.Config.Metrics.TextfilePath; path != "" && c.Collector != nil {
		if err := c.Collector.WriteTextfile(path); err != nil {
			c.Logger.Warn("metrics textfile write failed", logging.String("path", path), logging.Err(err))
		}
	}
	_ = c.Logger.Sync()
}

// session keeps the CLIContext built by the pre-run hook so Execute can
// release it after the command returns, whether or not it failed.
type session struct {
	cli *CLIContext
}

// NewRootCommand creates the root command with all global flags and
// subcommands.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&session{})
}

func newRootCommand(s *session) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "orphamine",
		Short: "OrphaMine: candidate compounds for rare diseases by embedding similarity",
		Long: "OrphaMine builds a compound dataset from ChEMBL, embeds compounds and\n" +
			"disease names, ranks compounds per disease by cosine similarity and\n" +
			"enriches each match with a PubMed article count.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := persistentPreRun(cmd, opts)
			if err != nil {
				return err
			}
			s.cli = cliCtx
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./orphamine.yaml when present)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides log.level")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "table", "output format (table, json, text)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return errors.Wrap(err, errors.ErrCodeConfiguration, "invalid flags")
	})

	cmd.AddCommand(
		newFetchCmd(),
		newEmbedCmd(),
		newRankCmd(),
		newMatchesCmd(),
		newVersionCmd(),
	)
	return cmd
}

// persistentPreRun loads configuration, builds the logger and metrics, and
// stores the CLIContext on the command.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) (*CLIContext, error) {
	switch strings.ToLower(opts.OutputFormat) {
	case "table", "json", "text":
	default:
		return nil, errors.Newf(errors.ErrCodeConfiguration, "unknown output format %q", opts.OutputFormat)
	}
	if opts.NoColor {
		color.NoColor = true
	}

	cfg, err := initConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, err := initLogger(cfg, opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfiguration, "logger initialization failed")
	}

	runID := uuid.New().String()
	logger = logger.With(logging.String(logging.KeyRunID, runID), logging.String("command", cmd.Name()))
	logging.SetDefault(logger)

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:       cfg.Metrics.Namespace,
		EnableGoMetrics: cfg.Metrics.ListenAddr != "",
	}, logger)
	if err != nil {
		return nil, err
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		Collector:    collector,
		Metrics:      prometheus.NewPipelineMetrics(collector),
		RunID:        runID,
		OutputFormat: strings.ToLower(opts.OutputFormat),
		Verbose:      opts.Verbose,
	}
	if cfg.Metrics.ListenAddr != "" {
		startMetricsServer(cliCtx)
	}

	ctx := logging.ContextWithRunID(cmd.Context(), runID)
	ctx = context.WithValue(ctx, cliContextKey{}, cliCtx)
	cmd.SetContext(ctx)
	return cliCtx, nil
}

// initConfig loads configuration with priority: env > file > defaults.  The
// default file is used only when it exists.
func initConfig(opts *RootOptions) (*config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		for _, candidate := range []string{"./orphamine.yaml", "./configs/orphamine.yaml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	return config.Load(path)
}

// initLogger creates the logger; flags override the configured level.
func initLogger(cfg *config.Config, opts *RootOptions) (logging.Logger, error) {
	logCfg := cfg.Log
	if opts.LogLevel != "" {
		if _, ok := logging.ParseLevel(opts.LogLevel); !ok {
			return nil, errors.Newf(errors.ErrCodeConfiguration, "invalid log level %q", opts.LogLevel)
		}
		logCfg.Level = opts.LogLevel
	}
	if opts.Verbose {
		logCfg.Level = "debug"
	}
	return logging.NewLogger(logCfg)
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Internal("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// Execute runs the command tree under ctx and releases its resources.  The
// returned error carries the code the process exit status is derived from.
func Execute(ctx context.Context, args []string) error {
	s := &session{}
	rootCmd := newRootCommand(s)
	if args != nil {
		rootCmd.SetArgs(args)
	}

	err := rootCmd.ExecuteContext(ctx)
	s.cli.Close()
	if err != nil {
		PrintError(rootCmd, err)
	}
	return err
}

//Personal.AI order the ending
