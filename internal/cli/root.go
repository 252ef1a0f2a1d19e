// Package cli implements composectl, the command-line front end for
// composition manifests.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mesh-intelligence/compose/internal/paths"
	"github.com/mesh-intelligence/compose/pkg/compose"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool
}

// app is the state shared by one command tree: flags, the loaded
// configuration, and the logger built from both.
type app struct {
	flags     rootFlags
	configDir string
	cfg       *viper.Viper
	logger    *zap.Logger
}

// exitError carries the process exit code for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// sysError marks err as an environment failure rather than a user mistake.
func sysError(err error) error {
	return &exitError{code: exitSysError, err: err}
}

// newRootCmd creates the top-level "composectl" command with global flags
// and all subcommands registered, along with the app state they share.
func newRootCmd() (*cobra.Command, *app) {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "composectl",
		Short: "Compose types from YAML manifests and inspect how they resolve",
		Long: `composectl builds composite types from a composition manifest, reports
which source won every key, and calls methods on fresh instances.`,
		Version: compose.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory holding the run journal (default: platform data dir)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(a.newVersionCmd())
	root.AddCommand(a.newInitCmd())
	root.AddCommand(a.newDescribeCmd())
	root.AddCommand(a.newCallCmd())
	root.AddCommand(a.newHistoryCmd())

	return root, a
}

// setup resolves the config directory, loads config.yaml, and builds the
// logger. The composition engine logs through the same logger.
func (a *app) setup() error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}
	a.configDir = configDir
	a.cfg = cfg

	logger, err := buildLogger(cfg.GetString(cfgKeyLogLevel), a.flags.verbose)
	if err != nil {
		return err
	}
	a.logger = logger
	compose.SetLogger(logger.Named("compose"))
	return nil
}

// close flushes the logger and detaches it from the composition engine.
// It runs whether or not the command succeeded.
func (a *app) close() {
	_ = a.logger.Sync()
	compose.SetLogger(nil)
	a.logger = zap.NewNop()
}

// buildLogger returns a production zap logger at level, or at debug when
// verbose is set.
func buildLogger(level string, verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", cfgKeyLogLevel, level, err)
		}
		config.Level = lvl
	}
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// dataDir returns the data directory from flag, config.yaml, env, or
// default.
func (a *app) dataDir() (string, error) {
	var fromConfig string
	if a.cfg != nil {
		fromConfig = a.cfg.GetString(cfgKeyDataDir)
	}
	return paths.ResolveDataDir(a.flags.dataDir, fromConfig)
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root, a := newRootCmd()
	os.Exit(run(root, a, os.Args[1:], os.Stderr))
}

// run executes root with args and maps its error to an exit code.
func run(root *cobra.Command, a *app, args []string, stderr io.Writer) int {
	defer a.close()
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "Error:", err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}
