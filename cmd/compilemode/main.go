package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/recera/compilemode/pkg/compiler"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

// logger is the command's logger; the compiler shares it.
var logger = zap.NewNop()

func main() {
	var verbose bool

	var rootCmd = &cobra.Command{
		Use:   "compilemode",
		Short: "Compile JSX render trees into mini-program templates",
		Long: `compilemode compiles JSX roots marked with the compileMode attribute into
static templates for mini-program platforms, together with the glue the runtime
needs to bind their dynamic nodes.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(verbose)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every rewrite and cache decision")

	// Add commands
	rootCmd.AddCommand(newCompileCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newServeCommand())

	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogger(verbose bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if verbose {
		l, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		cfg.Encoding = "console"
		l, err = cfg.Build()
	}
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	logger = l
	compiler.SetLogger(l)
	return nil
}
