package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/trail/config"
)

const version = "0.1.0"

var (
	log      = commonlog.GetLogger("trail.cli")
	errorFmt = color.New(color.FgRed, color.Bold).SprintfFunc()
)

// globalOptions are the persistent flags shared by every command, plus
// the configuration they select.
type globalOptions struct {
	configPath string
	verbose    int
	logFile    string
	noColor    bool

	config *config.Config
}

// setup loads the configuration and applies its logging and color
// settings. Flags override the file.
func (o *globalOptions) setup() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	o.config = cfg

	logFile := cfg.LogFile
	if o.logFile != "" {
		logFile = o.logFile
	}
	var path *string
	if logFile != "" {
		path = &logFile
	}
	commonlog.Configure(cfg.Verbosity()+o.verbose, path)

	if o.noColor || !cfg.ColorEnabled(!color.NoColor) {
		color.NoColor = true
	}

	log.Debugf("configuration loaded from %s", o.configPath)
	return nil
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "trail",
		Short:         "Query JSON and YAML documents",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath, "configuration file")
	flags.CountVarP(&opts.verbose, "verbose", "v", "increase log verbosity (repeatable)")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newEvalCmd(opts))
	rootCmd.AddCommand(newSuggestCmd(opts))
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newTokensCmd())
	rootCmd.AddCommand(newFmtCmd())
	rootCmd.AddCommand(newREPLCmd(opts))
	rootCmd.AddCommand(newLSPCmd(opts))

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorFmt("error: %v", err))
		os.Exit(1)
	}
}
