package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/thediveo/enumflag/v2"

	"github.com/uberpack/uberpack/internal/builder"
	"github.com/uberpack/uberpack/internal/classpath"
	"github.com/uberpack/uberpack/internal/config"
	"github.com/uberpack/uberpack/internal/logging"
	"github.com/uberpack/uberpack/internal/progress"
	"github.com/uberpack/uberpack/internal/s3"
)

var version = "0.1.0-dev"

type logFormat enumflag.Flag

const (
	formatText logFormat = iota
	formatJSON
)

var logFormatIDs = map[logFormat][]string{
	formatText: {"text"},
	formatJSON: {"json"},
}

var modeIDs = map[config.Mode][]string{
	config.Full: {"full"},
	config.Thin: {"thin"},
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "uberpack",
		Short:        "uberpack assembles a single executable jar from a classpath",
		Version:      version,
		SilenceUsage: true,
	}
	root.AddCommand(newBuildCmd())
	root.AddCommand(newEntriesCmd())
	return root
}

type buildParams struct {
	configFile string
	output     string
	cp         string
	marker     string
	mode       config.Mode
	debug      bool
	format     logFormat
}

func newBuildCmd() *cobra.Command {
	var params buildParams

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Merge all classpath entries into one output jar",
		Long: `Build extracts every classpath entry (directory or jar) into a fresh
staging tree, resolves filename collisions with per-file merge policies, and
packages the merged tree into a single jar. The classpath is taken from
--classpath or, when unset, the CLASSPATH environment variable.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, &params)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&params.configFile, "config", "c", "", "path to a YAML configuration file")
	flags.StringVarP(&params.output, "output", "o", "uber.jar", "path of the output jar")
	flags.StringVar(&params.cp, "classpath", "", "classpath to merge (defaults to $CLASSPATH)")
	flags.StringVar(&params.marker, "marker", config.DefaultMarker, "substring excluding the tool's own jar from the classpath")
	flags.Var(enumflag.New(&params.mode, "mode", modeIDs, enumflag.EnumCaseInsensitive),
		"mode", "packaging mode; 'full' extracts nested jars, 'thin' skips them")
	flags.BoolVar(&params.debug, "debug", false, "log excluded files and other per-file diagnostics")
	flags.Var(enumflag.New(&params.format, "format", logFormatIDs, enumflag.EnumCaseInsensitive),
		"log-format", "log output format; 'text' or 'json'")

	return cmd
}

func runBuild(cmd *cobra.Command, params *buildParams) error {
	ctx := cmd.Context()

	root := &config.Root{}
	if params.configFile != "" {
		var err error
		root, err = config.ParseFile(params.configFile)
		if err != nil {
			return err
		}
	}

	// Flags take precedence over the configuration file.
	if cmd.Flags().Changed("output") || root.Output == "" {
		root.Output = params.output
	}
	if cmd.Flags().Changed("debug") {
		root.Debug = params.debug
	}
	if cmd.Flags().Changed("marker") || root.Marker == "" {
		root.Marker = params.marker
	}
	mode := params.mode
	if !cmd.Flags().Changed("mode") && root.Mode != "" {
		var err error
		mode, err = config.ParseMode(root.Mode)
		if err != nil {
			return err
		}
	}

	level := logging.LogLevelInfo
	if root.Debug {
		level = logging.LogLevelDebug
	}
	format := logging.FormatText
	if params.format == formatJSON {
		format = logging.FormatJSON
	}
	log := logging.NewLogger(logging.Config{Level: level, Format: format})

	entries := classpath.Entries(resolveClasspath(params.cp), root.Marker)
	if len(entries) == 0 {
		return fmt.Errorf("empty classpath: set --classpath or the CLASSPATH environment variable")
	}

	if dir := filepath.Dir(root.Output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	out, err := os.Create(root.Output)
	if err != nil {
		return fmt.Errorf("create output %q: %w", root.Output, err)
	}

	bar := progress.New(!root.Debug, len(entries), "packing "+filepath.Base(root.Output))

	err = builder.New().
		WithEntries(entries).
		WithMode(mode).
		WithExcluded(root.Exclude).
		WithOutput(out).
		WithLogger(log).
		WithDebug(root.Debug).
		WithProgress(bar).
		Build(ctx)
	bar.Finish()
	if err != nil {
		out.Close()
		os.Remove(root.Output)
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("write output %q: %w", root.Output, err)
	}

	log.Infof("wrote %s (%d classpath entries, %s mode)", root.Output, len(entries), mode)

	if root.Storage != nil {
		if err := upload(ctx, root, log); err != nil {
			return err
		}
	}
	return nil
}

func upload(ctx context.Context, root *config.Root, log *logging.Logger) error {
	store, err := s3.New(ctx, *root.Storage)
	if err != nil {
		return err
	}
	f, err := os.Open(root.Output)
	if err != nil {
		return fmt.Errorf("open output %q: %w", root.Output, err)
	}
	defer f.Close()
	if err := store.Upload(ctx, f); err != nil {
		return err
	}
	log.Infof("uploaded %s", root.Output)
	return nil
}

func newEntriesCmd() *cobra.Command {
	var (
		cp     string
		marker string
	)
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List and classify classpath entries without building",
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries := classpath.Entries(resolveClasspath(cp), marker)
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("PATH", "KIND")
			for _, e := range entries {
				if err := table.Append([]string{e, classpath.Classify(e).String()}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
	cmd.Flags().StringVar(&cp, "classpath", "", "classpath to inspect (defaults to $CLASSPATH)")
	cmd.Flags().StringVar(&marker, "marker", config.DefaultMarker, "substring excluding the tool's own jar from the classpath")
	return cmd
}

func resolveClasspath(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv("CLASSPATH")
}
