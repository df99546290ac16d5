package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/aqilarik/xpcache/internal/config"
	"github.com/aqilarik/xpcache/namespace"
	"github.com/aqilarik/xpcache/xpcache"
)

var (
	configPath string
	engineName string
	nsPath     string
	logLevel   string
	resultName string
	byURI      bool
	follow     bool

	rootCmd = &cobra.Command{
		Use:           "playground",
		Short:         "Evaluate cached expressions and resolve namespace prefixes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	evalCmd = &cobra.Command{
		Use:   "eval EXPR [FILE...]",
		Short: "Evaluate EXPR against each FILE (stdin when none), compiling it once",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runEval,
	}

	nsCmd = &cobra.Command{
		Use:   "ns [PREFIX|URI]",
		Short: "Resolve a prefix (or a URI with --uri); lists all bindings without argument",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runNamespace,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "playground.yaml", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&engineName, "engine", "", "expression engine: xpath or expr")
	rootCmd.PersistentFlags().StringVar(&nsPath, "ns", "", "namespace properties file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	evalCmd.Flags().StringVarP(&resultName, "type", "t", "string", "result type: string, number, boolean, nodeset, any")
	nsCmd.Flags().BoolVar(&byURI, "uri", false, "treat the argument as a URI and print its prefixes")
	nsCmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep running and print the bindings after every reload (namespaces.watch in the config)")

	rootCmd.AddCommand(evalCmd, nsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup merges the config file with the command-line overrides.
func setup() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, err
	}
	if engineName != "" {
		cfg.Engine = engineName
	}
	if nsPath != "" {
		cfg.Namespaces.Path = nsPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	return cfg, logger, nil
}

func newTable(cfg config.Config, logger *slog.Logger) *namespace.Table {
	return namespace.NewTable(
		namespace.WithDefaultPath(cfg.Namespaces.Path),
		namespace.WithLogger(logger),
	)
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	rt, err := parseResultType(resultName)
	if err != nil {
		return err
	}

	opts := []xpcache.Option{xpcache.WithLogger(logger)}
	if cfg.Engine == config.EngineExpr {
		opts = append(opts, xpcache.WithExpr())
	} else {
		opts = append(opts, xpcache.WithNamespaceContext(newTable(cfg, logger).NewResolver()))
	}
	cache := xpcache.New(opts...)

	text := args[0]
	files := args[1:]
	if len(files) == 0 {
		return evalOne(cmd.OutOrStdout(), cache, text, "-", cmd.InOrStdin(), rt)
	}
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		err = evalOne(cmd.OutOrStdout(), cache, text, name, f, rt)
		f.Close()
		if err != nil {
			return err
		}
	}
	logger.Debug("done", slog.Int("compiled", cache.Len()), slog.Int("files", len(files)))
	return nil
}

func evalOne(w io.Writer, cache *xpcache.Cache, text, name string, src io.Reader, rt xpcache.ResultType) error {
	v, err := cache.EvaluateSource(text, src, rt)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if items, ok := v.([]any); ok {
		for _, it := range items {
			fmt.Fprintf(w, "%s\t%v\n", name, render(it))
		}
		return nil
	}
	fmt.Fprintf(w, "%s\t%v\n", name, render(v))
	return nil
}

// render prints XML nodes as markup; everything else as-is.
func render(v any) any {
	if n, ok := v.(interface{ OutputXML(bool) string }); ok {
		return n.OutputXML(true)
	}
	return v
}

func parseResultType(s string) (xpcache.ResultType, error) {
	switch s {
	case "string":
		return xpcache.ResultString, nil
	case "number":
		return xpcache.ResultNumber, nil
	case "boolean", "bool":
		return xpcache.ResultBoolean, nil
	case "node":
		return xpcache.ResultNode, nil
	case "nodeset":
		return xpcache.ResultNodeSet, nil
	case "any":
		return xpcache.ResultAny, nil
	default:
		return 0, fmt.Errorf("unknown result type %q", s)
	}
}

func runNamespace(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	table := newTable(cfg, logger)
	out := cmd.OutOrStdout()

	if !follow && !cfg.Namespaces.Watch {
		return printLookup(out, table.NewResolver(), args)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	w, err := namespace.NewWatcher(table, nil)
	if err != nil {
		return err
	}
	defer w.Stop()
	if err := w.Start(ctx); err != nil {
		return err
	}

	// The first resolver loads the file; after that the watcher reloads it.
	table.NewResolver()
	var seen time.Time
	tick := time.NewTicker(250 * time.Millisecond)
	defer tick.Stop()
	for {
		if cp := table.Checkpoint(); !cp.Equal(seen) {
			seen = cp
			fmt.Fprintf(out, "# %s (modified %s)\n", table.Path(), cp.Format(time.RFC3339))
			if err := printLookup(out, table.NewResolver(), args); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
		}
	}
}

func printLookup(out io.Writer, r *namespace.Resolver, args []string) error {
	if len(args) == 0 {
		for prefix, uri := range r.All() {
			fmt.Fprintf(out, "%s=%s\n", prefix, uri)
		}
		return nil
	}
	if byURI {
		found := false
		for p := range r.Prefixes(args[0]) {
			fmt.Fprintln(out, p)
			found = true
		}
		if !found {
			return fmt.Errorf("no prefix bound to %s", args[0])
		}
		return nil
	}
	uri, ok := r.NamespaceURI(args[0])
	if !ok {
		return fmt.Errorf("prefix %q is not bound", args[0])
	}
	fmt.Fprintln(out, uri)
	return nil
}
