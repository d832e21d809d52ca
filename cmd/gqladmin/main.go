package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"

	"github.com/hanpama/gqladmin/internal/config"
	"github.com/hanpama/gqladmin/internal/eventbus"
	"github.com/hanpama/gqladmin/internal/language"
	"github.com/hanpama/gqladmin/internal/otel"
	"github.com/hanpama/gqladmin/internal/server"
	"github.com/hanpama/gqladmin/internal/shape"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.Execute()
}

// rootFlags are shared by every command and override the config file.
type rootFlags struct {
	configPath string
	envFile    string
	schemaFile string
	rulesFile  string
	exclude    []string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:   "gqladmin",
		Short: "Derive admin UI configuration from a GraphQL schema",
		Long: `gqladmin inspects a GraphQL schema for types that follow the
{Type}_find / {Type}_create / {Type}_update / {Type}_remove convention and
derives a declarative admin configuration from them. User rules are overlaid
on the result, and operations that are not permitted are pruned.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", config.ConfigFile, "Path to the config file")
	pf.StringVar(&f.envFile, "env-file", ".env", "Path to a .env file")
	pf.StringVarP(&f.schemaFile, "schema", "s", "", "GraphQL SDL file or directory (overrides config)")
	pf.StringVarP(&f.rulesFile, "rules", "r", "", "JSON or YAML rules file (overrides config)")
	pf.StringSliceVarP(&f.exclude, "exclude", "x", nil, "Type names to leave out. Repeatable")

	root.AddCommand(newServeCmd(f), newGenerateCmd(f), newSchemaCmd(f))
	return root
}

// load resolves the configuration from file, environment and flags, in
// increasing precedence.
func (f *rootFlags) load() (*config.Config, error) {
	if err := config.LoadDotenv(f.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg.ApplyEnv()
	if f.schemaFile != "" {
		cfg.Schema = ""
		cfg.SchemaFile = absPath(f.schemaFile)
	}
	if f.rulesFile != "" {
		cfg.RulesFile = absPath(f.rulesFile)
	}
	cfg.Exclude = append(cfg.Exclude, f.exclude...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func newServeCmd(f *rootFlags) *cobra.Command {
	var addr, otelEndpoint string
	var prettyJSON bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the admin shape over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("pretty") {
				cfg.Server.Pretty = prettyJSON
			}
			if cmd.Flags().Changed("otel-endpoint") {
				cfg.OTel.Endpoint = otelEndpoint
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&prettyJSON, "pretty", false, "Pretty-print JSON responses")
	cmd.Flags().StringVar(&otelEndpoint, "otel-endpoint", "", "OTLP collector endpoint")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	doc, err := cfg.LoadSchema()
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	rules, err := cfg.LoadRules()
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return err
	}

	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(cfg.OTel.Endpoint, cfg.OTel.Service)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	sopts := []server.Option{
		server.WithRules(rules),
		server.WithExclude(cfg.Exclude...),
		server.WithLogger(log.Default()),
		server.WithPath(cfg.Server.Path),
		server.WithTimeout(timeout),
	}
	if cfg.Server.Pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(cfg.Server.CORSOrigins...))
	}
	h, err := server.New(doc, sopts...)
	if err != nil {
		return fmt.Errorf("server init: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: server.Router(h)}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.Printf("Admin shape for %s served at %s%s", doc.Name, cfg.Server.Addr, h.Path())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Printf("Shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newGenerateCmd(f *rootFlags) *cobra.Command {
	var plainJSON, asYAML bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print the admin shape with rules applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load()
			if err != nil {
				return err
			}
			doc, err := cfg.LoadSchema()
			if err != nil {
				return fmt.Errorf("load schema: %w", err)
			}
			rules, err := cfg.LoadRules()
			if err != nil {
				return fmt.Errorf("load rules: %w", err)
			}
			out, err := shape.Generate(doc, shape.Options{
				Rules:   rules,
				Exclude: cfg.Exclude,
				Logger:  log.New(cmd.ErrOrStderr(), "", 0),
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asYAML {
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err := enc.Encode(out); err != nil {
					return err
				}
				return enc.Close()
			}
			data, err := out.MarshalJSON()
			if err != nil {
				return err
			}
			data = pretty.Pretty(data)
			if !plainJSON {
				data = pretty.Color(data, nil)
			}
			_, err = w.Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&plainJSON, "json", false, "Print plain JSON without colors")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print YAML instead of JSON")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")
	return cmd
}

func newSchemaCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the configured schema in normalized SDL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load()
			if err != nil {
				return err
			}
			doc, err := cfg.LoadSchema()
			if err != nil {
				return fmt.Errorf("load schema: %w", err)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), language.FormatSchema(doc.AST()))
			return err
		},
	}
}
