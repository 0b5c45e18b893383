package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/ee99ee/codemagic-mcp-improved/internal/codemagic"
	"github.com/ee99ee/codemagic-mcp-improved/internal/config"
	"github.com/ee99ee/codemagic-mcp-improved/internal/logging"
	"github.com/ee99ee/codemagic-mcp-improved/internal/tools"
)

const serverName = "codemagic-mcp"

var version = "0.1.0"

// serveOptions are bound to the command-line flags. Flags that were set
// explicitly override the config file and environment.
type serveOptions struct {
	configPath      string
	baseURL         string
	timeout         time.Duration
	downloadTimeout time.Duration
	logLevel        string
	logFile         string
	httpAddr        string
	stdio           bool
	trace           bool
}

func main() {
	if err := loadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}

	if err := newRootCmd(&serveOptions{}).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadDotEnv loads path into the environment. A missing file is fine;
// variables already in the environment win.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func newRootCmd(opts *serveOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           serverName,
		Short:         "MCP server for the Codemagic CI/CD API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "config file (default "+config.Path()+")")
	f.StringVar(&opts.baseURL, "base-url", "", "Codemagic API origin (env "+config.EnvBaseURL+")")
	f.DurationVar(&opts.timeout, "timeout", 0, "timeout of API calls")
	f.DurationVar(&opts.downloadTimeout, "download-timeout", 0, "timeout of artifact downloads")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	f.StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")

	serveFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&opts.httpAddr, "http", "", "if set, use streamable HTTP at this address, instead of stdin/stdout")
		cmd.Flags().BoolVar(&opts.stdio, "stdio", true, "use stdio transport (ignored if --http is set)")
		cmd.Flags().BoolVar(&opts.trace, "trace", false, "log every JSON-RPC message of the stdio transport to stderr")
	}
	serveFlags(root)

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
	serveFlags(serve)

	root.AddCommand(serve, newToolsCmd(opts), newAuthCmd())
	return root
}

// resolveConfig loads the config file and environment, then applies the
// flags set on cmd.
func (opts *serveOptions) resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = opts.baseURL
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if flags.Changed("download-timeout") {
		cfg.DownloadTimeout = opts.downloadTimeout
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = opts.logFile
	}
	if flags.Changed("http") {
		cfg.HTTPAddr = opts.httpAddr
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newRegistry builds the API client and the tool registry for cfg.
func newRegistry(cfg config.Config, logger *log.Logger) (*tools.Registry, error) {
	client, err := codemagic.NewClient(codemagic.Options{
		BaseURL:        cfg.BaseURL,
		Credentials:    config.Credentials{},
		HTTPClient:     &http.Client{Timeout: cfg.Timeout},
		DownloadClient: &http.Client{Timeout: cfg.DownloadTimeout},
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}
	return tools.New(client, logger)
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	cfg, err := opts.resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer closer.Close()

	registry, err := newRegistry(cfg, logger)
	if err != nil {
		return err
	}

	src, err := (config.Credentials{}).Source()
	if err != nil {
		logger.Warn("could not inspect keyring", "error", err)
	}
	logger.Info("using Codemagic API", "base_url", cfg.BaseURL, "credential", src, "tools", len(registry.Names()))

	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil)
	registry.Install(server)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case cfg.HTTPAddr != "":
		return serveHTTP(ctx, server, cfg.HTTPAddr, logger)
	case opts.stdio:
		logger.Info("starting MCP server over stdio")
		var t mcp.Transport = &mcp.StdioTransport{}
		if opts.trace {
			t = &mcp.LoggingTransport{Transport: t, Writer: os.Stderr}
		}
		if err := server.Run(ctx, t); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	default:
		return errors.New("no transport selected, use --http or --stdio")
	}
}
