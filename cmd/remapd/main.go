// Package main provides the remapd binary: an HTTP service and CLI that
// remaps JSON payloads with declarative key mapping rules.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/Gobd/remap/config"
	"github.com/Gobd/remap/currency"
	"github.com/Gobd/remap/server"
	"github.com/spf13/cobra"
)

const appName = "remapd"

// BuildTime is set by the linker.
var BuildTime = "dev"

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Declarative JSON payload remapping",
		Long: `remapd rewrites JSON payloads with declarative key mapping rules.

Each configured API binds a route to an ordered list of rules. A rule reads a
dotted source path ("data.products[].unitSellPrice"), optionally runs a named
transform, writes the result beside the source and can remove the original.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML, default ./remapd.yaml)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(serveCmd(&g), applyCmd(&g), validateCmd(&g), configCmd(), versionCmd())
	return cmd
}

func serveCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(cmd.ErrOrStderr(), g.logLevel)
			cfg, err := config.NewLoader(logger).Load(g.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			engine, err := server.NewEngine(cfg, logger)
			if err != nil {
				return err
			}
			srv, err := server.New(cfg, engine, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("remapd ready", slog.String("version", server.Version), slog.Any("apis", names(cfg)))
			return srv.ListenAndServe(ctx)
		},
	}
}

func applyCmd(g *globalFlags) *cobra.Command {
	var (
		api         string
		file        string
		permissions string
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Remap one payload from a file or stdin and print the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(cmd.ErrOrStderr(), g.logLevel)
			cfg, err := config.NewLoader(logger).Load(g.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			engine, err := server.NewEngine(cfg, logger)
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			dec := json.NewDecoder(in)
			dec.UseNumber()
			var doc any
			if err := dec.Decode(&doc); err != nil {
				return fmt.Errorf("decode payload: %w", err)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if cmd.Flags().Changed("permissions") {
				ctx = currency.WithAuthorizer(ctx, currency.ParsePermissions(permissions))
			}

			out, err := engine.ApplyAPI(ctx, api, doc, cfg.Defaults, cfg.Overrides)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&api, "api", "", "API name whose rules to apply")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Payload file (default stdin)")
	cmd.Flags().StringVar(&permissions, "permissions", "", "Comma separated caller permissions (default: all)")
	_ = cmd.MarkFlagRequired("api")
	return cmd
}

func validateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and its mapping rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(cmd.ErrOrStderr(), g.logLevel)
			cfg, err := config.NewLoader(logger).Load(g.configPath)
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if _, err := server.NewEngine(cfg, logger); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "configuration OK: %d APIs\n", len(cfg.APIs))
			for _, api := range cfg.APIs {
				_, _ = fmt.Fprintf(out, "  %s %s (%d rules)\n", api.Route, api.Name, len(api.Rules))
			}
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
	}

	var (
		output string
		force  bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file holding the defaults",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(output); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", output)
			}
			if err := config.DefaultConfig().SaveToFile(output); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", config.ProjectConfigFile, "Destination path")
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, server.Version, BuildTime)
		},
	}
}

func newLogger(w io.Writer, logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func names(cfg *config.Config) []string {
	out := make([]string, 0, len(cfg.APIs))
	for _, api := range cfg.APIs {
		out = append(out, api.Name)
	}
	return out
}
