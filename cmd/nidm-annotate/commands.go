package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/c360studio/nidm-annotate/annotator"
	"github.com/c360studio/nidm-annotate/config"
	"github.com/c360studio/nidm-annotate/watch"
	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// session is the loaded state every subcommand starts from.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	tables []string
}

func newSession(cmd *cobra.Command, g *globalFlags, f *annotateFlags) (*session, error) {
	logger := newLogger(cmd.ErrOrStderr(), g.logLevel)

	cfg, err := config.NewLoader(logger).Load(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := f.apply(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	tables, err := watch.ResolveFiles(f.tables)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, tables: tables}, nil
}

// natsDialTimeout bounds how long a run waits for NATS before giving up.
const natsDialTimeout = 5 * time.Second

// syncIfConfigured pushes a run to NATS when nats.url is set.
func (s *session) syncIfConfigured(ctx context.Context, p *pipeline, out *runOutput) error {
	if s.cfg.NATS.URL == "" {
		return nil
	}
	client, err := s.dialNATS(ctx)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	return p.sync(ctx, client, out)
}

func (s *session) dialNATS(ctx context.Context) (*natsclient.Client, error) {
	url := s.cfg.NATS.URL
	client, err := natsclient.NewClient(url,
		natsclient.WithName(appName),
		natsclient.WithMaxReconnects(3),
		natsclient.WithReconnectWait(250*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	dialCtx, cancel := context.WithTimeout(ctx, natsDialTimeout)
	defer cancel()

	if err := client.Connect(dialCtx); err != nil {
		return nil, natsUnavailable(err, url)
	}
	if err := client.WaitForConnection(dialCtx); err != nil {
		return nil, natsUnavailable(err, url)
	}

	s.logger.Debug("Connected to NATS", slog.String("url", url))
	return client, nil
}

// natsUnavailable explains how to get the run through when the server at
// url cannot be reached. The annotation outputs are already on disk by then.
func natsUnavailable(err error, url string) error {
	unreachable := errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		strings.Contains(err.Error(), "connection refused")
	if !unreachable {
		return fmt.Errorf("sync to NATS at %s: %w", url, err)
	}
	return fmt.Errorf(`sync to NATS at %s: %w

The sidecar and graph were written, but no NATS server answered at %s.
Start a JetStream server there, or leave nats.url and %s unset to skip the sync.`,
		url, err, url, config.EnvNATSURL)
}

func annotateCmd(g *globalFlags) *cobra.Command {
	var f annotateFlags

	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Annotate tables and write the sidecar and graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			s, err := newSession(cmd, g, &f)
			if err != nil {
				return err
			}
			p, err := newPipeline(s.cfg, s.logger, nil)
			if err != nil {
				return err
			}

			out, err := p.run(ctx, s.tables, f.source)
			if err != nil {
				return err
			}
			if err := s.syncIfConfigured(ctx, p, out); err != nil {
				return err
			}

			printSummary(cmd.OutOrStdout(), out)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func queryCmd(g *globalFlags) *cobra.Command {
	var f annotateFlags

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Annotate tables and print every data element statement as TSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			s, err := newSession(cmd, g, &f)
			if err != nil {
				return err
			}
			p, err := newPipeline(s.cfg, s.logger, nil)
			if err != nil {
				return err
			}

			out, err := p.run(ctx, s.tables, f.source)
			if err != nil {
				return err
			}
			return writeRows(cmd.OutOrStdout(), out.Graph.DataElementTriples())
		},
	}
	f.register(cmd)
	return cmd
}

func watchCmd(g *globalFlags) *cobra.Command {
	var f annotateFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-annotate whenever the tables or the source change",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			s, err := newSession(cmd, g, &f)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())
			p, err := newPipeline(s.cfg, s.logger, annotator.NewMetrics(reg))
			if err != nil {
				return err
			}

			if addr := s.cfg.Watch.MetricsAddr; addr != "" {
				stop := serveMetrics(addr, reg, s.logger)
				defer stop()
			}

			return s.watchLoop(ctx, p, f.source, cmd.OutOrStdout())
		},
	}
	f.register(cmd)
	return cmd
}

// watchLoop runs the pipeline once, then again after every change until
// ctx is cancelled. Runs are serialized. A failed run is logged and the
// loop keeps watching.
func (s *session) watchLoop(ctx context.Context, p *pipeline, source string, stdout io.Writer) error {
	files := append(append([]string{}, s.tables...), source)
	w, err := watch.NewWatcher(watch.Config{
		Files:    files,
		Debounce: s.cfg.Watch.Debounce,
		Logger:   s.logger,
	})
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	runOnce := func() {
		out, err := p.run(ctx, s.tables, source)
		if err != nil {
			s.logger.Error("Annotation run failed", "error", err)
			return
		}
		if err := s.syncIfConfigured(ctx, p, out); err != nil {
			s.logger.Error("NATS sync failed", "error", err)
		}
		printSummary(stdout, out)
	}

	runOnce()
	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-w.Events():
			if !ok {
				return nil
			}
			s.logger.Info("Inputs changed",
				"changed", change.Paths,
				"removed", change.Removed)
			runOnce()
		}
	}
}

// serveMetrics exposes reg on addr/metrics and returns a shutdown func.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Metrics listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Metrics server shutdown", "error", err)
		}
	}
}

func printSummary(w io.Writer, out *runOutput) {
	for _, res := range out.Results {
		fmt.Fprintf(w, "%s: %d columns annotated (%s) -> %s\n",
			res.Assessment, len(res.Mapping), res.Dialect, res.SidecarPath)
	}
	fmt.Fprintf(w, "graph: %d statements -> %s\n", out.Graph.Len(), out.GraphPath)
}

// writeRows prints (subject, predicate, object) rows as TSV with a header.
func writeRows(w io.Writer, rows []message.Triple) error {
	if _, err := fmt.Fprintln(w, "subject\tpredicate\tobject"); err != nil {
		return err
	}
	for _, t := range rows {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%v\n", t.Subject, t.Predicate, t.Object); err != nil {
			return err
		}
	}
	return nil
}
