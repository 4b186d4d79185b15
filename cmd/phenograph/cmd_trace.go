package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jacanchaplais/phenograph"
	"github.com/jacanchaplais/phenograph/codec"
	"github.com/jacanchaplais/phenograph/internal/config"
	"github.com/jacanchaplais/phenograph/internal/telemetry"
)

type traceFlags struct {
	configPath    string
	property      string
	exclusive     bool
	target        []int32
	selectPDG     []int32
	signSensitive bool
	workers       int
	format        string
	output        string
}

func newTraceCmd(a *app) *cobra.Command {
	var flags traceFlags

	cmd := &cobra.Command{
		Use:   "trace <events-file>",
		Short: "Decompose final-state properties into hard-process contributions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadTraceConfig(cmd, flags)
			if err != nil {
				return err
			}
			return a.runTrace(cmd.Context(), cmd.OutOrStdout(), cfg, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.configPath, "config", "c", "", "Config file (default: search $"+config.EnvConfigPath+" and ./"+config.ConfigFileName+")")
	f.StringVarP(&flags.property, "property", "p", "", "Property to trace: momentum, energy or charge")
	f.BoolVar(&flags.exclusive, "exclusive", false, "Stop hard partons inheriting attribution from their own ancestry")
	f.Int32SliceVar(&flags.target, "target", nil, "Restrict the basis to these PDG codes (sign-sensitive)")
	f.Int32SliceVar(&flags.selectPDG, "select", nil, "Only trace final-state particles with these PDG codes")
	f.BoolVar(&flags.signSensitive, "sign-sensitive", false, "Match --select codes including their sign")
	f.IntVarP(&flags.workers, "workers", "j", 0, "Trace up to this many particles concurrently")
	f.StringVarP(&flags.format, "format", "f", "", "Output format: yaml or json")
	f.StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

// loadTraceConfig reads the config file and applies explicitly set flags on top.
func loadTraceConfig(cmd *cobra.Command, flags traceFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, _, err = config.LoadFromPath(flags.configPath)
	} else {
		cfg, _, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("property") {
		cfg.Property = flags.property
	}
	if changed("exclusive") {
		cfg.Exclusive = flags.exclusive
	}
	if changed("target") {
		cfg.Target = flags.target
	}
	if changed("select") {
		cfg.Select.PDG = flags.selectPDG
	}
	if changed("sign-sensitive") {
		cfg.Select.SignSensitive = flags.signSensitive
	}
	if changed("workers") {
		cfg.Workers = flags.workers
	}
	if changed("format") {
		cfg.Output.Format = flags.format
	}
	if changed("output") {
		cfg.Output.Path = flags.output
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) runTrace(ctx context.Context, stdout io.Writer, cfg *config.Config, path string) error {
	shutdown, err := a.startTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			a.logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	records, err := readRecords(path)
	if err != nil {
		return err
	}
	out, err := codec.ForFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	opts := []phenograph.Option{
		phenograph.WithExclusive(cfg.Exclusive),
		phenograph.WithTarget(toPDG(cfg.Target)...),
		phenograph.WithWorkers(cfg.Workers),
		phenograph.WithLogger(a.logger),
	}
	selectCodes := toPDG(cfg.Select.PDG)

	results := make([]codec.TraceRecord, 0, len(records))
	for _, rec := range records {
		mask := rec.Event.FinalMask()
		if len(selectCodes) > 0 {
			mask = mask.And(rec.Event.PDGMask(selectCodes, cfg.Select.SignSensitive))
		}

		traces, metrics, err := phenograph.HardTrace(ctx, rec.Event, mask, propertyOf(rec, cfg.Property), opts...)
		if err != nil {
			return fmt.Errorf("event %s: %w", rec.ID, err)
		}
		a.logger.Info("traced event",
			zap.String("event", rec.ID),
			zap.Int("particles", rec.Event.Len()),
			zap.Int("queries", metrics.Queries),
			zap.Strings("basis", traces.Labels()),
			zap.Duration("duration", metrics.Duration),
		)
		results = append(results, codec.TraceRecord{Event: rec.ID, Traces: traces})
	}

	w := stdout
	if cfg.Output.Path != "" {
		f, err := os.Create(cfg.Output.Path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	return out.Export(results, w)
}

// startTelemetry installs the configured exporters and, for Prometheus,
// serves /metrics until the returned shutdown is called.
func (a *app) startTelemetry(ctx context.Context, tc config.TelemetryConfig) (func(context.Context) error, error) {
	tcfg := telemetry.DefaultConfig()
	tcfg.TraceExporter = tc.Traces
	tcfg.MetricExporter = tc.Metrics
	if tc.OTLPEndpoint != "" {
		tcfg.OTLPEndpoint = tc.OTLPEndpoint
	}

	shutdown, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		return nil, err
	}

	handler := telemetry.MetricsHandler()
	if tc.Metrics != "prometheus" || handler == nil {
		return shutdown, nil
	}

	ln, err := net.Listen("tcp", tc.MetricsAddr)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("listen metrics: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	a.logger.Info("serving metrics", zap.String("addr", ln.Addr().String()))

	return func(ctx context.Context) error {
		return errors.Join(srv.Shutdown(ctx), shutdown(ctx))
	}, nil
}

func propertyOf(rec codec.Record, name string) phenograph.Property {
	switch name {
	case config.PropertyEnergy:
		e, _ := rec.Momenta.Field("e")
		return phenograph.Scalars(e)
	case config.PropertyCharge:
		if rec.Charges != nil {
			return rec.Charges
		}
		return rec.Event.Charges()
	default:
		return rec.Momenta
	}
}

func toPDG(codes []int32) []phenograph.PDG {
	out := make([]phenograph.PDG, len(codes))
	for i, c := range codes {
		out[i] = phenograph.PDG(c)
	}
	return out
}
