// Package cli holds the setup shared by the flame chart viewers: flags, configuration, logging, input loading and
// the metrics endpoint.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"honnef.co/go/flamechart"
	"honnef.co/go/flamechart/config"
	"honnef.co/go/flamechart/loader"
	"honnef.co/go/flamechart/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Flags struct {
	Config string
	Filter string
	Input  string
}

// Parse parses the command line of the program called name.
func Parse(name string, args []string, output io.Writer) (Flags, error) {
	var f Flags
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] <input.json>\n\nFlags:\n", name)
		fs.PrintDefaults()
	}
	fs.StringVar(&f.Config, "config", "", "YAML configuration `file`")
	fs.StringVar(&f.Filter, "filter", "", "jq `program` that reshapes the input before it is loaded")
	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return Flags{}, errors.New("expected exactly one input file")
	}
	f.Input = fs.Arg(0)
	return f, nil
}

// Session is a loaded configuration and input, plus the resources built from them.
type Session struct {
	Config  config.Config
	Log     *zap.Logger
	Doc     *loader.Document
	Metrics *metrics.Render

	server   *http.Server
	listener net.Listener
}

// Start loads the configuration and the input and starts the metrics endpoint if one is configured.
func Start(f Flags) (*Session, error) {
	cfg := config.Default()
	if f.Config != "" {
		var err error
		if cfg, err = config.Load(f.Config); err != nil {
			return nil, err
		}
	}
	log, err := cfg.Logging.Build()
	if err != nil {
		return nil, err
	}

	ld, err := loader.New(loader.WithFilter(f.Filter), loader.WithLogger(log.Named("loader")))
	if err != nil {
		return nil, err
	}
	doc, err := ld.LoadFile(f.Input)
	if err != nil {
		return nil, err
	}

	s := &Session{Config: cfg, Log: log, Doc: doc}
	if cfg.Metrics.Listen != "" {
		if err := s.serveMetrics(cfg.Metrics.Listen); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Session) serveMetrics(addr string) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.NewRender(reg)
	if err != nil {
		return err
	}
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("couldn't listen for metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	s.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	s.listener = l
	s.Metrics = m
	go func() {
		if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Log.Error("metrics server failed", zap.Error(err))
		}
	}()
	s.Log.Info("serving metrics", zap.Stringer("addr", l.Addr()))
	return nil
}

// MetricsAddr returns the address of the metrics endpoint, or nil.
func (s *Session) MetricsAddr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Options returns the chart options for the loaded input and configuration.
func (s *Session) Options() (flamechart.Options, error) {
	var opts flamechart.Options
	if err := s.Config.Apply(&opts); err != nil {
		return flamechart.Options{}, err
	}
	s.Doc.Apply(&opts)
	opts.Logger = s.Log
	opts.Metrics = s.Metrics
	return opts, nil
}

// Close stops the metrics endpoint and flushes the logger.
func (s *Session) Close() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			s.Log.Warn("couldn't stop metrics server", zap.Error(err))
		}
	}
	_ = s.Log.Sync()
}
