// Command hogsvdd serves decompositions over HTTP and exports Prometheus
// metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/yyyoichi/hogsvd"
	"github.com/yyyoichi/hogsvd/internal/server"
	"github.com/yyyoichi/hogsvd/metrics"
)

type config struct {
	listen        string
	order         string
	singularTol   float64
	symmetryTol   float64
	degenerateTol float64
	concurrency   int
	verbose       bool
}

func parseFlags(args []string, output io.Writer) (config, error) {
	var c config
	fs := flag.NewFlagSet("hogsvdd", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&c.listen, "listen", ":8080", "address to serve the API and /metrics on")
	fs.StringVar(&c.order, "order", "asc", "eigenvalue order of the shared basis: asc or desc")
	fs.Float64Var(&c.singularTol, "singular-tol", hogsvd.DefaultSingularTolerance, "smallest reciprocal condition number accepted for inversion")
	fs.Float64Var(&c.symmetryTol, "symmetry-tol", hogsvd.DefaultSymmetryTolerance, "asymmetry accepted for the symmetric eigensolver")
	fs.Float64Var(&c.degenerateTol, "degenerate-tol", hogsvd.DefaultDegenerateTolerance, "largest column norm treated as zero")
	fs.IntVar(&c.concurrency, "j", 0, "matrices processed at once per request (0: GOMAXPROCS)")
	fs.BoolVar(&c.verbose, "v", false, "debug logging")
	err := fs.Parse(args)
	return c, err
}

// options maps the flags onto decomposer options.
func (c config) options() ([]hogsvd.Option, error) {
	ordering, err := hogsvd.ParseOrdering(c.order)
	if err != nil {
		return nil, err
	}
	opts := []hogsvd.Option{
		hogsvd.WithSingularTolerance(c.singularTol),
		hogsvd.WithSymmetryTolerance(c.symmetryTol),
		hogsvd.WithDegenerateTolerance(c.degenerateTol),
		hogsvd.WithOrdering(ordering),
	}
	if c.concurrency > 0 {
		opts = append(opts, hogsvd.WithConcurrency(c.concurrency))
	}
	return opts, nil
}

func main() {
	c, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector, err := metrics.NewPrometheus(reg)
	if err != nil {
		log.Fatal(err)
	}

	opts, err := c.options()
	if err != nil {
		log.Fatal(err)
	}
	opts = append(opts, hogsvd.WithLogger(logger), hogsvd.WithMetrics(collector))
	d, err := hogsvd.New(opts...)
	if err != nil {
		log.Fatal(err)
	}

	srv := &http.Server{
		Addr:              c.listen,
		Handler:           server.New(d, logger, reg).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", "addr", c.listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
