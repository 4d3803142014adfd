package harness

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/marcopolo/responder"
)

// Result holds the outcome of one scenario run.
type Result struct {
	// Name identifies the scenario.
	Name string `json:"name"`

	// Passed is true if the scenario's checks held.
	Passed bool `json:"passed"`

	// Detail summarizes what was observed.
	Detail string `json:"detail,omitempty"`

	// Error is the failure reason, if any.
	Error string `json:"error,omitempty"`

	// Cycles is the number of simulated clock cycles.
	Cycles uint64 `json:"cycles"`

	// SimTimeNS is the simulated time in nanoseconds.
	SimTimeNS float64 `json:"sim_time_ns"`

	// Stats are the responder event counts at the end of the run.
	Stats responder.Statistics `json:"stats"`

	// WallTime is the actual time taken to run the scenario.
	WallTime time.Duration `json:"wall_time_ns"`
}

// Option is a functional option for configuring the Harness.
type Option func(*Harness)

// WithLogger sets the harness logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// WithOutput sets where PrintResults writes.
func WithOutput(w io.Writer) Option {
	return func(h *Harness) {
		h.output = w
	}
}

// WithParallelism caps the number of scenarios run at once. Zero means no
// limit.
func WithParallelism(n int) Option {
	return func(h *Harness) {
		h.parallelism = n
	}
}

// Harness runs scenarios, each on its own bench.
type Harness struct {
	config      *Config
	logger      *zap.Logger
	output      io.Writer
	parallelism int
}

// New creates a harness with the given configuration.
func New(config *Config, opts ...Option) *Harness {
	h := &Harness{
		config: config,
		logger: zap.NewNop(),
		output: os.Stdout,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Run executes the named scenarios concurrently and returns their results
// in the order given. With no names, every built-in scenario runs. A
// failing scenario is reported in its Result; the error return is for
// unknown names, invalid configuration and cancellation.
func (h *Harness) Run(ctx context.Context, names ...string) ([]Result, error) {
	if err := h.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid harness config: %w", err)
	}

	if len(names) == 0 {
		names = ScenarioNames()
	}

	scenarios := make([]Scenario, len(names))
	for i, name := range names {
		s, ok := LookupScenario(name)
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q", name)
		}
		scenarios[i] = s
	}

	results := make([]Result, len(scenarios))
	g, gctx := errgroup.WithContext(ctx)
	if h.parallelism > 0 {
		g.SetLimit(h.parallelism)
	}

	for i, s := range scenarios {
		i, s := i, s
		g.Go(func() error {
			res, err := h.runScenario(gctx, s)
			results[i] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// runScenario runs s on a fresh bench. Only cancellation is returned as an
// error; check failures are recorded in the result.
func (h *Harness) runScenario(ctx context.Context, s Scenario) (Result, error) {
	logger := h.logger.With(zap.String("scenario", s.Name))
	bench := NewBench(ctx, h.config, logger)

	logger.Info("scenario started", zap.String("description", s.Description))
	start := time.Now()
	detail, err := s.Run(bench)

	res := Result{
		Name:      s.Name,
		Passed:    err == nil,
		Detail:    detail,
		Cycles:    bench.Cycle(),
		SimTimeNS: bench.Timestamp(),
		Stats:     bench.Stats(),
		WallTime:  time.Since(start),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		res.Passed = false
		res.Error = ctxErr.Error()
		return res, fmt.Errorf("scenario %s: %w", s.Name, ctxErr)
	}

	if err != nil {
		res.Error = err.Error()
		logger.Error("scenario failed", zap.Error(err))
	} else {
		logger.Info("scenario passed", zap.String("detail", detail))
	}

	return res, nil
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// PrintResults writes a summary table of results.
func (h *Harness) PrintResults(results []Result) {
	w := h.output
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "%-16s %-6s %12s %14s  %s\n", "Scenario", "Result", "Cycles", "Sim time (us)", "Detail")
	for _, r := range results {
		status := "PASS"
		detail := r.Detail
		if !r.Passed {
			status = "FAIL"
			detail = r.Error
		}
		fmt.Fprintf(w, "%-16s %-6s %12d %14.1f  %s\n",
			r.Name, status, r.Cycles, r.SimTimeNS/1000, detail)
	}
	fmt.Fprintf(w, "\n")
}
