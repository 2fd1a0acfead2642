package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/trylite/config"
	"github.com/jonwraymond/trylite/observe"
	"github.com/jonwraymond/trylite/observe/exporters"
	"github.com/jonwraymond/trylite/resilience"
)

// ErrRunsFailed is returned when at least one demo run ended in an error.
var ErrRunsFailed = errors.New("cli: runs failed")

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulated operation under a strategy",
		Long: `Run executes a simulated operation that prints "Executing operation..."
and fails at random with an invalid-argument or invalid-state error.

Strategies:
  plain     run once and report the configured message on failure
  retry     retry under --policy: backoff (base unit * 2^attempt) or
            exponential (cenkalti/backoff, x1.5 per attempt)
  classify  map the failure kind to a specific message
  fallback  substitute a fallback value for invalid-state failures`,
		Args: cobra.NoArgs,
		RunE: runDemo,
	}

	f := cmd.Flags()
	f.String("strategy", "", "plain|retry|classify|fallback")
	f.String("policy", "", "retry policy: backoff|exponential")
	f.Int("max-retries", 0, "maximum retries after the first attempt")
	f.Duration("base-unit", 0, "backoff base unit")
	f.Duration("max-delay", 0, "cap on a single backoff delay")
	f.Duration("attempt-timeout", 0, "deadline for each attempt")
	f.Float64("failure-rate", 0, "probability in [0,1] that an attempt fails")
	f.Int("runs", 0, "number of independent invocations")
	f.Int("concurrency", 0, "maximum concurrent invocations")
	f.Int64("seed", 0, "random seed; 0 picks one from the clock")
	f.String("message", "", "failure message for the plain and retry strategies")

	return cmd
}

func runDemo(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := &lockedWriter{w: cmd.OutOrStdout()}

	ex, shutdown, err := newExecutor(ctx, cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer shutdown()

	seed := cfg.Demo.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Demo.Concurrency)

	for i := 0; i < cfg.Demo.Runs; i++ {
		run := i + 1
		rng := rand.New(rand.NewPCG(uint64(seed), uint64(run)))
		g.Go(func() error {
			result, err := runOnce(gctx, ex, cfg, demoOperation(out, rng, cfg.Demo.FailureRate))
			if err != nil {
				failed.Add(1)
				fmt.Fprintf(out, "run %d: %v\n", run, err)
				return nil
			}
			fmt.Fprintf(out, "run %d: %s\n", run, result)
			return nil
		})
	}
	_ = g.Wait()

	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%w: %d of %d", ErrRunsFailed, n, cfg.Demo.Runs)
	}
	return nil
}

// runOnce dispatches op to the entry point named by the strategy.
func runOnce(ctx context.Context, ex *resilience.Executor, cfg *config.Config, op resilience.Operation[string]) (string, error) {
	switch cfg.Demo.Strategy {
	case "plain":
		return resilience.Execute(ctx, ex, op, cfg.Demo.Message)
	case "classify":
		return resilience.ExecuteWithKinds(ctx, ex, op, demoKinds, demoMessages)
	case "fallback":
		return resilience.ExecuteWithFallback(ctx, ex, op,
			resilience.MatchKind(resilience.KindInvalidState), "Recovered from invalid state", demoFallback)
	default:
		return resilience.ExecuteWithRetry(ctx, ex, op, cfg.Retry.RetryPolicy(), cfg.Demo.Message)
	}
}

// newExecutor wires logging, tracing and metrics into an executor. The
// returned function flushes telemetry.
func newExecutor(ctx context.Context, cfg *config.Config, logOut io.Writer) (*resilience.Executor, func(), error) {
	logger := observe.NopLogger()
	if cfg.Observe.Logging.Enabled {
		l, err := observe.NewLoggerFromConfig(cfg.Observe.Logging, logOut)
		if err != nil {
			return nil, nil, err
		}
		logger = l
	}

	// The observer only supplies tracing and metrics; logging is built above
	// so that it follows the command's error stream.
	obsCfg := cfg.Observe
	obsCfg.Logging.Enabled = false
	obs, err := observe.NewObserver(ctx, obsCfg, exporters.WithWriter(logOut))
	if err != nil {
		return nil, nil, fmt.Errorf("setup observability: %w", err)
	}

	metrics, err := observe.NewMetrics(obs.Meter())
	if err != nil {
		return nil, nil, fmt.Errorf("setup metrics: %w", err)
	}
	recorder := observe.NewRecorder(observe.NewTracer(obs.Tracer()), metrics, logger)

	opts := []resilience.ExecutorOption{
		resilience.WithName(cfg.Observe.ServiceName),
		resilience.WithLogger(observe.NewFailureLogger(logger)),
		resilience.WithRecorder(recorder),
	}
	if d := cfg.Retry.AttemptTimeout.Duration(); d > 0 {
		opts = append(opts, resilience.WithAttemptTimeout(d))
	}

	shutdown := func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(sctx)
		_ = logger.Sync()
	}
	return resilience.NewExecutor(opts...), shutdown, nil
}

// loadConfig reads the config file and applies any flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	envFiles, _ := cmd.Flags().GetStringSlice("env-file")

	cfg, err := config.Load(path, config.WithEnvFiles(envFiles...))
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("strategy") {
		cfg.Demo.Strategy, _ = f.GetString("strategy")
	}
	if f.Changed("policy") {
		cfg.Retry.PolicyName, _ = f.GetString("policy")
	}
	if f.Changed("max-retries") {
		cfg.Retry.MaxRetries, _ = f.GetInt("max-retries")
	}
	if f.Changed("base-unit") {
		d, _ := f.GetDuration("base-unit")
		cfg.Retry.BaseUnit = config.Duration(d)
	}
	if f.Changed("max-delay") {
		d, _ := f.GetDuration("max-delay")
		cfg.Retry.MaxDelay = config.Duration(d)
	}
	if f.Changed("attempt-timeout") {
		d, _ := f.GetDuration("attempt-timeout")
		cfg.Retry.AttemptTimeout = config.Duration(d)
	}
	if f.Changed("failure-rate") {
		cfg.Demo.FailureRate, _ = f.GetFloat64("failure-rate")
	}
	if f.Changed("runs") {
		cfg.Demo.Runs, _ = f.GetInt("runs")
	}
	if f.Changed("concurrency") {
		cfg.Demo.Concurrency, _ = f.GetInt("concurrency")
	}
	if f.Changed("seed") {
		cfg.Demo.Seed, _ = f.GetInt64("seed")
	}
	if f.Changed("message") {
		cfg.Demo.Message, _ = f.GetString("message")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
