package grouprunner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum-optimism/infra/op-grouprunner/runner"
	"github.com/ethereum-optimism/infra/op-grouprunner/service"
	"github.com/ethereum-optimism/infra/op-grouprunner/types"
)

// DescriptorProvider supplies the descriptor sequence for each run. The
// collection step - test discovery, annotation parsing, fixture resolution -
// lives behind this interface and is not this module's concern.
type DescriptorProvider interface {
	Descriptors() ([]types.TestDescriptor, error)
}

// DescriptorProviderFunc adapts a plain function to a DescriptorProvider.
type DescriptorProviderFunc func() ([]types.TestDescriptor, error)

func (f DescriptorProviderFunc) Descriptors() ([]types.TestDescriptor, error) {
	return f()
}

// StaticDescriptors returns a provider serving a fixed descriptor sequence.
func StaticDescriptors(descriptors []types.TestDescriptor) DescriptorProvider {
	return DescriptorProviderFunc(func() ([]types.TestDescriptor, error) {
		return descriptors, nil
	})
}

// Service runs a provider's tests, once or periodically, and reports the
// results through metrics and the console formatter.
type Service struct {
	config    *Config
	provider  DescriptorProvider
	reporter  MetricsReporter
	formatter ResultFormatter

	mu     sync.Mutex
	result *runner.RunnerResult

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup

	ops *service.Service
}

// New creates a Service from the config and descriptor provider.
func New(config *Config, provider DescriptorProvider) (*Service, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, errors.New("descriptor provider is required")
	}

	config.Log.Debug("Creating group runner service",
		"defaultTimeout", config.DefaultTimeout,
		"strict", config.Strict,
		"runOnce", config.RunOnce,
		"runInterval", config.RunInterval)

	return &Service{
		config:    config,
		provider:  provider,
		reporter:  NewDefaultMetricsReporter(),
		formatter: NewConsoleResultFormatter(config.Log),
		done:      make(chan struct{}),
	}, nil
}

// Run performs one complete run: collect descriptors, execute them, report
// metrics, and print the summary table. A CollectionError or provider
// failure comes back wrapped in a RuntimeError; a run that finished with
// failing tests comes back with the result and a TestFailureError.
func (s *Service) Run(ctx context.Context) (*runner.RunnerResult, error) {
	descriptors, err := s.provider.Descriptors()
	if err != nil {
		s.config.Log.Error("Descriptor provider failed", "error", err)
		return nil, NewRuntimeError(err)
	}

	ui := runner.NewNoOpProgressIndicator()
	if s.config.ShowProgress {
		console := runner.NewConsoleProgressIndicator(s.config.Log, s.config.ProgressInterval)
		if stopper, ok := console.(interface{ Stop() }); ok {
			defer stopper.Stop()
		}
		ui = console
	}

	// Runners are single-use; each run gets a fresh one.
	testRunner, err := runner.NewTestRunner(runner.Config{
		Log:            s.config.Log,
		DefaultTimeout: s.config.DefaultTimeout,
		Strict:         s.config.Strict,
		UI:             ui,
	})
	if err != nil {
		return nil, NewRuntimeError(err)
	}

	result, err := testRunner.Run(ctx, descriptors)
	if err != nil {
		return nil, NewRuntimeError(err)
	}

	s.mu.Lock()
	s.result = result
	s.mu.Unlock()

	s.reporter.ReportResults(result.RunID, result)
	if err := s.formatter.FormatResults(result); err != nil {
		s.config.Log.Error("Failed to format results", "error", err)
	}

	if result.Status == types.TestStatusFail {
		return result, NewTestFailureError(result.String())
	}
	return result, nil
}

// Result returns the most recent run result, or nil before the first run.
func (s *Service) Result() *runner.RunnerResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Start runs the tests immediately and, unless the service is configured for
// run-once, keeps re-running them at the configured interval until Stop.
func (s *Service) Start(ctx context.Context) error {
	s.done = make(chan struct{})
	s.running.Store(true)

	if s.config.RunOnce {
		s.config.Log.Info("Starting group runner in run-once mode")
		_, err := s.Run(ctx)
		s.running.Store(false)
		return err
	}

	s.config.Log.Info("Starting group runner in continuous mode", "interval", s.config.RunInterval)
	if s.config.OpsServer {
		s.ops = service.New()
		s.ops.Start(ctx)
	}
	if _, err := s.Run(ctx); err != nil && IsRuntimeError(err) {
		s.running.Store(false)
		if s.ops != nil {
			s.ops.Shutdown()
			s.ops = nil
		}
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-time.After(s.config.RunInterval):
				if !s.running.Load() {
					return
				}
				s.config.Log.Info("Running periodic tests")
				if _, err := s.Run(ctx); err != nil {
					s.config.Log.Error("Error running periodic tests", "error", err)
				}
			case <-s.done:
				s.config.Log.Debug("Done signal received, stopping periodic runner")
				return
			case <-ctx.Done():
				s.config.Log.Debug("Context canceled, stopping periodic runner")
				s.running.Store(false)
				return
			}
		}
	}()

	return nil
}

// Stop stops the periodic runner.
func (s *Service) Stop() {
	if !s.running.Load() {
		return
	}
	s.running.Store(false)
	close(s.done)
	if s.ops != nil {
		s.ops.Shutdown()
		s.ops = nil
	}
}

// Stopped returns true if the service is not running.
func (s *Service) Stopped() bool {
	return !s.running.Load()
}

// WaitForShutdown blocks until all service goroutines have terminated or the
// context expires.
func (s *Service) WaitForShutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.config.Log.Warn("Timed out waiting for goroutines to terminate", "error", ctx.Err())
		return ctx.Err()
	}
}
