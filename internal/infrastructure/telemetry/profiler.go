package telemetry

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// ProfilerConfig holds Pyroscope continuous profiling configuration.
type ProfilerConfig struct {
	Enabled           bool
	ServerAddress     string
	ApplicationName   string
	BasicAuthUser     string
	BasicAuthPassword string
	ProfileTypes      []string
}

var knownProfileTypes = map[string]pyroscope.ProfileType{
	string(pyroscope.ProfileCPU):           pyroscope.ProfileCPU,
	string(pyroscope.ProfileAllocObjects):  pyroscope.ProfileAllocObjects,
	string(pyroscope.ProfileAllocSpace):    pyroscope.ProfileAllocSpace,
	string(pyroscope.ProfileInuseObjects):  pyroscope.ProfileInuseObjects,
	string(pyroscope.ProfileInuseSpace):    pyroscope.ProfileInuseSpace,
	string(pyroscope.ProfileGoroutines):    pyroscope.ProfileGoroutines,
	string(pyroscope.ProfileMutexCount):    pyroscope.ProfileMutexCount,
	string(pyroscope.ProfileMutexDuration): pyroscope.ProfileMutexDuration,
	string(pyroscope.ProfileBlockCount):    pyroscope.ProfileBlockCount,
	string(pyroscope.ProfileBlockDuration): pyroscope.ProfileBlockDuration,
}

// profilingActive gates pprof labelling in service spans. Labels cost an
// allocation per span, so they are only attached while a profiler runs.
var profilingActive atomic.Bool

// ProfilingActive reports whether a profiler is running in this process.
func ProfilingActive() bool {
	return profilingActive.Load()
}

// Profiler wraps the Pyroscope profiler. Disabled profilers are no-ops.
type Profiler struct {
	profiler *pyroscope.Profiler
	logger   *zap.Logger
	config   ProfilerConfig
	mu       sync.Mutex
	stopped  bool
}

// NewProfiler starts a Pyroscope profiler, or returns a no-op one when
// profiling is disabled.
func NewProfiler(cfg ProfilerConfig, logger *zap.Logger) (*Profiler, error) {
	p := &Profiler{logger: logger, config: cfg}
	if !cfg.Enabled {
		logger.Info("Continuous profiling disabled")
		return p, nil
	}

	if cfg.ServerAddress == "" {
		return nil, fmt.Errorf("profiler server address is required when profiling is enabled")
	}
	if cfg.ApplicationName == "" {
		return nil, fmt.Errorf("profiler application name is required when profiling is enabled")
	}
	types, err := parseProfileTypes(cfg.ProfileTypes)
	if err != nil {
		return nil, err
	}
	configureRuntimeSampling(types, logger)

	tags := map[string]string{}
	if hostname := os.Getenv("HOSTNAME"); hostname != "" {
		tags["hostname"] = hostname
	}
	if podName := os.Getenv("POD_NAME"); podName != "" {
		tags["pod"] = podName
	}

	pyroscopeCfg := pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Logger:          newPyroscopeLogger(logger),
		Tags:            tags,
		ProfileTypes:    types,
	}
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPassword != "" {
		pyroscopeCfg.BasicAuthUser = cfg.BasicAuthUser
		pyroscopeCfg.BasicAuthPassword = cfg.BasicAuthPassword
	}

	profiler, err := pyroscope.Start(pyroscopeCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}
	p.profiler = profiler
	profilingActive.Store(true)

	logger.Info("Pyroscope profiler started",
		zap.String("server_address", cfg.ServerAddress),
		zap.String("application_name", cfg.ApplicationName),
		zap.Int("profile_types", len(types)),
	)
	return p, nil
}

func parseProfileTypes(names []string) ([]pyroscope.ProfileType, error) {
	types := make([]pyroscope.ProfileType, 0, len(names))
	for _, name := range names {
		t, ok := knownProfileTypes[name]
		if !ok {
			return nil, fmt.Errorf("unknown profile type %q", name)
		}
		types = append(types, t)
	}
	return types, nil
}

// configureRuntimeSampling turns on the runtime's mutex and block sampling
// when those profiles were asked for; both are off in a stock runtime.
func configureRuntimeSampling(types []pyroscope.ProfileType, logger *zap.Logger) {
	for _, t := range types {
		switch t {
		case pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration:
			runtime.SetMutexProfileFraction(5)
			logger.Debug("Mutex profiling enabled")
		case pyroscope.ProfileBlockCount, pyroscope.ProfileBlockDuration:
			runtime.SetBlockProfileRate(5)
			logger.Debug("Block profiling enabled")
		}
	}
}

// Stop flushes pending profiles. Safe to call more than once.
func (p *Profiler) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped || p.profiler == nil {
		p.stopped = true
		return nil
	}
	p.stopped = true
	profilingActive.Store(false)

	if err := p.profiler.Stop(); err != nil {
		return fmt.Errorf("failed to stop profiler: %w", err)
	}
	p.logger.Info("Pyroscope profiler stopped")
	return nil
}

// IsEnabled returns whether profiles are being collected.
func (p *Profiler) IsEnabled() bool {
	return p.config.Enabled && p.profiler != nil
}

// pyroscopeLogger adapts zap to pyroscope.Logger.
type pyroscopeLogger struct {
	sugar *zap.SugaredLogger
}

func newPyroscopeLogger(logger *zap.Logger) pyroscope.Logger {
	return &pyroscopeLogger{sugar: logger.Named("pyroscope").Sugar()}
}

func (l *pyroscopeLogger) Infof(format string, args ...any)  { l.sugar.Infof(format, args...) }
func (l *pyroscopeLogger) Debugf(format string, args ...any) { l.sugar.Debugf(format, args...) }
func (l *pyroscopeLogger) Errorf(format string, args ...any) { l.sugar.Errorf(format, args...) }
