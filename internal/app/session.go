package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/five82/droidlog/internal/adb"
	"github.com/five82/droidlog/internal/config"
	"github.com/five82/droidlog/internal/logging"
	"github.com/five82/droidlog/internal/metrics"
	"github.com/five82/droidlog/internal/stream"
)

// session carries everything one run shares between its components.
type session struct {
	id      string
	cfg     config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	cancel  context.CancelFunc
}

// newSession loads configuration and builds the logger and metrics. The TUI
// owns the terminal, so logToFile sends logs to the configured file instead
// of stderr.
func newSession(ctx context.Context, opts Options, logToFile bool) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logCfg := logging.Config{Level: cfg.LogLevel}
	if logToFile {
		logCfg.File = cfg.LogFile
	} else {
		logCfg.Development = true
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	id := uuid.NewString()
	logger = logger.With(zap.String("session", id))

	s := &session{
		id:      id,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
		cancel:  func() {},
	}
	if cfg.MetricsAddr != "" {
		mctx, cancel := context.WithCancel(ctx)
		s.cancel = cancel
		go func() {
			if err := s.metrics.Serve(mctx, cfg.MetricsAddr, logger); err != nil {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}
	logger.Info("session started",
		zap.String("adb_addr", cfg.ADBAddr),
		zap.String("serial", cfg.Serial),
		zap.String("package", cfg.Package),
	)
	return s, nil
}

// loadConfig resolves the file, environment and flag layers.
func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	opts.Overrides.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// start checks the target device and connects a Reader to it.
func (s *session) start(ctx context.Context) (*stream.Reader, error) {
	client, err := adb.NewClient(s.cfg.ADBAddr, s.cfg.Serial, s.logger)
	if err != nil {
		return nil, fmt.Errorf("init adb client: %w", err)
	}
	if err := checkDevice(ctx, client, s.logger); err != nil {
		return nil, err
	}
	reader := stream.NewReader(client, stream.Options{
		Package:      s.cfg.Package,
		IdleInterval: s.cfg.IdleInterval,
		MaxFragment:  s.cfg.MaxFragmentBytes,
		Seeder:       client,
		Logger:       s.logger,
		Metrics:      s.metrics,
	})
	if err := reader.Start(ctx); err != nil {
		return nil, fmt.Errorf("start capture: %w", err)
	}
	return reader, nil
}

func (s *session) close() {
	s.cancel()
	s.logger.Info("session ended")
	_ = s.logger.Sync()
}
