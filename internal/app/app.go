package app

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/five82/droidlog/internal/config"
	"github.com/five82/droidlog/internal/events"
	"github.com/five82/droidlog/internal/highlight"
	"github.com/five82/droidlog/internal/prefs"
	"github.com/five82/droidlog/internal/state"
	"github.com/five82/droidlog/internal/ui"
)

// Options configure a droidlog run.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/droidlog/prefs.toml
	Replay     string // saved logcat output to show instead of a device
	Overrides  Overrides
}

// Overrides are command line values that win over the config file and the
// environment. Nil or empty fields leave the loaded value alone.
type Overrides struct {
	ADBAddr     string
	Serial      string
	Package     *string
	RulesPath   string
	LogLevel    string
	MetricsAddr string
}

func (o Overrides) apply(cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.ADBAddr, o.ADBAddr)
	set(&cfg.Serial, o.Serial)
	if o.RulesPath != "" {
		cfg.RulesPath = o.RulesPath
		if path, err := config.ExpandPath(o.RulesPath); err == nil {
			cfg.RulesPath = path
		}
	}
	set(&cfg.LogLevel, o.LogLevel)
	set(&cfg.MetricsAddr, o.MetricsAddr)
	if o.Package != nil {
		cfg.Package = *o.Package
	}
}

// Run boots the droidlog TUI until the user quits or the context is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	s, err := newSession(ctx, opts, true)
	if err != nil {
		return err
	}
	defer s.close()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		s.logger.Warn("load preferences failed", zap.Error(err))
	}

	registry, err := highlight.LoadRules(s.cfg.RulesPath)
	if err != nil {
		return fmt.Errorf("load highlight rules: %w", err)
	}

	var dirty atomic.Bool
	cache := highlight.NewCache(registry, highlight.CacheOptions{
		Workers: s.cfg.HighlightWorkers,
		Notify:  func(string) { dirty.Store(true) },
		Metrics: s.metrics,
	})
	defer cache.Wait()

	store := state.NewStore(s.id, s.cfg.Package, state.DefaultHistory)
	if opts.Replay != "" {
		if err := replayInto(store, opts.Replay, s.cfg.Package); err != nil {
			return err
		}
	} else {
		reader, err := s.start(ctx)
		if err != nil {
			return err
		}
		defer func() {
			reader.Stop()
			reader.Wait()
		}()
		go Consume(reader.Events(), store, s.logger)
	}

	return ui.Run(ui.Options{
		Context:   ctx,
		Store:     store,
		Registry:  registry,
		Cache:     cache,
		Dirty:     &dirty,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		Logger:    s.logger,
	})
}

// Tail streams records to w as colored text until the context is cancelled
// or the capture fails. A transport failure is returned as the error.
func Tail(ctx context.Context, opts Options, w io.Writer) error {
	s, err := newSession(ctx, opts, false)
	if err != nil {
		return err
	}
	defer s.close()

	registry, err := highlight.LoadRules(s.cfg.RulesPath)
	if err != nil {
		return fmt.Errorf("load highlight rules: %w", err)
	}
	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		s.logger.Warn("load preferences failed", zap.Error(err))
	}
	p := newPrinter(w, lipgloss.NewRenderer(w), ui.GetTheme(userPrefs.Theme), registry)

	if opts.Replay != "" {
		evts, err := Replay(opts.Replay, s.cfg.Package)
		if err != nil {
			return err
		}
		for _, evt := range evts {
			if err := p.print(evt); err != nil {
				return err
			}
		}
		return nil
	}

	reader, err := s.start(ctx)
	if err != nil {
		return err
	}
	defer func() {
		reader.Stop()
		reader.Wait()
	}()
	for evt := range reader.Events() {
		logEvent(s.logger, evt)
		if err := p.print(evt); err != nil {
			return err
		}
		if f, ok := evt.(events.Failed); ok {
			return f
		}
	}
	return nil
}
