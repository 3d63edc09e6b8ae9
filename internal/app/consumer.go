package app

import (
	"go.uber.org/zap"

	"github.com/five82/droidlog/internal/events"
	"github.com/five82/droidlog/internal/state"
)

// Consume applies every event from evts to store until the channel closes.
// Run it on its own goroutine; the UI reads the store on its own tick.
func Consume(evts <-chan events.Event, store *state.Store, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for evt := range evts {
		logEvent(logger, evt)
		store.Apply(evt)
	}
}

// logEvent records lifecycle changes and failures. Records are not logged.
func logEvent(logger *zap.Logger, evt events.Event) {
	switch e := evt.(type) {
	case events.AppStarted:
		logger.Info("app started")
	case events.AppEnded:
		logger.Info("app ended")
	case events.ProcessStarted:
		logger.Debug("process started", zap.String("pid", e.PID), zap.String("target", e.Target))
	case events.ProcessEnded:
		logger.Debug("process ended", zap.String("pid", e.PID))
	case events.Failed:
		logger.Error("capture failed", zap.String("reason", e.Brief), zap.String("detail", e.Verbose))
	}
}
