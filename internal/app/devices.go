package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/five82/droidlog/internal/adb"
)

const preflightTimeout = 3 * time.Second

// Devices lists the devices the configured adb server reports.
func Devices(ctx context.Context, opts Options) ([]adb.Device, error) {
	client, err := newClient(opts)
	if err != nil {
		return nil, err
	}
	devices, err := client.Devices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return devices, nil
}

// ServerVersion returns the configured adb server's protocol version.
func ServerVersion(ctx context.Context, opts Options) (int, error) {
	client, err := newClient(opts)
	if err != nil {
		return 0, err
	}
	return client.Version(ctx)
}

func newClient(opts Options) (*adb.Client, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	client, err := adb.NewClient(cfg.ADBAddr, cfg.Serial, nil)
	if err != nil {
		return nil, fmt.Errorf("init adb client: %w", err)
	}
	return client, nil
}

// checkDevice fails early when the server answers but the wanted device is
// missing or not usable. An unreachable server is left to the reader, which
// reports it as a capture failure.
func checkDevice(ctx context.Context, client *adb.Client, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, preflightTimeout)
	defer cancel()

	devices, err := client.Devices(ctx)
	if err != nil {
		if adb.IsFail(err) {
			return fmt.Errorf("list devices: %w", err)
		}
		logger.Warn("device check skipped", zap.Error(err))
		return nil
	}
	return pickDevice(devices, client.Serial())
}

// pickDevice explains why the capture cannot target serial (or the only
// device, when serial is empty).
func pickDevice(devices []adb.Device, serial string) error {
	var target *adb.Device
	switch {
	case serial != "":
		for i := range devices {
			if devices[i].Serial == serial {
				target = &devices[i]
			}
		}
		if target == nil {
			return fmt.Errorf("device %s is not attached", serial)
		}
	case len(devices) == 0:
		return fmt.Errorf("no device attached")
	case len(devices) > 1:
		serials := make([]string, len(devices))
		for i, d := range devices {
			serials[i] = d.Serial
		}
		return fmt.Errorf("%d devices attached (%s); choose one with --serial", len(devices), strings.Join(serials, ", "))
	default:
		target = &devices[0]
	}

	switch target.State {
	case "device":
		return nil
	case "unauthorized":
		return fmt.Errorf("device %s is unauthorized; accept the debugging prompt on the device", target.Serial)
	default:
		return fmt.Errorf("device %s is %s", target.Serial, target.State)
	}
}
