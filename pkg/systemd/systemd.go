// Package systemd reports service state to the service manager through
// sd_notify. Every call is a no-op when NOTIFY_SOCKET is not set.
package systemd

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// Notify sends raw state lines. sent is false when not running under systemd.
func Notify(state string) (sent bool, err error) {
	return daemon.SdNotify(false, state)
}

func Ready(status string) (bool, error) {
	return Notify(daemon.SdNotifyReady + "\nSTATUS=" + status)
}

func Reloading() (bool, error) { return Notify(daemon.SdNotifyReloading) }

func Stopping() (bool, error) { return Notify(daemon.SdNotifyStopping) }

// Watchdog pings the watchdog at half the configured WatchdogSec until ctx
// ends. It returns immediately when the watchdog is not enabled.
func Watchdog(ctx context.Context) error {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval <= 0 {
		return err
	}
	t := time.NewTicker(interval / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if _, err := Notify(daemon.SdNotifyWatchdog); err != nil {
				return err
			}
		}
	}
}
