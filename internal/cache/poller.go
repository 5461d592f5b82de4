package cache

import (
	"time"

	"github.com/GMOnyx/Commandlessapp-sub004/internal/logging"
)

// StartPolling arms the recurring config refresh. An already-armed timer is
// cancelled first, so repeated calls re-arm rather than double-schedule.
func (c *ConfigCache) StartPolling(interval time.Duration) {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()

	if c.pollStop != nil {
		close(c.pollStop)
	}
	stop := make(chan struct{})
	c.pollStop = stop

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Fetch()
			case <-stop:
				return
			}
		}
	}()

	logging.Info("Config polling started for bot %s (every %s)", c.botID, interval)
}

// StopPolling cancels the refresh timer. Safe to call with no timer armed,
// and idempotent under repeated calls.
func (c *ConfigCache) StopPolling() {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()

	if c.pollStop != nil {
		close(c.pollStop)
		c.pollStop = nil
	}
}

// StartJanitor arms the recurring eviction of expired rate-limit windows,
// independent of the polling timer.
func (c *ConfigCache) StartJanitor(interval time.Duration) {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()

	if c.janitorStop != nil {
		close(c.janitorStop)
	}
	stop := make(chan struct{})
	c.janitorStop = stop

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.CleanupRateLimits()
			case <-stop:
				return
			}
		}
	}()
}

// StopJanitor cancels the janitor timer, with the same idempotence as
// StopPolling.
func (c *ConfigCache) StopJanitor() {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()

	if c.janitorStop != nil {
		close(c.janitorStop)
		c.janitorStop = nil
	}
}
