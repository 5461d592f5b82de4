package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/GMOnyx/Commandlessapp-sub004/internal/botconfig"
	"github.com/GMOnyx/Commandlessapp-sub004/internal/logging"
	"github.com/GMOnyx/Commandlessapp-sub004/internal/metrics"
	"github.com/GMOnyx/Commandlessapp-sub004/internal/models"
	"github.com/GMOnyx/Commandlessapp-sub004/internal/policy"
	"github.com/GMOnyx/Commandlessapp-sub004/internal/ratelimit"
)

const (
	userKeyPrefix   = "user:"
	serverKeyPrefix = "server:"

	// Rate-limit ceilings are per hour; each window runs a fixed hour from
	// its first hit.
	windowPeriod = time.Hour
)

// Fetcher retrieves the bot's config from the authoritative relay. version is
// the locally held snapshot version (0 when none); the second return is true
// when the relay reports the local snapshot is already current.
type Fetcher interface {
	FetchConfig(botID string, version int64) (*botconfig.BotConfig, bool, error)
}

// ConfigCache owns the latest BotConfig snapshot for one bot plus the local
// rate-limit windows, and answers admission queries against them. One cache
// per bot connection; nothing is shared across bots or processes.
type ConfigCache struct {
	botID   string
	fetcher Fetcher

	mu  sync.RWMutex
	cfg *botconfig.BotConfig

	userWindows   *ratelimit.Table
	serverWindows *ratelimit.Table

	// premiumCorrected guards the one-shot refetch for the stale
	// empty-premium-list anomaly. Set on the first attempt, success or not.
	premiumCorrected bool

	// failClosed flips the no-config-yet default from allow to deny.
	failClosed bool

	pollMu      sync.Mutex
	pollStop    chan struct{}
	janitorStop chan struct{}
}

func New(botID string, fetcher Fetcher) *ConfigCache {
	return &ConfigCache{
		botID:         botID,
		fetcher:       fetcher,
		userWindows:   ratelimit.NewTable(windowPeriod),
		serverWindows: ratelimit.NewTable(windowPeriod),
	}
}

// SetFailClosed selects the bootstrap policy applied before the first
// successful fetch.
func (c *ConfigCache) SetFailClosed(failClosed bool) {
	c.mu.Lock()
	c.failClosed = failClosed
	c.mu.Unlock()
}

// Config returns the current snapshot, or nil before the first successful
// fetch.
func (c *ConfigCache) Config() *botconfig.BotConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

func (c *ConfigCache) setConfig(cfg *botconfig.BotConfig) {
	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()
}

// Fetch refreshes the snapshot from the relay. The held version is sent so
// the relay can answer "up to date", in which case the existing snapshot is
// kept untouched and in-flight rate-limit windows survive. Any transport or
// decode failure returns nil and preserves the last-known-good snapshot.
//
// Overlapping fetches are not deduplicated: if a timer tick and a forced
// refetch race, both complete and the last writer wins. Config writes are
// idempotent and infrequent, so this is deliberately left unlocked.
func (c *ConfigCache) Fetch() *botconfig.BotConfig {
	c.mu.RLock()
	var version int64
	if c.cfg != nil {
		version = c.cfg.Version
	}
	c.mu.RUnlock()

	fetched, upToDate, err := c.fetcher.FetchConfig(c.botID, version)
	if err != nil {
		metrics.GetRegistry().RecordFetchFailure()
		logging.Warn("Config fetch failed for bot %s, keeping last-known-good: %v", c.botID, err)
		return nil
	}

	if upToDate {
		metrics.GetRegistry().RecordFetchUpToDate()
		return c.Config()
	}

	c.setConfig(fetched)
	metrics.GetRegistry().RecordFetchSuccess()
	logging.Info("Config v%d loaded for bot %s", fetched.Version, c.botID)

	c.correctEmptyPremiumList(fetched)

	return c.Config()
}

// correctEmptyPremiumList guards against the relay serving a stale cached
// response: a premium_only config with no premium users would lock everyone
// out, so the first time that shape lands the cache forces one unconditional
// refetch (version 0 bypasses the up-to-date short-circuit). Fires at most
// once per cache lifetime.
func (c *ConfigCache) correctEmptyPremiumList(cfg *botconfig.BotConfig) {
	if cfg.PermissionMode != botconfig.PermissionModePremiumOnly || len(cfg.PremiumUserIDs) > 0 {
		return
	}

	c.mu.Lock()
	if c.premiumCorrected {
		c.mu.Unlock()
		return
	}
	c.premiumCorrected = true
	c.mu.Unlock()

	logging.Warn("Bot %s: premium_only config with empty premium list, forcing refetch", c.botID)

	refetched, upToDate, err := c.fetcher.FetchConfig(c.botID, 0)
	if err != nil {
		metrics.GetRegistry().RecordFetchFailure()
		logging.Warn("Forced refetch failed for bot %s: %v", c.botID, err)
		return
	}
	if upToDate || refetched == nil {
		return
	}

	c.setConfig(refetched)
	metrics.GetRegistry().RecordFetchSuccess()
}

// ShouldProcessMessage runs the admission pipeline for one inbound message.
// Checks short-circuit in a fixed order: master switch, channel policy,
// permission policy, user rate limit, then server rate limit. The call does
// no I/O and never blocks beyond map locks.
func (c *ConfigCache) ShouldProcessMessage(ctx models.MessageContext) models.Verdict {
	verdict := c.admit(ctx)
	metrics.GetRegistry().RecordAdmission(verdict.Allowed)
	return verdict
}

func (c *ConfigCache) admit(ctx models.MessageContext) models.Verdict {
	cfg := c.Config()
	if cfg == nil {
		// Bootstrap window before the first successful fetch.
		if c.failClosed {
			return models.Deny("Configuration unavailable")
		}
		return models.Allow()
	}

	if !cfg.Enabled {
		return models.Deny("Bot disabled")
	}

	if v := policy.CheckChannel(cfg, ctx.ChannelID); !v.Allowed {
		return v
	}

	if v := policy.CheckPermissions(cfg, ctx); !v.Allowed {
		return v
	}

	limit := cfg.FreeRateLimit
	if policy.IsPremium(cfg, ctx.AuthorID, ctx.MemberRoles) {
		limit = cfg.PremiumRateLimit
	}
	if !c.userWindows.Hit(userKeyPrefix+ctx.AuthorID, limit) {
		return models.Deny(fmt.Sprintf("Rate limit (%d/hr)", limit))
	}

	if ctx.GuildID != "" {
		if !c.serverWindows.Hit(serverKeyPrefix+ctx.GuildID, cfg.ServerRateLimit) {
			return models.Deny(fmt.Sprintf("Rate limit (%d/hr)", cfg.ServerRateLimit))
		}
	}

	return models.Allow()
}

// CleanupRateLimits evicts expired windows from both namespaces. Active
// windows are untouched.
func (c *ConfigCache) CleanupRateLimits() int {
	evicted := c.userWindows.Cleanup() + c.serverWindows.Cleanup()
	metrics.GetRegistry().RecordEvictions(evicted)
	if evicted > 0 {
		logging.Debug("Evicted %d expired rate-limit windows for bot %s", evicted, c.botID)
	}
	return evicted
}

// UserWindows exposes the per-user window table, for persistence and tests.
func (c *ConfigCache) UserWindows() *ratelimit.Table {
	return c.userWindows
}

// ServerWindows exposes the per-guild window table.
func (c *ConfigCache) ServerWindows() *ratelimit.Table {
	return c.serverWindows
}

// SetNowFunc overrides the clock on both window tables.
func (c *ConfigCache) SetNowFunc(now func() time.Time) {
	c.userWindows.SetNowFunc(now)
	c.serverWindows.SetNowFunc(now)
}
