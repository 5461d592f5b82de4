package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GMOnyx/Commandlessapp-sub004/internal/bot"
	"github.com/GMOnyx/Commandlessapp-sub004/internal/cache"
	"github.com/GMOnyx/Commandlessapp-sub004/internal/config"
	"github.com/GMOnyx/Commandlessapp-sub004/internal/logging"
	"github.com/GMOnyx/Commandlessapp-sub004/internal/metrics"
	"github.com/GMOnyx/Commandlessapp-sub004/internal/relay"
	"github.com/GMOnyx/Commandlessapp-sub004/internal/store"
)

func main() {
	fmt.Println("Starting Commandless relay client")

	cfg := config.LoadOrDefault("config.json")
	if cfg.Bot.Token == "" || cfg.Bot.BotID == "" || cfg.Relay.APIKey == "" {
		fmt.Println("Missing bot token, bot id, or API key (config.json or DISCORD_TOKEN / COMMANDLESS_BOT_ID / COMMANDLESS_API_KEY)")
		os.Exit(1)
	}

	if err := initializeLogging(cfg); err != nil {
		panic(err)
	}

	persisting := cfg.Storage.PersistWindows
	if persisting {
		if err := store.Initialize(cfg.Storage.Path); err != nil {
			logging.Warn("Window store unavailable, continuing in-memory only: %v", err)
			persisting = false
		}
	}

	pool := relay.NewHTTPPool(cfg.Network.HTTPPoolSize)
	client := relay.NewClient(
		cfg.Relay.BaseURL,
		cfg.Relay.APIKey,
		cfg.Relay.SigningSecret,
		pool,
		time.Duration(cfg.Network.RequestTimeoutMs)*time.Millisecond,
	)

	configCache := cache.New(cfg.Bot.BotID, client)
	configCache.SetFailClosed(cfg.Relay.FailClosed)

	if persisting {
		restoreWindows(configCache)
	}

	// Initial fetch before the gateway opens, so the bootstrap fail-open
	// window stays as short as the first round trip.
	if configCache.Fetch() == nil {
		logging.Warn("Initial config fetch failed, starting without a snapshot")
	}

	configCache.StartPolling(time.Duration(cfg.Relay.PollIntervalMs) * time.Millisecond)
	configCache.StartJanitor(time.Duration(cfg.Relay.CleanupIntervalMs) * time.Millisecond)

	if err := initializeBot(cfg, configCache, client); err != nil {
		panic(err)
	}

	stopStatus := startStatusReporter(5 * time.Minute)

	logging.Info("Commandless relay client running for bot %s", cfg.Bot.BotID)

	waitForShutdown()

	close(stopStatus)
	configCache.StopPolling()
	configCache.StopJanitor()

	if persisting {
		saveWindows(configCache)
		store.Close()
	}

	bot.GetSession().Close()
	logging.Info("Shutdown complete")
	logging.CloseGlobal()
}

func initializeLogging(cfg *config.Config) error {
	level := logging.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	return logging.InitGlobalLogger(level, cfg.Logging.Path, cfg.Logging.EchoStderr)
}

func initializeBot(cfg *config.Config, configCache *cache.ConfigCache, client *relay.Client) error {
	if err := bot.Initialize(cfg.Bot.Token); err != nil {
		return err
	}

	session := bot.GetSession()

	// Handlers are registered before the gateway opens.
	session.SetupMessageHandler(cfg.Bot.BotID, configCache, client)

	return session.Connect()
}

func restoreWindows(configCache *cache.ConfigCache) {
	s := store.Get()
	if users, err := s.LoadWindows(store.NamespaceUser); err != nil {
		logging.Warn("Failed to restore user windows: %v", err)
	} else {
		for key, w := range users {
			configCache.UserWindows().Restore(key, w.Count, w.ResetAt)
		}
	}
	if servers, err := s.LoadWindows(store.NamespaceServer); err != nil {
		logging.Warn("Failed to restore server windows: %v", err)
	} else {
		for key, w := range servers {
			configCache.ServerWindows().Restore(key, w.Count, w.ResetAt)
		}
	}
}

func saveWindows(configCache *cache.ConfigCache) {
	s := store.Get()
	if err := s.SaveWindows(store.NamespaceUser, configCache.UserWindows().Snapshot()); err != nil {
		logging.Warn("Failed to persist user windows: %v", err)
	}
	if err := s.SaveWindows(store.NamespaceServer, configCache.ServerWindows().Snapshot()); err != nil {
		logging.Warn("Failed to persist server windows: %v", err)
	}
	if _, err := s.PurgeExpired(time.Now()); err != nil {
		logging.Warn("Failed to purge expired windows: %v", err)
	}
}

func startStatusReporter(interval time.Duration) chan struct{} {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				logging.Info("Status:\n%s%s",
					metrics.GetRegistry().Export(),
					metrics.CollectHealth(int32(os.Getpid())))
			case <-stop:
				return
			}
		}
	}()
	return stop
}

func waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	fmt.Println("\nShutdown signal received")
}
