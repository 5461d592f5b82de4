package bot

import (
	"strings"

	"github.com/GMOnyx/Commandlessapp-sub004/internal/botconfig"
)

// MatchesTrigger applies the activation trigger policy from the config: a
// message must carry the expected trigger (bot mention, custom prefix, or
// either) before it is worth running admission at all. The cache surfaces
// these fields; enforcing them belongs to the platform adapter.
func MatchesTrigger(cfg *botconfig.BotConfig, content string, mentioned bool) bool {
	hasPrefix := cfg.CustomPrefix != "" &&
		strings.HasPrefix(strings.TrimSpace(content), cfg.CustomPrefix)

	switch cfg.TriggerMode {
	case botconfig.TriggerModeMention:
		return mentioned
	case botconfig.TriggerModePrefix:
		return hasPrefix
	case botconfig.TriggerModeBoth:
		return mentioned || hasPrefix
	}

	if cfg.MentionRequired {
		return mentioned
	}
	return true
}

// StripTrigger removes the custom prefix from a triggering message so the
// relay sees the bare utterance.
func StripTrigger(cfg *botconfig.BotConfig, content string) string {
	trimmed := strings.TrimSpace(content)
	if cfg.CustomPrefix != "" && strings.HasPrefix(trimmed, cfg.CustomPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(trimmed, cfg.CustomPrefix))
	}
	return trimmed
}
