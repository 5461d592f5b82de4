package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GMOnyx/Commandlessapp-sub004/internal/botconfig"
)

func TestMatchesTriggerMentionMode(t *testing.T) {
	cfg := &botconfig.BotConfig{TriggerMode: botconfig.TriggerModeMention}

	assert.True(t, MatchesTrigger(cfg, "hello bot", true))
	assert.False(t, MatchesTrigger(cfg, "hello bot", false))
}

func TestMatchesTriggerPrefixMode(t *testing.T) {
	cfg := &botconfig.BotConfig{
		TriggerMode:  botconfig.TriggerModePrefix,
		CustomPrefix: "!c",
	}

	assert.True(t, MatchesTrigger(cfg, "!c ban him", false))
	assert.True(t, MatchesTrigger(cfg, "  !c ban him", false))
	assert.False(t, MatchesTrigger(cfg, "ban him", false))
	// A mention does not satisfy prefix mode.
	assert.False(t, MatchesTrigger(cfg, "ban him", true))
}

func TestMatchesTriggerBothMode(t *testing.T) {
	cfg := &botconfig.BotConfig{
		TriggerMode:  botconfig.TriggerModeBoth,
		CustomPrefix: "!c",
	}

	assert.True(t, MatchesTrigger(cfg, "!c ban him", false))
	assert.True(t, MatchesTrigger(cfg, "ban him", true))
	assert.False(t, MatchesTrigger(cfg, "ban him", false))
}

func TestMatchesTriggerMentionRequiredFallback(t *testing.T) {
	cfg := &botconfig.BotConfig{MentionRequired: true}

	assert.True(t, MatchesTrigger(cfg, "anything", true))
	assert.False(t, MatchesTrigger(cfg, "anything", false))
}

func TestMatchesTriggerNoPolicyProcessesEverything(t *testing.T) {
	cfg := &botconfig.BotConfig{}
	assert.True(t, MatchesTrigger(cfg, "anything", false))
}

func TestStripTrigger(t *testing.T) {
	cfg := &botconfig.BotConfig{CustomPrefix: "!c"}

	assert.Equal(t, "ban him", StripTrigger(cfg, "!c ban him"))
	assert.Equal(t, "ban him", StripTrigger(cfg, "  !c   ban him  "))
	assert.Equal(t, "ban him", StripTrigger(cfg, "ban him"))

	noPrefix := &botconfig.BotConfig{}
	assert.Equal(t, "ban him", StripTrigger(noPrefix, " ban him "))
}
