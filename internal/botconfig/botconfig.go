package botconfig

// Channel admission modes.
const (
	ChannelModeAll       = "all"
	ChannelModeWhitelist = "whitelist"
	ChannelModeBlacklist = "blacklist"
)

// Permission modes.
const (
	PermissionModeAll         = "all"
	PermissionModeWhitelist   = "whitelist"
	PermissionModeBlacklist   = "blacklist"
	PermissionModePremiumOnly = "premium_only"
)

// Trigger modes consumed by the platform adapter.
const (
	TriggerModeMention = "mention"
	TriggerModePrefix  = "prefix"
	TriggerModeBoth    = "both"
)

// BotConfig is the versioned policy snapshot served by the relay. It is
// immutable once fetched: the cache replaces the whole struct on refresh and
// never mutates fields in place. Field names mirror the relay's camelCase
// wire format exactly.
type BotConfig struct {
	Version int64 `json:"version"`
	Enabled bool  `json:"enabled"`

	ChannelMode      string   `json:"channelMode"`
	EnabledChannels  []string `json:"enabledChannels"`
	DisabledChannels []string `json:"disabledChannels"`

	PermissionMode string   `json:"permissionMode"`
	EnabledRoles   []string `json:"enabledRoles"`
	DisabledRoles  []string `json:"disabledRoles"`
	EnabledUsers   []string `json:"enabledUsers"`
	DisabledUsers  []string `json:"disabledUsers"`
	PremiumRoleIDs []string `json:"premiumRoleIds"`
	PremiumUserIDs []string `json:"premiumUserIds"`

	// Command filtering is declared here but enforced by the relay backend;
	// the cache only carries the data through.
	CommandMode              string   `json:"commandMode"`
	EnabledCommandCategories []string `json:"enabledCommandCategories"`
	DisabledCommands         []string `json:"disabledCommands"`

	// Activation trigger policy, consumed by the platform adapter.
	MentionRequired bool   `json:"mentionRequired"`
	CustomPrefix    string `json:"customPrefix"`
	TriggerMode     string `json:"triggerMode"`

	// Hourly rate-limit ceilings.
	FreeRateLimit    int `json:"freeRateLimit"`
	PremiumRateLimit int `json:"premiumRateLimit"`
	ServerRateLimit  int `json:"serverRateLimit"`

	// Downstream decisioning hints, passed through unmodified.
	ConfidenceThreshold float64  `json:"confidenceThreshold"`
	RequireConfirmation bool     `json:"requireConfirmation"`
	DangerousCommands   []string `json:"dangerousCommands"`
	ResponseStyle       string   `json:"responseStyle"`
}
