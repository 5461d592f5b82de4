package policy

import (
	"github.com/GMOnyx/Commandlessapp-sub004/internal/botconfig"
	"github.com/GMOnyx/Commandlessapp-sub004/internal/models"
	"github.com/GMOnyx/Commandlessapp-sub004/pkg/util"
)

// CheckChannel evaluates the channel admission policy for one message.
func CheckChannel(cfg *botconfig.BotConfig, channelID string) models.Verdict {
	switch cfg.ChannelMode {
	case botconfig.ChannelModeWhitelist:
		if !util.ContainsID(cfg.EnabledChannels, channelID) {
			return models.Deny("Channel not whitelisted")
		}
	case botconfig.ChannelModeBlacklist:
		if util.ContainsID(cfg.DisabledChannels, channelID) {
			return models.Deny("Channel blacklisted")
		}
	}
	return models.Allow()
}

// CheckPermissions evaluates the user/role admission policy. An explicit user
// blacklist entry denies regardless of the configured mode.
func CheckPermissions(cfg *botconfig.BotConfig, ctx models.MessageContext) models.Verdict {
	if util.ContainsID(cfg.DisabledUsers, ctx.AuthorID) {
		return models.Deny("User blacklisted")
	}

	switch cfg.PermissionMode {
	case botconfig.PermissionModePremiumOnly:
		if !IsPremium(cfg, ctx.AuthorID, ctx.MemberRoles) {
			return models.Deny("Premium members only")
		}
	case botconfig.PermissionModeWhitelist:
		if !util.IntersectsIDs(ctx.MemberRoles, cfg.EnabledRoles) &&
			!util.ContainsID(cfg.EnabledUsers, ctx.AuthorID) {
			return models.Deny("User not whitelisted")
		}
	case botconfig.PermissionModeBlacklist:
		if util.IntersectsIDs(ctx.MemberRoles, cfg.DisabledRoles) {
			return models.Deny("Role blacklisted")
		}
	}
	return models.Allow()
}

// IsPremium reports whether the subject qualifies for premium treatment,
// either through a premium role or an explicit premium user entry. IDs are
// normalized before comparison because the dashboard and the gateway do not
// agree on numeric vs string snowflake representations.
func IsPremium(cfg *botconfig.BotConfig, userID string, memberRoles []string) bool {
	if util.IntersectsIDs(memberRoles, cfg.PremiumRoleIDs) {
		return true
	}
	return util.ContainsID(cfg.PremiumUserIDs, userID)
}
