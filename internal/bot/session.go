package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/GMOnyx/Commandlessapp-sub004/internal/cache"
	"github.com/GMOnyx/Commandlessapp-sub004/internal/logging"
	"github.com/GMOnyx/Commandlessapp-sub004/internal/metrics"
	"github.com/GMOnyx/Commandlessapp-sub004/internal/models"
	"github.com/GMOnyx/Commandlessapp-sub004/internal/relay"
)

// Forwarder posts an admitted event to the relay for intent decisioning.
// Implemented by relay.Client.
type Forwarder interface {
	ForwardMessage(msg *relay.ForwardedMessage) error
}

type Session struct {
	discord *discordgo.Session
	token   string
	UserID  string
}

var globalSession *Session

// Initialize creates the Discord session. Message content requires the
// privileged intent alongside guilds and messages.
func Initialize(token string) error {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	globalSession = &Session{
		discord: dg,
		token:   token,
	}
	return nil
}

func GetSession() *Session {
	return globalSession
}

func (s *Session) GetDiscord() *discordgo.Session {
	return s.discord
}

// Connect opens the gateway connection and records the bot's own user ID for
// mention matching.
func (s *Session) Connect() error {
	if err := s.discord.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	if s.discord.State.User != nil {
		s.UserID = s.discord.State.User.ID
		logging.Info("Connected as bot user %s", s.UserID)
	}
	return nil
}

func (s *Session) Close() error {
	if s.discord != nil {
		return s.discord.Close()
	}
	return nil
}

// SetupMessageHandler registers the MessageCreate intake path: normalize the
// event, apply the activation trigger policy, run admission against the
// cache, and forward admitted events. The handler itself does no network
// I/O; forwarding runs on its own goroutine.
func (s *Session) SetupMessageHandler(botID string, cc *cache.ConfigCache, forwarder Forwarder) {
	s.discord.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot {
			return
		}

		content := m.Content
		if cfg := cc.Config(); cfg != nil {
			if !MatchesTrigger(cfg, m.Content, isMentioned(m, s.UserID)) {
				return
			}
			content = StripTrigger(cfg, m.Content)
		}

		ctx := models.MessageContext{
			ChannelID: m.ChannelID,
			AuthorID:  m.Author.ID,
			GuildID:   m.GuildID,
		}
		if m.Member != nil {
			ctx.MemberRoles = m.Member.Roles
		}

		verdict := cc.ShouldProcessMessage(ctx)
		if !verdict.Allowed {
			logging.Debug("Message %s denied: %s", m.ID, verdict.Reason)
			return
		}

		fwd := &relay.ForwardedMessage{
			BotID:       botID,
			MessageID:   m.ID,
			ChannelID:   ctx.ChannelID,
			AuthorID:    ctx.AuthorID,
			GuildID:     ctx.GuildID,
			MemberRoles: ctx.MemberRoles,
			Content:     content,
		}

		go func() {
			if err := forwarder.ForwardMessage(fwd); err != nil {
				metrics.GetRegistry().RecordForwardFailed()
				logging.Warn("Failed to forward message %s: %v", fwd.MessageID, err)
				return
			}
			metrics.GetRegistry().RecordForward()
		}()
	})
}

func isMentioned(m *discordgo.MessageCreate, botUserID string) bool {
	if botUserID == "" {
		return false
	}
	for _, user := range m.Mentions {
		if user != nil && user.ID == botUserID {
			return true
		}
	}
	return false
}
