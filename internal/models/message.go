package models

// MessageContext is the normalized shape every platform adapter hands to the
// admission pipeline. GuildID and MemberRoles are empty for direct messages.
type MessageContext struct {
	ChannelID   string
	AuthorID    string
	GuildID     string
	MemberRoles []string
}

// Verdict is the admission decision for a single inbound message. Reason is
// set only when the message is denied.
type Verdict struct {
	Allowed bool
	Reason  string
}

func Allow() Verdict {
	return Verdict{Allowed: true}
}

func Deny(reason string) Verdict {
	return Verdict{Allowed: false, Reason: reason}
}
