package ticket

import "context"

// ChannelRef identifies one channel in the external platform's listing.
type ChannelRef struct {
	ID   string
	Name string
}

// OverwriteTarget distinguishes member and role permission overwrites.
type OverwriteTarget string

const (
	TargetMember OverwriteTarget = "member"
	TargetRole   OverwriteTarget = "role"
)

// Overwrite grants a member or role visibility and posting rights on a ticket
// channel. The platform implementation supplies the default-audience deny and
// the bot's own allow.
type Overwrite struct {
	TargetID string
	Target   OverwriteTarget
}

// CreateChannelParams describes the channel to create under the category.
type CreateChannelParams struct {
	Name       string
	CategoryID string
	Overwrites []Overwrite
	Reason     string
}

// NoticeField is one embed field of a notice.
type NoticeField struct {
	Name   string
	Value  string
	Inline bool
}

// Notice is a platform-neutral rich message posted into a ticket channel.
// CloseButton asks the platform to attach its close-ticket action.
type Notice struct {
	Title       string
	Description string
	Color       int
	Fields      []NoticeField
	Footer      string
	CloseButton bool
}

// Platform is the subset of the chat platform the lifecycle controller needs.
// Implemented by the discordgo client; faked in tests.
type Platform interface {
	CategoryExists(ctx context.Context, categoryID string) (bool, error)
	ListChannels(ctx context.Context, categoryID string) ([]ChannelRef, error)
	CreateChannel(ctx context.Context, params CreateChannelParams) (ChannelRef, error)
	SendMessage(ctx context.Context, channelID, content string) (string, error)
	SendNotice(ctx context.Context, channelID string, notice Notice) (string, error)
	PinMessage(ctx context.Context, channelID, messageID string) error
	DeleteChannel(ctx context.Context, channelID, reason string) error
	ResolveMember(ctx context.Context, handle, displayName string) (string, bool)
}
