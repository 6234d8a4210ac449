package discord

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/spec-kit/ticket-bot/internal/ticket"
)

// Client implements ticket.Platform on top of a discordgo session. All calls
// are single-shot REST requests scoped to one guild.
type Client struct {
	session *discordgo.Session
	guildID string
}

// NewClient wraps the session for ticket channel operations.
func NewClient(session *discordgo.Session, guildID string) *Client {
	return &Client{session: session, guildID: guildID}
}

// CategoryExists checks that the configured parent category is present.
func (c *Client) CategoryExists(ctx context.Context, categoryID string) (bool, error) {
	channels, err := c.session.GuildChannels(c.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return false, err
	}
	for _, channel := range channels {
		if channel.ID == categoryID && channel.Type == discordgo.ChannelTypeGuildCategory {
			return true, nil
		}
	}
	return false, nil
}

// ListChannels returns the text channels under the category. Order is
// whatever the API returns; callers must not rely on it.
func (c *Client) ListChannels(ctx context.Context, categoryID string) ([]ticket.ChannelRef, error) {
	channels, err := c.session.GuildChannels(c.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	refs := make([]ticket.ChannelRef, 0, len(channels))
	for _, channel := range channels {
		if channel.ParentID == categoryID && channel.Type == discordgo.ChannelTypeGuildText {
			refs = append(refs, ticket.ChannelRef{ID: channel.ID, Name: channel.Name})
		}
	}
	return refs, nil
}

// CreateChannel creates a text channel under the category. The default
// audience is always denied and the bot itself always allowed; the params
// carry the owner, allowed users and allowed roles.
func (c *Client) CreateChannel(ctx context.Context, params ticket.CreateChannelParams) (ticket.ChannelRef, error) {
	allow := int64(discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory)

	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:   c.guildID, // @everyone carries the guild ID
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    c.session.State.User.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: allow,
		},
	}
	for _, ow := range params.Overwrites {
		kind := discordgo.PermissionOverwriteTypeMember
		if ow.Target == ticket.TargetRole {
			kind = discordgo.PermissionOverwriteTypeRole
		}
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    ow.TargetID,
			Type:  kind,
			Allow: allow,
		})
	}

	channel, err := c.session.GuildChannelCreateComplex(c.guildID, discordgo.GuildChannelCreateData{
		Name:                 params.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             params.CategoryID,
		PermissionOverwrites: overwrites,
	}, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(params.Reason))
	if err != nil {
		return ticket.ChannelRef{}, err
	}
	return ticket.ChannelRef{ID: channel.ID, Name: channel.Name}, nil
}

// SendMessage posts a plain message and returns its ID.
func (c *Client) SendMessage(ctx context.Context, channelID, content string) (string, error) {
	message, err := c.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return message.ID, nil
}

// SendNotice renders a ticket notice as an embed with the close button row.
func (c *Client) SendNotice(ctx context.Context, channelID string, notice ticket.Notice) (string, error) {
	send := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{noticeEmbed(notice)},
	}
	if notice.CloseButton {
		send.Components = []discordgo.MessageComponent{closeButtonRow()}
	}
	message, err := c.session.ChannelMessageSendComplex(channelID, send, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return message.ID, nil
}

// PinMessage pins a message in the ticket channel.
func (c *Client) PinMessage(ctx context.Context, channelID, messageID string) error {
	return c.session.ChannelMessagePin(channelID, messageID, discordgo.WithContext(ctx))
}

// DeleteChannel removes the ticket channel; the reason lands in the audit log.
func (c *Client) DeleteChannel(ctx context.Context, channelID, reason string) error {
	_, err := c.session.ChannelDelete(channelID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	return err
}

// ResolveMember finds the guild member matching a storefront handle or
// display name, so the buyer can be granted access to their ticket.
func (c *Client) ResolveMember(ctx context.Context, handle, displayName string) (string, bool) {
	query := displayName
	if query == "" {
		query = strings.SplitN(handle, "#", 2)[0]
	}
	if query == "" {
		return "", false
	}
	members, err := c.session.GuildMembersSearch(c.guildID, query, 10, discordgo.WithContext(ctx))
	if err != nil {
		return "", false
	}
	for _, member := range members {
		if member.User == nil {
			continue
		}
		if handle != "" && member.User.String() == handle {
			return member.User.ID, true
		}
		if strings.EqualFold(member.User.Username, displayName) ||
			strings.EqualFold(member.Nick, displayName) ||
			strings.EqualFold(member.User.GlobalName, displayName) {
			return member.User.ID, true
		}
	}
	return "", false
}

func noticeEmbed(notice ticket.Notice) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       notice.Title,
		Description: notice.Description,
		Color:       notice.Color,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	for _, field := range notice.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   field.Name,
			Value:  field.Value,
			Inline: field.Inline,
		})
	}
	if notice.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: notice.Footer}
	}
	return embed
}
