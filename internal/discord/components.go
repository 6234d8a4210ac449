package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/ticket"
)

// handleCloseTicket starts the close flow: authorize, then offer a
// confirmation prompt that expires on its own if never answered.
func (b *Bot) handleCloseTicket(ctx context.Context, i *discordgo.InteractionCreate, _ string) {
	channel, err := b.session.Channel(i.ChannelID, discordgo.WithContext(ctx))
	if err != nil {
		b.respondEphemeral(i, "❌ Could not inspect this channel.")
		return
	}
	if !ticket.IsTicketChannel(channel.Name) {
		b.respondEphemeral(i, "❌ This action can only be used in ticket channels.")
		return
	}

	actor := actorFromInteraction(i)
	confirmation, err := b.tickets.RequestClose(ctx, actor, ticket.ChannelRef{ID: channel.ID, Name: channel.Name})
	if err != nil {
		b.respondError(i, err)
		return
	}
	b.respondEphemeralEmbed(i, confirmCloseEmbed(), confirmCloseRow(confirmation.Token))
}

// handleConfirmClose consumes the confirmation token. The service posts the
// closing notice into the channel and deletes it after the configured delay.
func (b *Bot) handleConfirmClose(ctx context.Context, i *discordgo.InteractionCreate, token string) {
	actor := actorFromInteraction(i)
	b.respondEphemeral(i, "🔒 Closing ticket...")
	if err := b.tickets.ConfirmClose(ctx, token, actor); err != nil {
		b.logger.Warn("close confirmation failed", zap.Error(err))
		b.followupEphemeral(i, "❌ "+userMessage(err))
	}
}

func (b *Bot) handleCancelClose(ctx context.Context, i *discordgo.InteractionCreate, token string) {
	actor := actorFromInteraction(i)
	b.tickets.CancelClose(ctx, token, actor)
	b.respondEphemeral(i, "❌ Ticket closure cancelled.")
}

// handleClaimRewards is the panel button: open to any guild member, guarded
// only by the one-open-ticket check.
func (b *Bot) handleClaimRewards(ctx context.Context, i *discordgo.InteractionCreate, _ string) {
	actor := actorFromInteraction(i)
	created, err := b.tickets.Open(ctx, ticket.OpenRequest{
		Kind:  domain.KindRewards,
		Owner: ownerFromActor(actor),
	})
	if err != nil {
		b.respondError(i, err)
		return
	}
	b.respondEphemeral(i, fmt.Sprintf("✅ Your rewards ticket has been created: <#%s>", created.ChannelID))
}

func (b *Bot) followupEphemeral(i *discordgo.InteractionCreate, content string) {
	if _, err := b.session.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}); err != nil {
		b.logger.Warn("followup failed", zap.Error(err))
	}
}
