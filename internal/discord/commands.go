package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/ticket"
	"github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "create_ticket",
			Description: "Create a new support ticket",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Why you are opening the ticket",
				},
			},
		},
		{
			Name:        "list_tickets",
			Description: "List all open tickets",
		},
		{
			Name:        "bot_info",
			Description: "Show bot information and configuration",
		},
		{
			Name:        "tickets_panel",
			Description: "Send or update a tickets panel with a claim rewards button",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Channel to post the panel in",
					Required:    true,
					ChannelTypes: []discordgo.ChannelType{
						discordgo.ChannelTypeGuildText,
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message_id",
					Description: "Existing panel message to update",
				},
			},
		},
		{
			Name:        "test_purchase",
			Description: "Test the purchase ticket system",
		},
	}
}

func (b *Bot) cmdCreateTicket(ctx context.Context, i *discordgo.InteractionCreate) {
	actor := actorFromInteraction(i)

	reason := "General Support"
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "reason" {
			reason = opt.StringValue()
		}
	}

	created, err := b.tickets.Open(ctx, ticket.OpenRequest{
		Kind:   domain.KindSupport,
		Owner:  ownerFromActor(actor),
		Reason: reason,
		Actor:  &actor,
	})
	if err != nil {
		b.respondError(i, err)
		return
	}
	b.respondEphemeral(i, fmt.Sprintf("✅ Ticket created: <#%s>", created.ChannelID))
}

func (b *Bot) cmdListTickets(ctx context.Context, i *discordgo.InteractionCreate) {
	actor := actorFromInteraction(i)
	if !domain.Authorize(actor, b.tickets.Policy()) {
		b.respondError(i, errorutil.NewPermissionDenied("you don't have permission to use this command"))
		return
	}

	listing, err := b.client.ListChannels(ctx, b.cfg.CategoryID)
	if err != nil {
		b.respondError(i, errorutil.NewPlatformError("failed to list tickets", err))
		return
	}
	open := make([]ticket.ChannelRef, 0, len(listing))
	for _, ref := range listing {
		if ticket.IsTicketChannel(ref.Name) {
			open = append(open, ref)
		}
	}
	b.respondEphemeralEmbed(i, ticketListEmbed(open))
}

func (b *Bot) cmdBotInfo(ctx context.Context, i *discordgo.InteractionCreate) {
	actor := actorFromInteraction(i)
	if !domain.Authorize(actor, b.tickets.Policy()) {
		b.respondError(i, errorutil.NewPermissionDenied("you don't have permission to use this command"))
		return
	}

	botConnected, guildConnected, categoryFound := b.ConnectionStatus(ctx)
	report := ConnectionReport{
		BotConnected:   botConnected,
		GuildConnected: guildConnected,
		CategoryFound:  categoryFound,
	}

	openTickets := 0
	if listing, err := b.client.ListChannels(ctx, b.cfg.CategoryID); err == nil {
		for _, ref := range listing {
			if ticket.IsTicketChannel(ref.Name) {
				openTickets++
			}
		}
	}

	embed := botInfoEmbed(report, openTickets, len(b.cfg.AllowedUserIDs), len(b.cfg.AllowedRoleIDs))
	b.respondEphemeralEmbed(i, embed)
}

func (b *Bot) cmdTicketsPanel(ctx context.Context, i *discordgo.InteractionCreate) {
	actor := actorFromInteraction(i)
	if !domain.Authorize(actor, b.tickets.Policy()) {
		b.respondError(i, errorutil.NewPermissionDenied("you don't have permission to use this command"))
		return
	}

	var targetChannelID, messageID string
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "channel":
			targetChannelID = opt.ChannelValue(nil).ID
		case "message_id":
			messageID = opt.StringValue()
		}
	}

	embed := panelEmbed()
	components := []discordgo.MessageComponent{panelButtonRow()}

	if messageID != "" {
		edit := discordgo.NewMessageEdit(targetChannelID, messageID)
		edit.Embeds = &[]*discordgo.MessageEmbed{embed}
		edit.Components = &components
		if _, err := b.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err == nil {
			b.respondEphemeral(i, fmt.Sprintf("✅ Updated tickets panel in <#%s>", targetChannelID))
			return
		}
		b.logger.Warn("panel message not found, sending a new one", zap.String("message_id", messageID))
	}

	message, err := b.session.ChannelMessageSendComplex(targetChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		b.respondError(i, errorutil.NewPlatformError("failed to send tickets panel", err))
		return
	}
	b.respondEphemeral(i, fmt.Sprintf("✅ Tickets panel sent to <#%s>\n**Message ID:** `%s`", targetChannelID, message.ID))
}

func (b *Bot) cmdTestPurchase(ctx context.Context, i *discordgo.InteractionCreate) {
	actor := actorFromInteraction(i)
	if !domain.Authorize(actor, b.tickets.Policy()) {
		b.respondError(i, errorutil.NewPermissionDenied("you don't have permission to use this command"))
		return
	}

	// Channel creation takes several REST round-trips; defer so the
	// interaction does not time out.
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		b.logger.Warn("interaction defer failed", zap.Error(err))
		return
	}

	notice := &domain.PurchaseNotice{
		Buyer:         "TestUser",
		Handle:        "TestUser#1234",
		TransactionID: "TEST_" + uuid.NewString()[:8],
		TotalAmount:   "25.00",
		Items: []domain.PurchaseItem{
			{Name: "Server Money", Amount: "200M"},
			{Name: "Netherite Armor", Amount: "1x"},
		},
	}

	content := ""
	if created, err := b.tickets.OpenPurchase(ctx, notice); err != nil {
		content = "❌ " + userMessage(err)
	} else {
		content = fmt.Sprintf("✅ Test purchase ticket created: <#%s>", created.ChannelID)
	}
	if _, err := b.session.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}); err != nil {
		b.logger.Warn("followup failed", zap.Error(err))
	}
}

// userMessage extracts the short human-readable message for an actor-facing
// reply.
func userMessage(err error) string {
	if domainErr := errorutil.ToDomainError(err); domainErr != nil {
		return domainErr.Message
	}
	return "something went wrong"
}
