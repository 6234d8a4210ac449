package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/spec-kit/ticket-bot/internal/ticket"
)

const (
	colorPanel   = 0x036FFF
	colorInfo    = 0x3498DB
	colorConfirm = 0xE74C3C
	colorEmpty   = 0x2ECC71
)

func closeButtonRow() discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Close Ticket",
				Style:    discordgo.DangerButton,
				CustomID: actionCloseTicket,
			},
		},
	}
}

func confirmCloseRow(token string) discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Confirm Close",
				Style:    discordgo.DangerButton,
				CustomID: actionConfirmClose + ":" + token,
			},
			discordgo.Button{
				Label:    "Cancel",
				Style:    discordgo.SecondaryButton,
				CustomID: actionCancelClose + ":" + token,
			},
		},
	}
}

func panelButtonRow() discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Claim Rewards",
				Style:    discordgo.SecondaryButton,
				CustomID: actionClaimRewards,
			},
		},
	}
}

func confirmCloseEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🔒 Close Ticket",
		Description: "Are you sure you want to close this ticket? This action cannot be undone.",
		Color:       colorConfirm,
	}
}

func panelEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🎫 Tickets Panel",
		Description: "Need help or want to claim rewards? Use the button below!",
		Color:       colorPanel,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "How to use",
				Value: "• Click **Claim Rewards** to create a ticket\n• Staff will assist you as soon as possible\n• Only create tickets when needed",
			},
			{
				Name:   "Response Time",
				Value:  "We typically respond within 1-24 hours",
				Inline: true,
			},
			{
				Name:   "Store Support",
				Value:  "For purchase issues, include your transaction ID",
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Market Support System"},
	}
}

func ticketListEmbed(tickets []ticket.ChannelRef) *discordgo.MessageEmbed {
	if len(tickets) == 0 {
		return &discordgo.MessageEmbed{
			Title:       "🎫 Open Tickets",
			Description: "No open tickets found.",
			Color:       colorEmpty,
		}
	}

	shown := tickets
	if len(shown) > 10 {
		shown = shown[:10]
	}
	lines := make([]string, 0, len(shown))
	for _, ref := range shown {
		kind := "🎫 Support"
		if strings.HasPrefix(ref.Name, "purchase-") {
			kind = "🛒 Purchase"
		} else if strings.HasPrefix(ref.Name, "rewards-") {
			kind = "🎁 Rewards"
		}
		lines = append(lines, fmt.Sprintf("%s <#%s>", kind, ref.ID))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🎫 Open Tickets",
		Description: strings.Join(lines, "\n"),
		Color:       colorInfo,
	}
	if len(tickets) > 10 {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Showing 10 of %d tickets", len(tickets)),
		}
	}
	return embed
}

func botInfoEmbed(status ConnectionReport, openTickets, allowedUsers, allowedRoles int) *discordgo.MessageEmbed {
	connected := "offline"
	if status.BotConnected {
		connected = "online"
	}
	categoryState := "not found"
	if status.CategoryFound {
		categoryState = "ready"
	}
	return &discordgo.MessageEmbed{
		Title:     "🤖 Ticket Bot Information",
		Color:     colorInfo,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Bot Status",
				Value:  fmt.Sprintf("Gateway: %s\nGuild connected: %t", connected, status.GuildConnected),
				Inline: true,
			},
			{
				Name:   "Ticket System",
				Value:  fmt.Sprintf("Category: %s\nOpen tickets: %d", categoryState, openTickets),
				Inline: true,
			},
			{
				Name:   "Permissions",
				Value:  fmt.Sprintf("Allowed users: %d\nAllowed roles: %d", allowedUsers, allowedRoles),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Market Ticket System"},
	}
}
