package ticket

import (
	"fmt"
	"strings"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// Embed colors, matching the storefront's branding.
const (
	colorSupport  = 0x3498DB
	colorPurchase = 0x206694
	colorRewards  = 0x4CAF50
	colorClosing  = 0xFF0000
)

// Mention renders a Discord mention when the owner resolved to a guild
// member, falling back to the plain display name.
func Mention(owner domain.OwnerIdentity) string {
	if owner.MemberID != "" {
		return "<@" + owner.MemberID + ">"
	}
	return owner.DisplayName
}

func buildSupportNotice(ticket *domain.Ticket, reason string) Notice {
	if strings.TrimSpace(reason) == "" {
		reason = "General Support"
	}
	return Notice{
		Title:       "🎫 Support Ticket Created",
		Description: fmt.Sprintf("**Reason:** %s\n**Created by:** %s", reason, Mention(ticket.Owner)),
		Color:       colorSupport,
		Fields: []NoticeField{
			{
				Name:  "Instructions",
				Value: "Please describe your issue in detail. A staff member will assist you shortly.",
			},
		},
		Footer:      "Ticket ID: " + ticket.ChannelID,
		CloseButton: true,
	}
}

func buildRewardsNotice(owner domain.OwnerIdentity) Notice {
	return Notice{
		Title:       "🎁 Claim Rewards Ticket",
		Description: fmt.Sprintf("Hello %s! Welcome to your rewards ticket.", Mention(owner)),
		Color:       colorRewards,
		Fields: []NoticeField{
			{
				Name:  "What to include",
				Value: "• Your Discord username\n• What rewards you're claiming\n• Any relevant screenshots or proof\n• Transaction IDs if applicable",
			},
			{
				Name:  "Next steps",
				Value: "A staff member will review your request and assist you shortly.",
			},
		},
		Footer:      "Market Support",
		CloseButton: true,
	}
}

// buildPurchaseWelcome is the plain-text greeting sent before the pinned
// order embed.
func buildPurchaseWelcome(owner domain.OwnerIdentity, notice *domain.PurchaseNotice) string {
	var b strings.Builder
	b.WriteString("🎫 **Purchase Ticket Created**\n\n")
	fmt.Fprintf(&b, "Hello %s! Your purchase ticket has been created.\n\n", Mention(owner))
	b.WriteString("**Order Details:**\n")
	fmt.Fprintf(&b, "• Transaction: `%s`\n", notice.TransactionID)
	fmt.Fprintf(&b, "• Amount: **$%s**\n\n", notice.TotalAmount)
	b.WriteString("Our team will process your order shortly. Please wait for delivery confirmation.")
	return b.String()
}

func buildPurchaseNotice(ticket *domain.Ticket, notice *domain.PurchaseNotice, ownerID string) Notice {
	store := notice.Store
	if store == "" {
		store = "the store"
	}

	fields := []NoticeField{
		{Name: "👤 Buyer", Value: "`" + notice.Buyer + "`", Inline: true},
		{Name: "💬 Discord", Value: "`" + notice.Handle + "`", Inline: true},
		{Name: "🆔 Transaction ID", Value: "`" + notice.TransactionID + "`", Inline: true},
		{Name: "💰 Total Amount", Value: "**$" + notice.TotalAmount + "**", Inline: true},
		{Name: "📦 Purchased Items", Value: formatItems(notice.Items)},
	}
	if ownerID != "" {
		fields = append(fields, NoticeField{Name: "🏪 Store Owner", Value: "<@" + ownerID + ">"})
	}
	fields = append(fields, NoticeField{
		Name:  "📋 Next Steps",
		Value: "✅ Verify the purchase details\n✅ Process the delivery\n✅ Close ticket when complete",
	})

	return Notice{
		Title:       "🛒 New Store Purchase",
		Description: "A new purchase has been made on " + store + "!",
		Color:       colorPurchase,
		Fields:      fields,
		Footer:      "Ticket ID: " + ticket.ChannelID,
		CloseButton: true,
	}
}

func buildClosingNotice(closedBy string) Notice {
	return Notice{
		Title:       "🔒 Ticket Closed",
		Description: "This ticket has been closed by " + closedBy,
		Color:       colorClosing,
	}
}

func formatItems(items []domain.PurchaseItem) string {
	if len(items) == 0 {
		return "No items listed"
	}
	var b strings.Builder
	for _, item := range items {
		amount := item.Amount
		if amount == "" {
			amount = "1x"
		}
		name := item.Name
		if name == "" {
			name = "Unknown Item"
		}
		if item.Price != "" {
			fmt.Fprintf(&b, "• **%s** %s ($%s)\n", amount, name, item.Price)
		} else {
			fmt.Fprintf(&b, "• **%s** %s\n", amount, name)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
