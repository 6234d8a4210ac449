package discord

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/ticket"
)

// Component actions. This is the closed set of button actions the bot
// dispatches; confirm/cancel carry the confirmation token after a colon.
const (
	actionCloseTicket  = "ticket_close"
	actionConfirmClose = "ticket_close_confirm"
	actionCancelClose  = "ticket_close_cancel"
	actionClaimRewards = "panel_claim_rewards"
)

// Bot manages the gateway connection and dispatches interactive events into
// the ticket lifecycle.
type Bot struct {
	session *discordgo.Session
	client  *Client
	tickets *ticket.Service
	cfg     config.DiscordConfig
	logger  *zap.Logger

	commands   map[string]func(context.Context, *discordgo.InteractionCreate)
	components map[string]func(context.Context, *discordgo.InteractionCreate, string)
}

// ConnectionReport summarizes gateway health for the HTTP health endpoint.
type ConnectionReport struct {
	BotConnected   bool
	GuildConnected bool
	CategoryFound  bool
}

// NewSession builds a gateway session with the intents the ticket flows need.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers
	return session, nil
}

// NewBot wires the interactive adapter. Handlers are registered immediately;
// the connection opens on Start.
func NewBot(session *discordgo.Session, client *Client, tickets *ticket.Service, cfg config.DiscordConfig, logger *zap.Logger) *Bot {
	b := &Bot{
		session: session,
		client:  client,
		tickets: tickets,
		cfg:     cfg,
		logger:  logger,
	}
	b.commands = map[string]func(context.Context, *discordgo.InteractionCreate){
		"create_ticket": b.cmdCreateTicket,
		"list_tickets":  b.cmdListTickets,
		"bot_info":      b.cmdBotInfo,
		"tickets_panel": b.cmdTicketsPanel,
		"test_purchase": b.cmdTestPurchase,
	}
	b.components = map[string]func(context.Context, *discordgo.InteractionCreate, string){
		actionCloseTicket:  b.handleCloseTicket,
		actionConfirmClose: b.handleConfirmClose,
		actionCancelClose:  b.handleCancelClose,
		actionClaimRewards: b.handleClaimRewards,
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteractionCreate)
	return b
}

// Start opens the gateway connection.
func (b *Bot) Start() error {
	return b.session.Open()
}

// Stop closes the gateway connection.
func (b *Bot) Stop() {
	if err := b.session.Close(); err != nil {
		b.logger.Warn("gateway close", zap.Error(err))
	}
}

// ConnectionStatus reports gateway, guild and category reachability.
func (b *Bot) ConnectionStatus(ctx context.Context) (botConnected, guildConnected, categoryFound bool) {
	botConnected = b.session.DataReady
	if _, err := b.session.State.Guild(b.cfg.GuildID); err == nil {
		guildConnected = true
	}
	if found, err := b.client.CategoryExists(ctx, b.cfg.CategoryID); err == nil {
		categoryFound = found
	}
	return botConnected, guildConnected, categoryFound
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("gateway ready",
		zap.String("user", r.User.Username),
		zap.Int("guilds", len(r.Guilds)))

	if _, err := s.ApplicationCommandBulkOverwrite(r.User.ID, b.cfg.GuildID, commandDefinitions()); err != nil {
		b.logger.Error("slash command registration failed", zap.Error(err))
		return
	}
	b.logger.Info("slash commands registered", zap.Int("count", len(commandDefinitions())))
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		handler, ok := b.commands[name]
		if !ok {
			b.logger.Warn("unknown command", zap.String("name", name))
			return
		}
		handler(ctx, i)
	case discordgo.InteractionMessageComponent:
		action, arg := splitCustomID(i.MessageComponentData().CustomID)
		handler, ok := b.components[action]
		if !ok {
			b.logger.Warn("unknown component action", zap.String("action", action))
			return
		}
		handler(ctx, i, arg)
	}
}

// splitCustomID separates an action tag from its optional token argument.
func splitCustomID(customID string) (action, arg string) {
	action, arg, _ = strings.Cut(customID, ":")
	return action, arg
}

// actorFromInteraction builds the per-request actor identity from the guild
// member attached to the interaction.
func actorFromInteraction(i *discordgo.InteractionCreate) domain.Actor {
	member := i.Member
	if member == nil || member.User == nil {
		return domain.Actor{}
	}
	display := member.Nick
	if display == "" {
		display = member.User.GlobalName
	}
	if display == "" {
		display = member.User.Username
	}
	return domain.Actor{
		ID:          member.User.ID,
		Username:    member.User.Username,
		DisplayName: display,
		Roles:       member.Roles,
	}
}

func ownerFromActor(actor domain.Actor) domain.OwnerIdentity {
	return domain.OwnerIdentity{
		DisplayName: actor.Username,
		Handle:      actor.Username,
		MemberID:    actor.ID,
	}
}

// respondEphemeral replies to the interaction with a message only the actor
// can see.
func (b *Bot) respondEphemeral(i *discordgo.InteractionCreate, content string) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Warn("interaction respond failed", zap.Error(err))
	}
}

func (b *Bot) respondEphemeralEmbed(i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components ...discordgo.MessageComponent) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Warn("interaction respond failed", zap.Error(err))
	}
}

// respondError reports a lifecycle failure back to the actor as a short
// human-readable message. Errors never escape to crash the gateway task.
func (b *Bot) respondError(i *discordgo.InteractionCreate, err error) {
	b.logger.Warn("interaction failed", zap.Error(err))
	b.respondEphemeral(i, "❌ "+userMessage(err))
}
