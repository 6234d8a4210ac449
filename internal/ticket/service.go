package ticket

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/observability"
	"github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// Service coordinates the ticket lifecycle: REQUESTED -> OPEN -> CLOSING ->
// CLOSED. REQUESTED exists only inside one Open call; CLOSING rolls back to
// OPEN when a confirmation expires unanswered.
type Service struct {
	platform   Platform
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger

	categoryID        string
	policy            domain.AccessPolicy
	confirmCloseDelay time.Duration
	directCloseDelay  time.Duration

	confirmations *confirmationStore
	now           func() time.Time
	sleep         func(context.Context, time.Duration)
}

// Dependencies bundles collaborators for the ticket service.
type Dependencies struct {
	Platform   Platform
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// Options carries the static policy and timing knobs.
type Options struct {
	CategoryID        string
	Policy            domain.AccessPolicy
	ConfirmTTL        time.Duration
	ConfirmCloseDelay time.Duration
	DirectCloseDelay  time.Duration

	// Now and Sleep are injectable for tests; nil means real time.
	Now   func() time.Time
	Sleep func(context.Context, time.Duration)
}

// OpenRequest describes one ticket to open. Actor is set on interactive paths
// that require authorization; trusted adapters (webhook, file watcher) and the
// open rewards panel leave it nil.
type OpenRequest struct {
	Kind     domain.TicketKind
	Owner    domain.OwnerIdentity
	Reason   string
	Purchase *domain.PurchaseNotice
	Actor    *domain.Actor
}

// NewService constructs the lifecycle controller.
func NewService(opts Options, deps Dependencies) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	if opts.ConfirmTTL <= 0 {
		opts.ConfirmTTL = 60 * time.Second
	}
	return &Service{
		platform:          deps.Platform,
		dispatcher:        deps.Dispatcher,
		metrics:           deps.Metrics,
		logger:            deps.Logger,
		categoryID:        opts.CategoryID,
		policy:            opts.Policy,
		confirmCloseDelay: opts.ConfirmCloseDelay,
		directCloseDelay:  opts.DirectCloseDelay,
		confirmations:     newConfirmationStore(now, opts.ConfirmTTL),
		now:               now,
		sleep:             sleep,
	}
}

// Policy returns the immutable access policy the service authorizes against.
func (s *Service) Policy() domain.AccessPolicy {
	return s.policy
}

// Open creates a ticket channel with computed permission overwrites and posts
// the initial notice. The duplicate check is a best-effort scan of the current
// category listing: two concurrent requests can both pass it before either
// channel becomes visible.
func (s *Service) Open(ctx context.Context, req OpenRequest) (*domain.Ticket, error) {
	if req.Actor != nil && !domain.Authorize(*req.Actor, s.policy) {
		return nil, errorutil.NewPermissionDenied("you don't have permission to create tickets")
	}

	exists, err := s.platform.CategoryExists(ctx, s.categoryID)
	if err != nil {
		return nil, errorutil.NewPlatformError("failed to look up ticket category", err)
	}
	if !exists {
		return nil, errorutil.NewCategoryNotFound(s.categoryID)
	}

	listing, err := s.platform.ListChannels(ctx, s.categoryID)
	if err != nil {
		return nil, errorutil.NewPlatformError("failed to list ticket channels", err)
	}
	if existing := FindExisting(listing, req.Owner.DisplayName, req.Kind.Prefix()); existing != nil {
		return nil, errorutil.NewDuplicateTicket(existing.Name)
	}

	owner := s.resolveOwner(ctx, req.Owner)
	createdAt := s.now()
	name := BuildChannelName(req.Kind.Prefix(), owner.DisplayName, createdAt)

	channel, err := s.platform.CreateChannel(ctx, CreateChannelParams{
		Name:       name,
		CategoryID: s.categoryID,
		Overwrites: s.buildOverwrites(owner),
		Reason:     string(req.Kind) + " ticket for " + owner.DisplayName,
	})
	if err != nil {
		return nil, errorutil.NewPlatformError("failed to create ticket channel", err)
	}

	ticket := &domain.Ticket{
		ChannelID:   channel.ID,
		ChannelName: channel.Name,
		Kind:        req.Kind,
		Owner:       owner,
		CategoryID:  s.categoryID,
		Status:      domain.TicketStatusOpen,
		CreatedAt:   createdAt,
	}
	if req.Purchase != nil {
		ticket.CorrelationID = req.Purchase.TransactionID
	}

	if err := s.postOpeningNotices(ctx, ticket, req); err != nil {
		return nil, err
	}

	s.metrics.RecordTicketOpened(string(req.Kind))
	s.logger.Info("ticket opened",
		zap.String("channel", ticket.ChannelName),
		zap.String("kind", string(ticket.Kind)),
		zap.String("owner", owner.DisplayName))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketOpened,
		ChannelID: ticket.ChannelID,
		Actor:     actorID(req.Actor),
		Payload: events.TicketOpenedPayload{
			Kind:          ticket.Kind,
			ChannelName:   ticket.ChannelName,
			Owner:         owner.DisplayName,
			CorrelationID: ticket.CorrelationID,
			TotalAmount:   purchaseAmount(req.Purchase),
		},
	})
	return ticket, nil
}

// OpenPurchase converts a storefront notice into a purchase ticket. Used by
// the webhook and file-watcher adapters, which are implicitly trusted.
func (s *Service) OpenPurchase(ctx context.Context, notice *domain.PurchaseNotice) (*domain.Ticket, error) {
	return s.Open(ctx, OpenRequest{
		Kind: domain.KindPurchase,
		Owner: domain.OwnerIdentity{
			DisplayName: notice.Buyer,
			Handle:      notice.Handle,
		},
		Purchase: notice,
	})
}

// RequestClose authorizes the actor and issues a close confirmation that
// expires after the configured TTL. Until confirmed the ticket stays OPEN;
// expiry is the implicit CLOSING -> OPEN rollback.
func (s *Service) RequestClose(ctx context.Context, actor domain.Actor, channel ChannelRef) (*CloseConfirmation, error) {
	if !domain.Authorize(actor, s.policy) {
		return nil, errorutil.NewPermissionDenied("you don't have permission to close this ticket")
	}
	confirmation := s.confirmations.issue(channel.ID, channel.Name, actor.ID)
	s.publishEvent(ctx, events.Event{
		Type:      events.EventCloseRequested,
		ChannelID: channel.ID,
		Actor:     actor.ID,
		Payload: events.CloseRequestedPayload{
			Token:       confirmation.Token,
			ChannelName: channel.Name,
			ExpiresAt:   confirmation.ExpiresAt,
		},
	})
	return confirmation, nil
}

// ConfirmClose consumes a confirmation token, posts the closing notice and
// deletes the channel after the confirm delay. An expired or unknown token is
// a no-op beyond the returned error.
func (s *Service) ConfirmClose(ctx context.Context, token string, actor domain.Actor) error {
	confirmation := s.confirmations.take(token)
	if confirmation == nil {
		return errorutil.NewConfirmationExpired()
	}
	return s.closeChannel(ctx, confirmation.ChannelID, confirmation.ChannelName, actor, s.confirmCloseDelay)
}

// CancelClose discards a pending confirmation. Reports whether one existed.
func (s *Service) CancelClose(ctx context.Context, token string, actor domain.Actor) bool {
	if !s.confirmations.drop(token) {
		return false
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventCloseCancelled,
		Actor:   actor.ID,
		Payload: events.CloseCancelledPayload{Token: token},
	})
	return true
}

// CloseNow is the administrative close path: authorize, notify, delete after
// the direct delay, with no confirmation round-trip.
func (s *Service) CloseNow(ctx context.Context, actor domain.Actor, channel ChannelRef) error {
	if !domain.Authorize(actor, s.policy) {
		return errorutil.NewPermissionDenied("you don't have permission to close this ticket")
	}
	return s.closeChannel(ctx, channel.ID, channel.Name, actor, s.directCloseDelay)
}

// closeChannel performs the terminal transition. If deletion fails the ticket
// stays visibly "closing" with no automatic retry; an operator must intervene.
func (s *Service) closeChannel(ctx context.Context, channelID, channelName string, actor domain.Actor, delay time.Duration) error {
	closedBy := actor.DisplayName
	if closedBy == "" {
		closedBy = actor.Username
	}
	if _, err := s.platform.SendNotice(ctx, channelID, buildClosingNotice(closedBy)); err != nil {
		return errorutil.NewPlatformError("failed to post closing notice", err)
	}

	s.sleep(ctx, delay)

	if err := s.platform.DeleteChannel(ctx, channelID, "ticket closed by "+closedBy); err != nil {
		s.logger.Error("ticket channel deletion failed; ticket left in closing state",
			zap.String("channel_id", channelID), zap.Error(err))
		return errorutil.NewPlatformError("failed to delete ticket channel", err)
	}

	s.metrics.RecordTicketClosed()
	s.logger.Info("ticket closed", zap.String("channel", channelName), zap.String("closed_by", closedBy))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketClosed,
		ChannelID: channelID,
		Actor:     actor.ID,
		Payload:   events.TicketClosedPayload{ChannelName: channelName},
	})
	return nil
}

// resolveOwner fills in the owner's member ID when only a handle or display
// name is known, so the channel overwrites can include them.
func (s *Service) resolveOwner(ctx context.Context, owner domain.OwnerIdentity) domain.OwnerIdentity {
	if owner.MemberID != "" {
		return owner
	}
	if memberID, ok := s.platform.ResolveMember(ctx, owner.Handle, owner.DisplayName); ok {
		owner.MemberID = memberID
	}
	return owner
}

// buildOverwrites computes the channel permission set: the owner (when
// resolvable), every allowed user and every allowed role. The platform adds
// the default-audience deny and the bot's own allow.
func (s *Service) buildOverwrites(owner domain.OwnerIdentity) []Overwrite {
	overwrites := make([]Overwrite, 0, 1+len(s.policy.AllowedUserIDs)+len(s.policy.AllowedRoleIDs))
	if owner.MemberID != "" {
		overwrites = append(overwrites, Overwrite{TargetID: owner.MemberID, Target: TargetMember})
	}
	for _, userID := range s.policy.AllowedUserIDs {
		if userID == owner.MemberID {
			continue
		}
		overwrites = append(overwrites, Overwrite{TargetID: userID, Target: TargetMember})
	}
	for _, roleID := range s.policy.AllowedRoleIDs {
		overwrites = append(overwrites, Overwrite{TargetID: roleID, Target: TargetRole})
	}
	return overwrites
}

// postOpeningNotices sends the kind-specific welcome content. Purchase tickets
// get a welcome message plus a pinned order embed.
func (s *Service) postOpeningNotices(ctx context.Context, ticket *domain.Ticket, req OpenRequest) error {
	switch ticket.Kind {
	case domain.KindPurchase:
		if _, err := s.platform.SendMessage(ctx, ticket.ChannelID, buildPurchaseWelcome(ticket.Owner, req.Purchase)); err != nil {
			return errorutil.NewPlatformError("failed to post welcome message", err)
		}
		messageID, err := s.platform.SendNotice(ctx, ticket.ChannelID, buildPurchaseNotice(ticket, req.Purchase, s.policy.OwnerID))
		if err != nil {
			return errorutil.NewPlatformError("failed to post purchase notice", err)
		}
		if err := s.platform.PinMessage(ctx, ticket.ChannelID, messageID); err != nil {
			return errorutil.NewPlatformError("failed to pin purchase notice", err)
		}
	case domain.KindRewards:
		if _, err := s.platform.SendNotice(ctx, ticket.ChannelID, buildRewardsNotice(ticket.Owner)); err != nil {
			return errorutil.NewPlatformError("failed to post rewards notice", err)
		}
	default:
		if _, err := s.platform.SendNotice(ctx, ticket.ChannelID, buildSupportNotice(ticket, req.Reason)); err != nil {
			return errorutil.NewPlatformError("failed to post support notice", err)
		}
	}
	return nil
}

func (s *Service) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func actorID(actor *domain.Actor) string {
	if actor == nil {
		return ""
	}
	return actor.ID
}

func purchaseAmount(notice *domain.PurchaseNotice) string {
	if notice == nil {
		return ""
	}
	return notice.TotalAmount
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
