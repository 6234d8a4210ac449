package ticket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// fakePlatform records every call; the listing is fixed unless a test mutates
// it, mirroring how a stale external listing behaves.
type fakePlatform struct {
	category  bool
	listing   []ChannelRef
	members   map[string]string // handle or display name -> member ID
	created   []CreateChannelParams
	messages  map[string][]string
	notices   map[string][]Notice
	pinned    map[string][]string
	deleted   []string
	deleteErr error
	createErr error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		category: true,
		members:  map[string]string{},
		messages: map[string][]string{},
		notices:  map[string][]Notice{},
		pinned:   map[string][]string{},
	}
}

func (f *fakePlatform) CategoryExists(ctx context.Context, categoryID string) (bool, error) {
	return f.category, nil
}

func (f *fakePlatform) ListChannels(ctx context.Context, categoryID string) ([]ChannelRef, error) {
	return f.listing, nil
}

func (f *fakePlatform) CreateChannel(ctx context.Context, params CreateChannelParams) (ChannelRef, error) {
	if f.createErr != nil {
		return ChannelRef{}, f.createErr
	}
	f.created = append(f.created, params)
	return ChannelRef{ID: fmt.Sprintf("chan-%d", len(f.created)), Name: params.Name}, nil
}

func (f *fakePlatform) SendMessage(ctx context.Context, channelID, content string) (string, error) {
	f.messages[channelID] = append(f.messages[channelID], content)
	return fmt.Sprintf("msg-%d", len(f.messages[channelID])), nil
}

func (f *fakePlatform) SendNotice(ctx context.Context, channelID string, notice Notice) (string, error) {
	f.notices[channelID] = append(f.notices[channelID], notice)
	return fmt.Sprintf("notice-%d", len(f.notices[channelID])), nil
}

func (f *fakePlatform) PinMessage(ctx context.Context, channelID, messageID string) error {
	f.pinned[channelID] = append(f.pinned[channelID], messageID)
	return nil
}

func (f *fakePlatform) DeleteChannel(ctx context.Context, channelID, reason string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, channelID)
	return nil
}

func (f *fakePlatform) ResolveMember(ctx context.Context, handle, displayName string) (string, bool) {
	if id, ok := f.members[handle]; ok {
		return id, true
	}
	id, ok := f.members[displayName]
	return id, ok
}

type serviceFixture struct {
	platform *fakePlatform
	service  *Service
	now      *time.Time
	slept    []time.Duration
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	fix := &serviceFixture{platform: newFakePlatform()}
	start := time.Date(2025, 3, 7, 14, 52, 0, 0, time.UTC)
	fix.now = &start

	fix.service = NewService(Options{
		CategoryID: "cat-1",
		Policy: domain.AccessPolicy{
			OwnerID:        "owner-1",
			AllowedUserIDs: []string{"staff-1"},
			AllowedRoleIDs: []string{"role-support"},
		},
		ConfirmTTL:        60 * time.Second,
		ConfirmCloseDelay: 3 * time.Second,
		DirectCloseDelay:  5 * time.Second,
		Now:               func() time.Time { return *fix.now },
		Sleep: func(ctx context.Context, d time.Duration) {
			fix.slept = append(fix.slept, d)
		},
	}, Dependencies{
		Platform: fix.platform,
		Logger:   zap.NewNop(),
	})
	return fix
}

func (f *serviceFixture) advance(d time.Duration) {
	*f.now = f.now.Add(d)
}

func staffActor() domain.Actor {
	return domain.Actor{ID: "staff-1", Username: "staff", DisplayName: "Staff"}
}

func tessNotice() *domain.PurchaseNotice {
	return &domain.PurchaseNotice{
		Buyer:         "Tess",
		Handle:        "Tess#1",
		TransactionID: "TX1",
		TotalAmount:   "10.00",
		Items:         []domain.PurchaseItem{{Name: "Sword", Amount: "1x"}},
	}
}

func TestOpenPurchaseCreatesPinnedNotice(t *testing.T) {
	fix := newServiceFixture(t)
	fix.platform.members["Tess#1"] = "member-tess"

	created, err := fix.service.OpenPurchase(context.Background(), tessNotice())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(created.ChannelName, "purchase-tess-"),
		"channel name %q should carry the purchase-tess- prefix", created.ChannelName)
	assert.Equal(t, domain.KindPurchase, created.Kind)
	assert.Equal(t, "TX1", created.CorrelationID)
	assert.Equal(t, domain.TicketStatusOpen, created.Status)

	// Overwrites carry the resolved buyer, allowed users and allowed roles.
	require.Len(t, fix.platform.created, 1)
	params := fix.platform.created[0]
	assert.Contains(t, params.Overwrites, Overwrite{TargetID: "member-tess", Target: TargetMember})
	assert.Contains(t, params.Overwrites, Overwrite{TargetID: "staff-1", Target: TargetMember})
	assert.Contains(t, params.Overwrites, Overwrite{TargetID: "role-support", Target: TargetRole})

	// Welcome message plus one pinned order embed.
	require.Len(t, fix.platform.messages[created.ChannelID], 1)
	notices := fix.platform.notices[created.ChannelID]
	require.Len(t, notices, 1)
	require.Len(t, fix.platform.pinned[created.ChannelID], 1)

	fieldValues := map[string]string{}
	for _, field := range notices[0].Fields {
		fieldValues[field.Name] = field.Value
	}
	assert.Contains(t, fieldValues["👤 Buyer"], "Tess")
	assert.Contains(t, fieldValues["🆔 Transaction ID"], "TX1")
	assert.Contains(t, fieldValues["💰 Total Amount"], "$10.00")
	assert.Contains(t, fieldValues["📦 Purchased Items"], "**1x** Sword")
}

func TestOpenDuplicateTicket(t *testing.T) {
	fix := newServiceFixture(t)
	fix.platform.listing = []ChannelRef{{ID: "old", Name: "purchase-tess-01011200"}}

	_, err := fix.service.OpenPurchase(context.Background(), tessNotice())
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, errorutil.CodeDuplicateTicket))
	assert.Empty(t, fix.platform.created)
}

func TestOpenCategoryMissing(t *testing.T) {
	fix := newServiceFixture(t)
	fix.platform.category = false

	_, err := fix.service.OpenPurchase(context.Background(), tessNotice())
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, errorutil.CodeCategoryNotFound))
}

func TestOpenUnauthorizedActor(t *testing.T) {
	fix := newServiceFixture(t)
	actor := domain.Actor{ID: "random-user"}

	_, err := fix.service.Open(context.Background(), OpenRequest{
		Kind:  domain.KindSupport,
		Owner: domain.OwnerIdentity{DisplayName: "random", MemberID: "random-user"},
		Actor: &actor,
	})
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, errorutil.CodePermissionDenied))
	assert.Empty(t, fix.platform.created)
}

func TestOpenPlatformFailure(t *testing.T) {
	fix := newServiceFixture(t)
	fix.platform.createErr = errors.New("missing manage-channels permission")

	_, err := fix.service.OpenPurchase(context.Background(), tessNotice())
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, errorutil.CodePlatformError))
}

// The duplicate check reads the external listing, which lags behind channel
// creation. Two requests racing through that window both pass the check and
// produce two channels for the same owner. This documents the accepted race;
// it is not a regression when both creations succeed.
func TestOpenDuplicateCheckRace(t *testing.T) {
	fix := newServiceFixture(t)

	first, err := fix.service.OpenPurchase(context.Background(), tessNotice())
	require.NoError(t, err)
	// Listing is never refreshed, so the second request sees no duplicate.
	second, err := fix.service.OpenPurchase(context.Background(), tessNotice())
	require.NoError(t, err)

	assert.Len(t, fix.platform.created, 2)
	assert.Equal(t, first.ChannelName, second.ChannelName, "same-minute names collide by design")
}

func TestRequestCloseUnauthorized(t *testing.T) {
	fix := newServiceFixture(t)
	actor := domain.Actor{ID: "random-user", Roles: []string{"role-misc"}}

	_, err := fix.service.RequestClose(context.Background(), actor, ChannelRef{ID: "chan-1", Name: "ticket-bob-01011200"})
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, errorutil.CodePermissionDenied))
	assert.Empty(t, fix.platform.deleted)
	assert.Empty(t, fix.platform.notices)
}

func TestConfirmCloseDeletesAfterDelay(t *testing.T) {
	fix := newServiceFixture(t)

	confirmation, err := fix.service.RequestClose(context.Background(), staffActor(), ChannelRef{ID: "chan-1", Name: "ticket-bob-01011200"})
	require.NoError(t, err)

	require.NoError(t, fix.service.ConfirmClose(context.Background(), confirmation.Token, staffActor()))

	require.Len(t, fix.platform.notices["chan-1"], 1)
	assert.Contains(t, fix.platform.notices["chan-1"][0].Title, "Ticket Closed")
	assert.Equal(t, []time.Duration{3 * time.Second}, fix.slept)
	assert.Equal(t, []string{"chan-1"}, fix.platform.deleted)
}

func TestConfirmCloseExpires(t *testing.T) {
	fix := newServiceFixture(t)

	confirmation, err := fix.service.RequestClose(context.Background(), staffActor(), ChannelRef{ID: "chan-1", Name: "ticket-bob-01011200"})
	require.NoError(t, err)

	fix.advance(61 * time.Second)

	err = fix.service.ConfirmClose(context.Background(), confirmation.Token, staffActor())
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, errorutil.CodeConfirmationExpired))
	// Rollback to OPEN: nothing was posted or deleted.
	assert.Empty(t, fix.platform.deleted)
	assert.Empty(t, fix.platform.notices)
}

func TestCancelClose(t *testing.T) {
	fix := newServiceFixture(t)

	confirmation, err := fix.service.RequestClose(context.Background(), staffActor(), ChannelRef{ID: "chan-1", Name: "ticket-bob-01011200"})
	require.NoError(t, err)

	assert.True(t, fix.service.CancelClose(context.Background(), confirmation.Token, staffActor()))
	assert.False(t, fix.service.CancelClose(context.Background(), confirmation.Token, staffActor()))

	err = fix.service.ConfirmClose(context.Background(), confirmation.Token, staffActor())
	assert.True(t, errorutil.IsCode(err, errorutil.CodeConfirmationExpired))
	assert.Empty(t, fix.platform.deleted)
}

func TestCloseNowUsesDirectDelay(t *testing.T) {
	fix := newServiceFixture(t)

	require.NoError(t, fix.service.CloseNow(context.Background(), staffActor(), ChannelRef{ID: "chan-9", Name: "rewards-bob-01011200"}))
	assert.Equal(t, []time.Duration{5 * time.Second}, fix.slept)
	assert.Equal(t, []string{"chan-9"}, fix.platform.deleted)
}

func TestCloseDeletionFailureLeavesClosing(t *testing.T) {
	fix := newServiceFixture(t)
	fix.platform.deleteErr = errors.New("channel already gone")

	err := fix.service.CloseNow(context.Background(), staffActor(), ChannelRef{ID: "chan-9", Name: "ticket-bob-01011200"})
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, errorutil.CodePlatformError))
	// The closing notice went out but no deletion happened; no retry occurs.
	require.Len(t, fix.platform.notices["chan-9"], 1)
	assert.Empty(t, fix.platform.deleted)
}
