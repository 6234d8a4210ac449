package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

type fakeOpener struct {
	opened []*domain.PurchaseNotice
	err    error
}

func (f *fakeOpener) OpenPurchase(ctx context.Context, notice *domain.PurchaseNotice) (*domain.Ticket, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.opened = append(f.opened, notice)
	return &domain.Ticket{ChannelID: "chan-1", ChannelName: "purchase-tess-03071452"}, nil
}

func newWebhookApp(opener *fakeOpener) *fiber.App {
	app := fiber.New()
	handler := NewWebhookHandler(opener, zap.NewNop())
	app.Post("/webhook/purchase", handler.HandlePurchase)
	return app
}

func postPurchase(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/webhook/purchase", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp.StatusCode, parsed
}

func TestHandlePurchaseSuccess(t *testing.T) {
	opener := &fakeOpener{}
	app := newWebhookApp(opener)

	status, body := postPurchase(t, app, `{
		"buyer": "Tess",
		"discord": "Tess#1",
		"transactionId": "TX1",
		"totalAmount": "10.00",
		"items": [{"name": "Sword", "amount": "1x"}]
	}`)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "chan-1", body["ticket_id"])
	assert.Equal(t, "purchase-tess-03071452", body["ticket_name"])

	require.Len(t, opener.opened, 1)
	assert.Equal(t, "Tess#1", opener.opened[0].Handle)
}

func TestHandlePurchaseInvalidJSON(t *testing.T) {
	opener := &fakeOpener{}
	app := newWebhookApp(opener)

	status, body := postPurchase(t, app, "{not json")

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
	assert.Empty(t, opener.opened)
}

func TestHandlePurchaseMissingFields(t *testing.T) {
	opener := &fakeOpener{}
	app := newWebhookApp(opener)

	status, body := postPurchase(t, app, `{"discord": "Tess#1", "items": []}`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
	assert.Empty(t, opener.opened)
}

func TestHandlePurchaseDuplicate(t *testing.T) {
	opener := &fakeOpener{err: errorutil.NewDuplicateTicket("purchase-tess-03071452")}
	app := newWebhookApp(opener)

	status, body := postPurchase(t, app, `{
		"buyer": "Tess",
		"items": [{"name": "Sword", "amount": "1x"}]
	}`)

	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, false, body["success"])
}

func TestHandlePurchasePlatformFailure(t *testing.T) {
	opener := &fakeOpener{err: errorutil.NewPlatformError("channel creation failed", nil)}
	app := newWebhookApp(opener)

	status, body := postPurchase(t, app, `{
		"buyer": "Tess",
		"items": [{"name": "Sword", "amount": "1x"}]
	}`)

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "channel creation failed", body["error"])
}
