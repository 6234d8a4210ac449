package watcher

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/api/dto"
	"github.com/spec-kit/ticket-bot/internal/domain"
)

// PurchaseOpener is the slice of the ticket service the watcher needs.
type PurchaseOpener interface {
	OpenPurchase(ctx context.Context, notice *domain.PurchaseNotice) (*domain.Ticket, error)
}

// Watcher polls a directory for ticket-request files dropped by the external
// storefront and converts them into purchase tickets. A file is deleted only
// after its ticket is created; failures leave it in place for the next poll,
// with no backoff and no retry limit.
type Watcher struct {
	dir      string
	interval time.Duration
	tickets  PurchaseOpener
	logger   *zap.Logger
}

// New constructs the watcher.
func New(dir string, interval time.Duration, tickets PurchaseOpener, logger *zap.Logger) *Watcher {
	return &Watcher{dir: dir, interval: interval, tickets: tickets, logger: logger}
}

// Run polls until the context is cancelled. Sweep errors are logged and never
// terminate the loop.
func (w *Watcher) Run(ctx context.Context) {
	w.logger.Info("ticket file watcher started",
		zap.String("dir", w.dir),
		zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("ticket file watcher stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep processes every ticket file currently in the directory.
func (w *Watcher) sweep(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Warn("cannot read tickets directory", zap.Error(err))
		}
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !isTicketFile(entry.Name()) {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if err := w.processFile(ctx, path); err != nil {
			// Leave the file for the next poll.
			w.logger.Error("failed to process ticket file",
				zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		if err := os.Remove(path); err != nil {
			w.logger.Warn("failed to remove processed ticket file",
				zap.String("file", entry.Name()), zap.Error(err))
		}
	}
}

func (w *Watcher) processFile(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var payload dto.PurchasePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	ticket, err := w.tickets.OpenPurchase(ctx, payload.ToNotice())
	if err != nil {
		return err
	}
	w.logger.Info("ticket created from file",
		zap.String("file", filepath.Base(path)),
		zap.String("channel", ticket.ChannelName))
	return nil
}

func isTicketFile(name string) bool {
	return strings.HasPrefix(name, "ticket_") && strings.HasSuffix(name, ".json")
}
