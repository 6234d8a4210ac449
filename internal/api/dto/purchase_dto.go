package dto

import (
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// PurchaseItemPayload is one order line as the storefront sends it.
type PurchaseItemPayload struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Price  string `json:"price,omitempty"`
}

// PurchasePayload is the webhook and ticket-file body. The same shape arrives
// on both paths; only the file variant carries store and price information.
type PurchasePayload struct {
	Buyer         string                `json:"buyer"`
	Discord       string                `json:"discord"`
	TransactionID string                `json:"transactionId"`
	TotalAmount   string                `json:"totalAmount"`
	Store         string                `json:"store,omitempty"`
	Items         []PurchaseItemPayload `json:"items"`
}

// Validate checks the fields the ticket flow cannot work without.
func (p PurchasePayload) Validate() error {
	missing := []string{}
	if p.Buyer == "" {
		missing = append(missing, "buyer")
	}
	if len(p.Items) == 0 {
		missing = append(missing, "items")
	}
	if len(missing) > 0 {
		return errorutil.NewMalformedPayload("purchase payload missing required fields",
			map[string]any{"missing": missing})
	}
	return nil
}

// ToNotice converts the payload into the domain value consumed by the
// lifecycle controller.
func (p PurchasePayload) ToNotice() *domain.PurchaseNotice {
	items := make([]domain.PurchaseItem, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, domain.PurchaseItem{
			Name:   item.Name,
			Amount: item.Amount,
			Price:  item.Price,
		})
	}
	return &domain.PurchaseNotice{
		Buyer:         p.Buyer,
		Handle:        p.Discord,
		TransactionID: p.TransactionID,
		TotalAmount:   p.TotalAmount,
		Store:         p.Store,
		Items:         items,
	}
}
