package domain

// PurchaseItem is one line of a storefront order. Amount and Price are kept
// as the storefront sends them ("200M", "1x", "4.99"), never parsed.
type PurchaseItem struct {
	Name   string
	Amount string
	Price  string
}

// PurchaseNotice carries one storefront purchase from an inbound adapter to
// the ticket lifecycle. Consumed exactly once.
type PurchaseNotice struct {
	Buyer         string
	Handle        string
	TransactionID string
	TotalAmount   string
	Store         string
	Items         []PurchaseItem
}
