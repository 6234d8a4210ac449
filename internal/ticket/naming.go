package ticket

import (
	"strings"
	"time"
)

// NormalizeOwner reduces a display name or handle to the form used in channel
// names: lowercase, with everything outside [a-z0-9-] dropped. "Tess#1" and
// "tess" normalize identically.
func NormalizeOwner(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// BuildChannelName derives the canonical ticket channel name:
// "{prefix}-{normalized owner}-{MMDDHHMM}". The minute-resolution suffix keeps
// names unique across repeated tickets by the same owner; two tickets in the
// same minute still collide and surface a platform duplicate-name error.
func BuildChannelName(prefix, owner string, t time.Time) string {
	return prefix + "-" + NormalizeOwner(owner) + "-" + t.Format("01021504")
}

// FindExisting scans the category listing for an open ticket belonging to the
// owner with the given kind prefix. Returns the first match in listing order.
// Best-effort only: the listing may be stale, so two concurrent requests can
// both see no match.
func FindExisting(listing []ChannelRef, owner, prefix string) *ChannelRef {
	want := prefix + "-" + NormalizeOwner(owner) + "-"
	for i := range listing {
		if strings.HasPrefix(listing[i].Name, want) {
			return &listing[i]
		}
	}
	return nil
}

// IsTicketChannel reports whether a channel name follows any ticket naming
// convention. Used by the interactive close path to refuse running in
// unrelated channels.
func IsTicketChannel(name string) bool {
	for _, prefix := range []string{"ticket-", "purchase-", "rewards-"} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
