package domain

// Actor is whoever triggered an action: a Discord user plus their guild roles.
// Supplied fresh per interaction, never stored.
type Actor struct {
	ID          string
	Username    string
	DisplayName string
	Roles       []string
}

// AccessPolicy is the static staff-access configuration, loaded once at
// startup and immutable for the process lifetime.
type AccessPolicy struct {
	OwnerID        string
	AllowedUserIDs []string
	AllowedRoleIDs []string
}

// Authorize reports whether the actor may manage tickets. Checks run in
// order and short-circuit: server owner, allowed-user list, role overlap.
func Authorize(actor Actor, policy AccessPolicy) bool {
	if actor.ID != "" && actor.ID == policy.OwnerID {
		return true
	}
	for _, id := range policy.AllowedUserIDs {
		if actor.ID == id {
			return true
		}
	}
	for _, role := range actor.Roles {
		for _, allowed := range policy.AllowedRoleIDs {
			if role == allowed {
				return true
			}
		}
	}
	return false
}
