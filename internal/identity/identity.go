// Package identity works out who is calling: a signed-in user, a guest with
// a server-side cart, or an anonymous browser whose state lives in cookies.
package identity

import "context"

// Kind classifies the caller.
type Kind int

const (
	Unidentified Kind = iota
	GuestIdentified
	Authenticated
)

func (k Kind) String() string {
	switch k {
	case Authenticated:
		return "authenticated"
	case GuestIdentified:
		return "guest"
	default:
		return "unidentified"
	}
}

// RoleAdmin may write to the catalog.
const RoleAdmin = "admin"

// Identity is the resolved caller. GuestID may be set for an authenticated
// caller when the request still carries the guest id it used before signing in.
type Identity struct {
	Kind    Kind
	UserID  string
	GuestID string
	Role    string
}

// OwnerKey is the key of the caller's server-side cart and wishlist. It is
// empty for an unidentified caller.
func (id Identity) OwnerKey() string {
	switch id.Kind {
	case Authenticated:
		return UserOwnerKey(id.UserID)
	case GuestIdentified:
		return GuestOwnerKey(id.GuestID)
	default:
		return ""
	}
}

// UserOwnerKey builds the owner key of a signed-in user.
func UserOwnerKey(userID string) string { return "user:" + userID }

// GuestOwnerKey builds the owner key of a guest.
func GuestOwnerKey(guestID string) string { return "guest:" + guestID }

// IsAdmin reports whether the caller may manage the catalog.
func (id Identity) IsAdmin() bool {
	return id.Kind == Authenticated && id.Role == RoleAdmin
}

type ctxKey struct{}

// NewContext stores id in ctx.
func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by NewContext, or an Unidentified
// identity.
func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(ctxKey{}).(Identity)
	return id
}

// RoleFromContext adapts the stored identity to middleware.RoleFunc.
func RoleFromContext(ctx context.Context) (string, bool) {
	id := FromContext(ctx)
	return id.Role, id.Kind == Authenticated
}
