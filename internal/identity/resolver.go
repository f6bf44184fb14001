package identity

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Where guest ids travel.
const (
	GuestHeader = "X-Guest-ID"
	GuestCookie = "guest_id"
)

// Resolver derives an Identity from request state only.
type Resolver struct {
	tokens *TokenManager
}

// NewResolver creates a resolver that verifies bearer tokens with tokens.
func NewResolver(tokens *TokenManager) *Resolver {
	return &Resolver{tokens: tokens}
}

// Resolve inspects the Authorization header, then the guest header, then the
// guest cookie. A bearer token that fails verification is an error; a
// malformed guest id is ignored.
func (r *Resolver) Resolve(req *http.Request) (Identity, error) {
	id := Identity{GuestID: guestID(req)}

	if token, ok := bearerToken(req); ok {
		claims, err := r.tokens.Verify(token)
		if err != nil {
			return Identity{}, err
		}
		id.Kind = Authenticated
		id.UserID = claims.SubjectID()
		id.Role = claims.Role
		return id, nil
	}

	if id.GuestID != "" {
		id.Kind = GuestIdentified
	}
	return id, nil
}

func bearerToken(req *http.Request) (string, bool) {
	h := req.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func guestID(req *http.Request) string {
	if v := normalizeGuestID(req.Header.Get(GuestHeader)); v != "" {
		return v
	}
	if c, err := req.Cookie(GuestCookie); err == nil {
		return normalizeGuestID(c.Value)
	}
	return ""
}

func normalizeGuestID(v string) string {
	parsed, err := uuid.Parse(strings.TrimSpace(v))
	if err != nil {
		return ""
	}
	return parsed.String()
}
