package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/oxsci/toolgate/internal/forward"
)

// IdentityFromRequest builds the caller identity forwarded downstream. The
// bearer token is taken verbatim from the Authorization header; it is never
// verified here because this service only relays it. The user ID comes from
// the token's sub claim when the token happens to be a JWT, otherwise from
// the request's context seed.
func IdentityFromRequest(r *http.Request, seed map[string]any) forward.Identity {
	token := bearerToken(r)

	userID := extractJWTSub(token)
	if userID == "" {
		if v, ok := seed["user_id"].(string); ok {
			userID = v
		}
	}

	return forward.Identity{UserID: userID, Token: token}
}

// bearerToken returns the credential from an "Authorization: Bearer ..."
// header, or empty string when absent or malformed.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// extractJWTSub base64url-decodes the JWT payload (middle segment)
// and returns the "sub" claim. Returns empty string on any failure.
// No signature verification: the token is opaque to this service.
func extractJWTSub(token string) string {
	parts := strings.SplitN(token, ".", 3)
	if len(parts) < 2 {
		return ""
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ""
	}

	var claims struct {
		Sub string `json:"sub"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return ""
	}

	return claims.Sub
}
