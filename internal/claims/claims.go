// Package claims reads the role hint out of a bearer token.
//
// The token's signature is NOT verified: the role only decides which
// commands the client offers. The server re-checks every request, so a
// forged claim gains nothing but a 401/403.
package claims

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/me/audictl/pkg/model"
)

// ErrUnparseable is returned for any token the reader cannot use: wrong
// segment count, bad base64url, a payload that is not a JSON object, or a
// missing or non-string role claim. Callers must treat it as "no valid
// session".
var ErrUnparseable = errors.New("token claims unparseable")

// Claims is the payload shape issued by the booking API. Read fills only
// Role and Username; the header and registered claims are never looked at.
type Claims struct {
	jwt.RegisteredClaims
	Role     string `json:"role"`
	Username string `json:"username,omitempty"`
}

var parser = jwt.NewParser()

// Read decodes the payload segment of token without verifying it. Only the
// middle segment is decoded, so an unusual header or an oddly typed
// registered claim does not hide a readable role.
func Read(token string) (*Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrUnparseable
	}
	payload, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, ErrUnparseable
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, ErrUnparseable
	}

	c := &Claims{}
	if err := json.Unmarshal(fields["role"], &c.Role); err != nil || c.Role == "" {
		return nil, ErrUnparseable
	}
	// username is display-only; a non-string value is dropped
	if raw, ok := fields["username"]; ok {
		if err := json.Unmarshal(raw, &c.Username); err != nil {
			c.Username = ""
		}
	}
	return c, nil
}

// Role returns the role claim of token.
func Role(token string) (model.Role, error) {
	c, err := Read(token)
	if err != nil {
		return "", err
	}
	return model.Role(c.Role), nil
}

// IsAdmin reports whether token parses and carries the administrator role.
// Any failure answers false.
func IsAdmin(token string) bool {
	role, err := Role(token)
	return err == nil && role.IsAdmin()
}
