package model

// Session is the client-held login state. Fields are independent: a stale
// role or username without a token still means anonymous.
type Session struct {
	Token    string `json:"token,omitempty"`
	Role     string `json:"role,omitempty"`
	Username string `json:"username,omitempty"`
}

// HasToken reports whether a bearer token is present.
func (s Session) HasToken() bool {
	return s.Token != ""
}

// IsZero reports whether no field is set.
func (s Session) IsZero() bool {
	return s == Session{}
}
