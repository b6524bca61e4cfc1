package entity

// Cookie is one record of a persisted browser session.
// Field names follow the JSON layout browsers export cookies in, so existing
// cookies.json files stay loadable.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"` // unix seconds, -1 for session cookies
	Size     int64   `json:"size,omitempty"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	Session  bool    `json:"session"`
	SameSite string  `json:"sameSite,omitempty"`
	Priority string  `json:"priority,omitempty"`
}

// Session is the authentication state carried across runs.
type Session []Cookie

// Empty reports whether there is nothing to restore.
func (s Session) Empty() bool {
	return len(s) == 0
}
