package models

// User is a registered account. Mobile is the identity key used to match a
// user against informally added room players.
type User struct {
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	Mobile    string `json:"mobile"`
	Password  string `json:"password,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
}
