package models

// Room is a persistent group of players who organize matches together.
type Room struct {
	RoomID    int64  `json:"room_id"`
	Name      string `json:"room_name"`
	CreatedBy int64  `json:"created_by"`
	CreatedAt int64  `json:"created_at"`
}

// RoomMember is one roster entry. UserID is set for registered members;
// informally added players are identified by mobile alone. The active roster
// is unique by mobile.
type RoomMember struct {
	ID               int64  `json:"id"`
	RoomID           int64  `json:"room_id"`
	UserID           int64  `json:"user_id,omitempty"`
	Name             string `json:"name"`
	Mobile           string `json:"mobile,omitempty"`
	Role             string `json:"role"` // admin, member
	IndividualPoints int    `json:"individual_points"`
	AvatarURL        string `json:"avatar_url,omitempty"`
	IsActive         bool   `json:"is_active"`
	AddedBy          int64  `json:"added_by,omitempty"`
	JoinedAt         int64  `json:"joined_at"`
}
