package dto

import (
	"time"

	domainuser "autofleet/internal/domain/user"
)

// UserProfile deliberately omits the password hash.
type UserProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserList struct {
	Items []UserProfile `json:"items"`
	Total int           `json:"total"`
}

func MapUserProfile(u *domainuser.User) UserProfile {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, string(r))
	}
	return UserProfile{
		ID:        string(u.ID),
		Email:     u.Email,
		Name:      u.Name,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func MapUserList(items []*domainuser.User, total int) UserList {
	out := UserList{Items: make([]UserProfile, 0, len(items)), Total: total}
	for _, u := range items {
		out.Items = append(out.Items, MapUserProfile(u))
	}
	return out
}
