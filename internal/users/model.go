package users

import "time"

const (
	DefaultProfileImage = "/default.jpg"
	DefaultPlan         = "Free"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	ProfileImage string    `json:"profileImage"`
	Plan         string    `json:"plan"`
	Industry     string    `json:"industry,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile is the public view of a user returned with a session.
type Profile struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage"`
	Plan         string `json:"plan"`
}

func (u User) Profile() Profile {
	return Profile{Name: u.Name, Email: u.Email, ProfileImage: u.ProfileImage, Plan: u.Plan}
}
