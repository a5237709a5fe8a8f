package application

import "github.com/oksasatya/users-service/internal/domain/entity"

// DateLayout is the wire format for dates of birth.
const DateLayout = "2006-01-02"

type ProfileDTO struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
}

// UserDTO is the external read shape of a user.
type UserDTO struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Profile  ProfileDTO `json:"profile"`
}

// ToUserDTO projects the aggregate. It unwraps the email value object and
// leaves out the profile's internal identifiers.
func ToUserDTO(u *entity.User) UserDTO {
	p := u.Profile()
	return UserDTO{
		ID:       u.ID().String(),
		Username: u.Username(),
		Email:    u.Email().Value(),
		Profile: ProfileDTO{
			FirstName:   p.FirstName(),
			LastName:    p.LastName(),
			DateOfBirth: p.DateOfBirth().Format(DateLayout),
		},
	}
}
