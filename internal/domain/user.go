package domain

// User is an authenticated dashboard identity as returned by the backend.
// Passwords are never held on this type.
type User struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Username    string  `json:"username"`
	Role        string  `json:"role"`
	Permissions PageSet `json:"permissions"`
}

// CanAccess reports whether the user may view page p
func (u *User) CanAccess(p PageID) bool {
	if u == nil {
		return false
	}
	return u.Permissions.Has(p)
}

// IsAdmin reports admin-page permission. Role is display-only and not consulted.
func (u *User) IsAdmin() bool {
	return u.CanAccess(PageAdmin)
}

// Credentials are submitted once at login
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserInput carries create and update payloads for the user-management endpoint.
// An empty Password on update means "keep the stored password".
type UserInput struct {
	Name        string  `json:"name"`
	Username    string  `json:"username"`
	Role        string  `json:"role"`
	Password    string  `json:"password,omitempty"`
	Permissions PageSet `json:"permissions"`
}

// ToUser projects the input onto a User with the given id
func (in UserInput) ToUser(id int64) User {
	return User{
		ID:          id,
		Name:        in.Name,
		Username:    in.Username,
		Role:        in.Role,
		Permissions: in.Permissions,
	}
}
