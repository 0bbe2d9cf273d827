package forms

import "strings"

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (f *LoginForm) rules() []rule {
	const msg = "Please enter both email and password"
	return []rule{
		{"Email", "required", msg},
		{"Password", "required", msg},
	}
}

func (f *LoginForm) normalize() {
	f.Email = strings.TrimSpace(f.Email)
}

// RegisterForm is the sign-up form.
type RegisterForm struct {
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func (f *RegisterForm) rules() []rule {
	const required = "All fields are required"
	return []rule{
		{"Username", "required", required},
		{"Email", "required", required},
		{"Password", "required", required},
		{"ConfirmPassword", "required", required},
		{"ConfirmPassword", "eqfield", "Passwords do not match"},
		{"Password", "min", "Password must be at least 8 characters"},
		{"Email", "email", "Please enter a valid email address"},
	}
}

func (f *RegisterForm) normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
}

// CreateUserForm is the admin "add user" form. A nil IsApproved means approved.
type CreateUserForm struct {
	Username   string `json:"username" validate:"required,min=2"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Role       string `json:"role" validate:"omitempty,oneof=admin standard"`
	IsApproved *bool  `json:"isApproved"`
}

func (f *CreateUserForm) rules() []rule {
	return []rule{
		{"Username", "*", "Username must be at least 2 characters"},
		{"Email", "*", "Please enter a valid email address"},
		{"Password", "*", "Password must be at least 8 characters"},
		{"Role", "oneof", "Role must be admin or standard"},
	}
}

func (f *CreateUserForm) normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
}

// Approved resolves the approval flag, defaulting to true.
func (f *CreateUserForm) Approved() bool {
	return f.IsApproved == nil || *f.IsApproved
}

// ResetPasswordForm is the admin password reset form.
type ResetPasswordForm struct {
	Password string `json:"password" validate:"required,min=8"`
}

func (f *ResetPasswordForm) rules() []rule {
	return []rule{{"Password", "*", "Password must be at least 8 characters"}}
}
