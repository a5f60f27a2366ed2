package dto

import "net/url"

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// FromForm implements FormDecoder.
func (r *RegisterRequest) FromForm(form url.Values) {
	r.Email = form.Get("email")
	r.FirstName = form.Get("first_name")
	r.LastName = form.Get("last_name")
	r.Password = form.Get("password")
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// FromForm implements FormDecoder.
func (r *LoginRequest) FromForm(form url.Values) {
	r.Email = form.Get("email")
	r.Password = form.Get("password")
}

// LoginResponse carries the access token on successful login.
type LoginResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
}
