package model

import "time"

// Principal is the identity asserted by a verified bearer token.
type Principal struct {
	Subject   string
	TokenID   string
	ExpiresAt time.Time
}
