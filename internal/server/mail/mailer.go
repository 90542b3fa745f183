// Package mail sends password-recovery emails and decouples their delivery
// from the request/response cycle.
package mail

import "context"

// Mailer delivers a recovery link for the given token to an email address.
type Mailer interface {
	SendRecoveryEmail(ctx context.Context, email, token string) error
}
