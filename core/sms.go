package core

import "context"

// SMSService is any service that can deliver a text message to a phone number.
type SMSService interface {
	// Enabled reports whether the service is configured to actually deliver messages.
	Enabled() bool
	// Send delivers body to the phone number `to` and returns the provider's message ID.
	Send(ctx context.Context, to, body string) (sid string, err error)
}
