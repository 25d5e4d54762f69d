package notify

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// SmsLog statuses
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// SmsLog records one delivery attempt of a text message.
type SmsLog struct {
	ID        string      `json:"id" db:"id"`
	Phone     string      `json:"phone" db:"phone"`
	Message   string      `json:"message" db:"message"`
	Status    string      `json:"status" db:"status"`
	TwilioSID null.String `json:"twilioSid" db:"twilio_sid"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"` // UTC
}
