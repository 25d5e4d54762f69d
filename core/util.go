package core

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// MaskEmail hides the local part of an email address except its first and last characters.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	local, domain := email[:at], email[at+1:]
	if len(local) > 2 {
		local = local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:]
	}
	return local + "@" + domain
}

// MaskPhone hides all but the first two and last two characters of a phone number.
func MaskPhone(phone string) string {
	if len(phone) < 4 {
		return phone
	}
	return phone[:2] + strings.Repeat("*", len(phone)-4) + phone[len(phone)-2:]
}

const receiptAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewReceiptNumber returns a human friendly receipt reference: HAID-<6 digits>-<6 alnum>.
func NewReceiptNumber(now time.Time) string {
	var suffix strings.Builder
	for i := 0; i < 6; i++ {
		suffix.WriteByte(receiptAlphabet[rand.Intn(len(receiptAlphabet))])
	}
	return fmt.Sprintf("HAID-%06d-%s", now.UnixNano()/int64(time.Millisecond)%1000000, suffix.String())
}

// FormatAmount renders a decimal string with thousands separators and at most 2 fraction digits, eg. "1,500".
// Unparseable amounts are returned unchanged.
func FormatAmount(amount string) string {
	f, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return amount
	}
	s := strconv.FormatFloat(f, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")

	intPart, frac := s, ""
	if i := strings.Index(s, "."); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString(frac)
	return b.String()
}

// ParseAmount parses a decimal string; unparseable amounts count as zero.
func ParseAmount(amount string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil {
		return 0
	}
	return f
}

// IsUUID reports whether `id` is a UUID in its canonical 36 characters form.
func IsUUID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
