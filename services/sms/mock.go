package smssvc

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/haid/charityconnect/core"
)

// Message is a text message recorded by ServiceMock.
type Message struct {
	To   string
	Body string
}

// ServiceMock records messages. Sends fail with Err when it is set.
type ServiceMock struct {
	Err      error
	Disabled bool

	mu   sync.Mutex
	sent []Message
	seq  int
}

var _ core.SMSService = (*ServiceMock)(nil)

func NewServiceMock() *ServiceMock {
	return &ServiceMock{}
}

func (svc *ServiceMock) Enabled() bool { return !svc.Disabled }

func (svc *ServiceMock) Send(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if svc.Err != nil {
		return "", errors.Wrap(svc.Err, "sending SMS")
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.seq++
	svc.sent = append(svc.sent, Message{To: to, Body: body})
	return fmt.Sprintf("SM%032d", svc.seq), nil
}

// SentMessages returns the messages sent so far.
func (svc *ServiceMock) SentMessages() []Message {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]Message(nil), svc.sent...)
}

// Reset forgets sent messages and clears Err & Disabled.
func (svc *ServiceMock) Reset() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.sent = nil
	svc.Err = nil
	svc.Disabled = false
}
