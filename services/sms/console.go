package smssvc

import (
	"context"

	"github.com/google/uuid"

	"github.com/haid/charityconnect/core"
)

type consoleService struct {
	logger core.Logger
}

var _ core.SMSService = (*consoleService)(nil)

// NewConsoleService returns an SMSService writing messages to the logger instead of delivering them.
func NewConsoleService(logger core.Logger) core.SMSService {
	return &consoleService{logger: logger}
}

func (svc *consoleService) Enabled() bool { return true }

func (svc *consoleService) Send(_ context.Context, to, body string) (string, error) {
	sid := "SM" + uuid.NewString()
	svc.logger.Info("SMS to "+to+": "+body, sid)
	return sid, nil
}
