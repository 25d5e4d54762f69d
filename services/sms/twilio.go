package smssvc

import (
	"context"

	"github.com/pkg/errors"
	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/haid/charityconnect/core"
)

type twilioService struct {
	client *twilio.RestClient
	from   string
}

var _ core.SMSService = (*twilioService)(nil)

func NewTwilioService(conf *core.Config) core.SMSService {
	return &twilioService{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: conf.Twilio.AccountSID,
			Password: conf.Twilio.AuthToken,
		}),
		from: conf.Twilio.PhoneNumber,
	}
}

func (svc *twilioService) Enabled() bool { return true }

func (svc *twilioService) Send(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(svc.from)
	params.SetBody(body)

	msg, err := svc.client.Api.CreateMessage(params)
	if err != nil {
		return "", errors.Wrap(err, "creating twilio message")
	}
	if msg.Sid == nil {
		return "", errors.New("twilio message without SID")
	}
	return *msg.Sid, nil
}

// NewService returns the Twilio service when configured, a disabled service otherwise.
func NewService(conf *core.Config, logger core.Logger) core.SMSService {
	if conf.Twilio.Enabled() {
		return NewTwilioService(conf)
	}
	if conf.Debug {
		return NewConsoleService(logger)
	}
	return disabledService{}
}

type disabledService struct{}

func (disabledService) Enabled() bool { return false }

func (disabledService) Send(context.Context, string, string) (string, error) {
	return "", errors.New("SMS service not configured")
}
