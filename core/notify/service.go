package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/haid/charityconnect/core"
)

var errSMSNotConfigured = errors.New("SMS service not configured")

type (
	Repository interface {
		CreateSMSLog(ctx context.Context, log SmsLog) (SmsLog, error)
		// QuerySMSLogs returns all logs, newest first.
		QuerySMSLogs(ctx context.Context) ([]SmsLog, error)
	}

	// Notifier delivers best-effort text messages.
	Notifier interface {
		Notify(ctx context.Context, phone, message string)
	}

	Service struct {
		repo   Repository
		sms    core.SMSService
		logger core.Logger
		now    func() time.Time
	}
)

var _ Notifier = (*Service)(nil)

func NewService(repo Repository, sms core.SMSService, logger core.Logger) *Service {
	return &Service{
		repo:   repo,
		sms:    sms,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Notify sends `message` to `phone` and records the attempt.
// Delivery and logging failures are logged, never returned.
func (svc *Service) Notify(ctx context.Context, phone, message string) {
	log := SmsLog{
		ID:        uuid.NewString(),
		Phone:     phone,
		Message:   message,
		Status:    StatusFailed,
		CreatedAt: svc.now(),
	}

	if svc.sms == nil || !svc.sms.Enabled() {
		svc.logger.Warn("notify.Notify: "+errSMSNotConfigured.Error(), core.MaskPhone(phone))
	} else if sid, err := svc.sms.Send(ctx, phone, message); err != nil {
		svc.logger.Error("notify.Notify: sending SMS", errors.Wrap(err, "sending SMS"), core.MaskPhone(phone))
	} else {
		log.Status = StatusSent
		log.TwilioSID = null.StringFrom(sid)
		svc.logger.Info("notify.Notify: SMS sent", sid)
	}

	if _, err := svc.repo.CreateSMSLog(ctx, log); err != nil {
		svc.logger.Error("notify.Notify: recording SMS log", errors.Wrap(err, "creating SMS log"))
	}
}

func (svc *Service) QueryLogs(ctx context.Context) ([]SmsLog, error) {
	logs, err := svc.repo.QuerySMSLogs(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying SMS logs")
	}
	return logs, nil
}
