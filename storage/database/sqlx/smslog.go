package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/haid/charityconnect/core"
	"github.com/haid/charityconnect/core/notify"
)

const smsLogColumns = `id, phone, message, status, twilio_sid, created_at`

type smsLogRepository struct {
	db core.DB
}

var _ notify.Repository = (*smsLogRepository)(nil) // interface compliance check

func NewSMSLogRepository(db core.DB) notify.Repository {
	return &smsLogRepository{db: db}
}

func (repo *smsLogRepository) CreateSMSLog(ctx context.Context, log notify.SmsLog) (notify.SmsLog, error) {
	_, err := sqlx.NamedExecContext(ctx, repo.db, `
		INSERT INTO sms_logs (`+smsLogColumns+`)
		VALUES (:id, :phone, :message, :status, :twilio_sid, :created_at)`, log)
	if err != nil {
		return notify.SmsLog{}, errors.Wrap(err, "inserting SMS log")
	}
	return log, nil
}

func (repo *smsLogRepository) QuerySMSLogs(ctx context.Context) ([]notify.SmsLog, error) {
	logs := make([]notify.SmsLog, 0)
	if err := repo.db.SelectContext(ctx, &logs, `SELECT `+smsLogColumns+` FROM sms_logs ORDER BY created_at DESC, id`); err != nil {
		return nil, errors.Wrap(err, "querying SMS logs")
	}
	return logs, nil
}
