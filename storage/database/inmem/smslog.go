package inmemdb

import (
	"context"
	"sort"

	"github.com/haid/charityconnect/core/notify"
)

type smsLogRepository struct {
	db *DB
}

var _ notify.Repository = (*smsLogRepository)(nil)

func NewSMSLogRepository(db *DB) notify.Repository {
	return &smsLogRepository{db: db}
}

func (repo *smsLogRepository) CreateSMSLog(_ context.Context, log notify.SmsLog) (notify.SmsLog, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.smsLogs[log.ID] = &log
	return log, nil
}

func (repo *smsLogRepository) QuerySMSLogs(context.Context) ([]notify.SmsLog, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	logs := make([]notify.SmsLog, 0, len(repo.db.smsLogs))
	for _, l := range repo.db.smsLogs {
		logs = append(logs, *l)
	}
	sort.Slice(logs, func(i, j int) bool {
		return newerFirst(logs[i].CreatedAt, logs[j].CreatedAt, logs[i].ID, logs[j].ID)
	})
	return logs, nil
}
