package inmemdb

import (
	"strings"
	"sync"
	"time"

	"github.com/haid/charityconnect/core/donor"
	"github.com/haid/charityconnect/core/needy"
	"github.com/haid/charityconnect/core/notify"
)

// DB is an in-memory store. Each instance is isolated; one lock guards all of its tables.
type DB struct {
	mutex sync.RWMutex

	donors            map[string]*donor.Donor
	donorsByEmail     map[string]string // {email: id}
	itemDonations     map[string]*donor.ItemDonation
	monetaryDonations map[string]*donor.MonetaryDonation
	needyPersons      map[string]*needy.Person
	smsLogs           map[string]*notify.SmsLog
}

func NewDB() *DB {
	db := &DB{}
	db.reset()
	return db
}

func (db *DB) reset() {
	db.donors = make(map[string]*donor.Donor)
	db.donorsByEmail = make(map[string]string)
	db.itemDonations = make(map[string]*donor.ItemDonation)
	db.monetaryDonations = make(map[string]*donor.MonetaryDonation)
	db.needyPersons = make(map[string]*needy.Person)
	db.smsLogs = make(map[string]*notify.SmsLog)
}

// Reset empties every table.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.reset()
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// newerFirst orders records by creation time desc, then ID asc.
func newerFirst(ti, tj time.Time, idi, idj string) bool {
	if !ti.Equal(tj) {
		return ti.After(tj)
	}
	return idi < idj
}
