package needy

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/haid/charityconnect/core"
)

// Statuses
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusHelped   = "helped"
	StatusRejected = "rejected"
)

var (
	AllStatuses = []string{StatusPending, StatusVerified, StatusHelped, StatusRejected}

	// Transitions lists the moves the admin workflow is meant to make from each status.
	// Only enforced when the Service runs in strict mode.
	Transitions = map[string][]string{
		StatusPending:  {StatusVerified, StatusRejected},
		StatusVerified: {StatusHelped, StatusPending},
		StatusHelped:   {StatusVerified},
		StatusRejected: {StatusPending},
	}
)

// CanTransition reports whether `to` may follow `from` in the admin workflow.
// Staying in the same status is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range Transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Person struct {
	ID                   string      `json:"id" db:"id"`
	Name                 string      `json:"name" db:"name"`
	Age                  int         `json:"age" db:"age"`
	Gender               string      `json:"gender" db:"gender"`
	Phone                null.String `json:"phone" db:"phone"`
	FamilySize           null.Int    `json:"familySize" db:"family_size"`
	Address              string      `json:"address" db:"address"`
	City                 string      `json:"city" db:"city"`
	State                string      `json:"state" db:"state"`
	Pincode              string      `json:"pincode" db:"pincode"`
	Needs                []string    `json:"needs" db:"-"`
	Situation            string      `json:"situation" db:"situation"`
	Income               null.String `json:"income" db:"income"`
	ReporterName         string      `json:"reporterName" db:"reporter_name"`
	ReporterPhone        string      `json:"reporterPhone" db:"reporter_phone"`
	ReporterEmail        string      `json:"reporterEmail" db:"reporter_email"`
	ReporterRelationship string      `json:"reporterRelationship" db:"reporter_relationship"`
	Verified             bool        `json:"verified" db:"verified"`
	Status               string      `json:"status" db:"status"`
	CreatedAt            time.Time   `json:"createdAt" db:"created_at"` // UTC
}

// NewPerson contains information needed to register a Person.
type NewPerson struct {
	Name                 string   `json:"name" validate:"required"`
	Age                  *int     `json:"age" validate:"required,min=0,max=150"`
	Gender               string   `json:"gender" validate:"required"`
	Phone                string   `json:"phone"`
	FamilySize           *int     `json:"familySize" validate:"omitempty,min=1"`
	Address              string   `json:"address" validate:"required"`
	City                 string   `json:"city" validate:"required"`
	State                string   `json:"state" validate:"required"`
	Pincode              string   `json:"pincode" validate:"required,pincode"`
	Needs                []string `json:"needs" validate:"required,min=1,dive,required"`
	Situation            string   `json:"situation" validate:"required"`
	Income               string   `json:"income" validate:"omitempty,money"`
	ReporterName         string   `json:"reporterName" validate:"required"`
	ReporterPhone        string   `json:"reporterPhone" validate:"required"`
	ReporterEmail        string   `json:"reporterEmail" validate:"required,email"`
	ReporterRelationship string   `json:"reporterRelationship" validate:"required"`
}

func (np *NewPerson) Validate(validate *validator.Validate) error {
	np.Name = core.CleanString(np.Name)
	np.Gender = core.CleanString(np.Gender)
	np.Phone = core.CleanString(np.Phone)
	np.Address = core.CleanString(np.Address)
	np.City = core.CleanString(np.City)
	np.State = core.CleanString(np.State)
	np.Pincode = core.CleanString(np.Pincode)
	np.Situation = core.CleanString(np.Situation)
	np.Income = core.CleanString(np.Income)
	np.ReporterName = core.CleanString(np.ReporterName)
	np.ReporterPhone = core.CleanString(np.ReporterPhone)
	np.ReporterEmail = core.CleanString(np.ReporterEmail, true /* lower */)
	np.ReporterRelationship = core.CleanString(np.ReporterRelationship)
	for i, need := range np.Needs {
		np.Needs[i] = core.CleanString(need)
	}
	return validate.Struct(np)
}

type QueryFilter struct {
	Status   string `query:"status"`
	Verified *bool  `query:"verified"`
	City     string `query:"city"`
	// Search does a case-insensitive match on one of Person.Name, Person.City or Person.Situation.
	Search string `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Status == "" && qf.Verified == nil && qf.City == "" && qf.Search == ""
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.City = core.CleanString(qf.City)
	qf.Search = core.CleanString(qf.Search)
}
