package needy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/haid/charityconnect/core"
	"github.com/haid/charityconnect/core/notify"
)

var (
	// errors
	ErrNotFound          = errors.New("needy person not found")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// Actions
const (
	ActionVerify   = "verify"
	ActionReject   = "reject"
	ActionHelped   = "helped"
	ActionUnhelp   = "unhelp"
	ActionUnverify = "unverify"
	ActionUnreject = "unreject"
)

type (
	Repository interface {
		CreatePerson(ctx context.Context, p Person) (Person, error)
		// QueryPersons applies AND operation on available QueryFilter fields.
		// Persons are returned newest first when no ordering is given.
		QueryPersons(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Person, error)
		// QueryAllPersons returns every Person, newest first.
		QueryAllPersons(ctx context.Context) ([]Person, error)
		GetPerson(ctx context.Context, id string) (Person, error)
		// UpdatePersonStatus sets `verified` & `status` in one write; last write wins.
		UpdatePersonStatus(ctx context.Context, id string, verified bool, status string) (Person, error)
	}

	// action describes the state one of the admin operations moves a Person to.
	action struct {
		verified bool
		status   string
		message  string
		notify   func(p Person) string
	}

	Service struct {
		repo     Repository
		notifier notify.Notifier
		strict   bool
		now      func() time.Time
	}
)

var actions = map[string]action{
	ActionVerify: {
		verified: true, status: StatusVerified, message: "Person verified successfully",
		notify: func(p Person) string {
			return fmt.Sprintf("Dear %s, the request for %s has been verified by HAID. Our volunteers will reach out with assistance soon. - Team HAID", p.ReporterName, p.Name)
		},
	},
	ActionReject: {
		verified: false, status: StatusRejected, message: "Person rejected",
		notify: func(p Person) string {
			return fmt.Sprintf("Dear %s, we could not verify the request for %s at this time. Please contact HAID for details. - Team HAID", p.ReporterName, p.Name)
		},
	},
	ActionHelped: {
		verified: true, status: StatusHelped, message: "Person marked as helped",
		notify: func(p Person) string {
			return fmt.Sprintf("Dear %s, assistance has been delivered to %s. Thank you for helping us reach those in need. - Team HAID", p.ReporterName, p.Name)
		},
	},
	ActionUnhelp:   {verified: true, status: StatusVerified, message: "Person marked as not helped"},
	ActionUnverify: {verified: false, status: StatusPending, message: "Person verification removed"},
	ActionUnreject: {verified: false, status: StatusPending, message: "Person rejection removed"},
}

func registrationMessage(p Person) string {
	return fmt.Sprintf("Thank you %s for registering %s with HAID. Our team will verify the information and contact you soon. - Team HAID", p.ReporterName, p.Name)
}

// IsAction reports whether `name` is one of the admin operations.
func IsAction(name string) bool {
	_, ok := actions[name]
	return ok
}

// ActionMessage returns the human readable outcome of an admin operation.
func ActionMessage(name string) string {
	return actions[name].message
}

// NewService returns a Service; with `strict` set, admin operations must follow Transitions.
func NewService(repo Repository, notifier notify.Notifier, strict bool) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		strict:   strict,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (svc *Service) Register(ctx context.Context, np NewPerson) (Person, error) {
	p := Person{
		ID:                   uuid.NewString(),
		Name:                 np.Name,
		Gender:               np.Gender,
		Address:              np.Address,
		City:                 np.City,
		State:                np.State,
		Pincode:              np.Pincode,
		Needs:                np.Needs,
		Situation:            np.Situation,
		ReporterName:         np.ReporterName,
		ReporterPhone:        np.ReporterPhone,
		ReporterEmail:        np.ReporterEmail,
		ReporterRelationship: np.ReporterRelationship,
		Verified:             false,
		Status:               StatusPending,
		CreatedAt:            svc.now(),
	}
	if np.Age != nil {
		p.Age = *np.Age
	}
	if np.Phone != "" {
		p.Phone = null.StringFrom(np.Phone)
	}
	if np.FamilySize != nil {
		p.FamilySize = null.IntFrom(*np.FamilySize)
	}
	if np.Income != "" {
		p.Income = null.StringFrom(np.Income)
	}

	p, err := svc.repo.CreatePerson(ctx, p)
	if err != nil {
		return Person{}, errors.Wrap(err, "creating needy person")
	}

	svc.notifier.Notify(ctx, p.ReporterPhone, registrationMessage(p))
	return p, nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Person, error) {
	filter.Clean()
	return svc.repo.QueryPersons(ctx, filter, ordering...)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Person, error) {
	return svc.repo.QueryAllPersons(ctx)
}

func (svc *Service) Get(ctx context.Context, id string) (Person, error) {
	if !core.IsUUID(id) {
		return Person{}, ErrNotFound
	}
	return svc.repo.GetPerson(ctx, id)
}

// Apply runs the admin operation `name` on the Person `id`.
// Permissive mode applies every operation from any status; repeating one is a no-op on state
// but notifies the reporter again.
func (svc *Service) Apply(ctx context.Context, id, name string) (Person, error) {
	act, ok := actions[name]
	if !ok {
		return Person{}, errors.Errorf("unknown action %q", name)
	}
	if !core.IsUUID(id) {
		return Person{}, ErrNotFound
	}

	if svc.strict {
		p, err := svc.repo.GetPerson(ctx, id)
		if err != nil {
			return Person{}, err
		}
		if !CanTransition(p.Status, act.status) {
			return Person{}, errors.Wrapf(ErrInvalidTransition, "%s -> %s", p.Status, act.status)
		}
	}

	p, err := svc.repo.UpdatePersonStatus(ctx, id, act.verified, act.status)
	if err != nil {
		return Person{}, err
	}

	if act.notify != nil {
		svc.notifier.Notify(ctx, p.ReporterPhone, act.notify(p))
	}
	return p, nil
}

func (svc *Service) Verify(ctx context.Context, id string) (Person, error) {
	return svc.Apply(ctx, id, ActionVerify)
}

func (svc *Service) Reject(ctx context.Context, id string) (Person, error) {
	return svc.Apply(ctx, id, ActionReject)
}

func (svc *Service) Helped(ctx context.Context, id string) (Person, error) {
	return svc.Apply(ctx, id, ActionHelped)
}

func (svc *Service) Unhelp(ctx context.Context, id string) (Person, error) {
	return svc.Apply(ctx, id, ActionUnhelp)
}

func (svc *Service) Unverify(ctx context.Context, id string) (Person, error) {
	return svc.Apply(ctx, id, ActionUnverify)
}

func (svc *Service) Unreject(ctx context.Context, id string) (Person, error) {
	return svc.Apply(ctx, id, ActionUnreject)
}
