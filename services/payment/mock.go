package paymentsvc

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/haid/charityconnect/core"
)

// ServiceMock keeps payment intents in memory. Created intents succeed unless Status is set.
type ServiceMock struct {
	Currency string
	Status   string

	mu      sync.Mutex
	seq     int
	intents map[string]core.PaymentIntent
}

var _ core.PaymentService = (*ServiceMock)(nil)

func NewServiceMock() *ServiceMock {
	return &ServiceMock{Currency: "inr", intents: make(map[string]core.PaymentIntent)}
}

func (svc *ServiceMock) CreateIntent(_ context.Context, amount float64) (core.PaymentIntent, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	status := svc.Status
	if status == "" {
		status = core.PaymentSucceeded
	}
	svc.seq++
	id := fmt.Sprintf("pi_%06d", svc.seq)
	pi := core.PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       status,
		Amount:       core.ToMinorUnits(amount),
		Currency:     svc.Currency,
	}
	svc.intents[id] = pi
	return pi, nil
}

// AddIntent registers a payment intent of `amount` with the given status.
func (svc *ServiceMock) AddIntent(id, status string, amount float64) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.intents[id] = core.PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       status,
		Amount:       core.ToMinorUnits(amount),
		Currency:     svc.Currency,
	}
}

func (svc *ServiceMock) GetIntent(_ context.Context, id string) (core.PaymentIntent, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	pi, ok := svc.intents[id]
	if !ok {
		return core.PaymentIntent{}, errors.Errorf("no such payment intent: %s", id)
	}
	return pi, nil
}
