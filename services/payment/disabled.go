package paymentsvc

import (
	"context"

	"github.com/haid/charityconnect/core"
)

// disabledService is used when no payment provider is configured.
type disabledService struct{}

var _ core.PaymentService = disabledService{}

func NewDisabledService() core.PaymentService {
	return disabledService{}
}

func (disabledService) CreateIntent(context.Context, float64) (core.PaymentIntent, error) {
	return core.PaymentIntent{}, core.ErrPaymentUnavailable
}

func (disabledService) GetIntent(context.Context, string) (core.PaymentIntent, error) {
	return core.PaymentIntent{}, core.ErrPaymentUnavailable
}
