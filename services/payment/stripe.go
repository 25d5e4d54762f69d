package paymentsvc

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/haid/charityconnect/core"
)

type stripeService struct {
	api      *client.API
	currency string
}

var _ core.PaymentService = (*stripeService)(nil)

func NewStripeService(conf *core.Config) core.PaymentService {
	api := &client.API{}
	api.Init(conf.Stripe.SecretKey, nil)
	return &stripeService{api: api, currency: conf.Stripe.Currency}
}

func fromStripe(pi *stripe.PaymentIntent) core.PaymentIntent {
	return core.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}
}

func (svc *stripeService) CreateIntent(ctx context.Context, amount float64) (core.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(core.ToMinorUnits(amount)),
		Currency: stripe.String(svc.currency),
	}
	params.Context = ctx
	params.AddMetadata("type", "donation")

	pi, err := svc.api.PaymentIntents.New(params)
	if err != nil {
		return core.PaymentIntent{}, errors.Wrap(err, "creating stripe payment intent")
	}
	return fromStripe(pi), nil
}

func (svc *stripeService) GetIntent(ctx context.Context, id string) (core.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := svc.api.PaymentIntents.Get(id, params)
	if err != nil {
		return core.PaymentIntent{}, errors.Wrap(err, "retrieving stripe payment intent")
	}
	return fromStripe(pi), nil
}

// NewService returns the Stripe service when configured; payments fail closed otherwise.
func NewService(conf *core.Config) core.PaymentService {
	if conf.Stripe.Enabled() {
		return NewStripeService(conf)
	}
	return disabledService{}
}
