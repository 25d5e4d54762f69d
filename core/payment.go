package core

import (
	"context"
	"math"
)

// payment intent statuses
const PaymentSucceeded = "succeeded"

type (
	PaymentIntent struct {
		ID           string
		ClientSecret string
		Status       string
		Amount       int64 // minor units
		Currency     string
	}

	// PaymentService is implemented by payment providers.
	// Disabled providers return ErrPaymentUnavailable from every method.
	PaymentService interface {
		CreateIntent(ctx context.Context, amount float64) (PaymentIntent, error)
		GetIntent(ctx context.Context, id string) (PaymentIntent, error)
	}
)

// ToMinorUnits converts `amount` to the currency's minor units (paise, cents), rounding to the nearest.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// ConfirmPayment retrieves the intent `id` and checks that it succeeded.
func ConfirmPayment(ctx context.Context, svc PaymentService, id string) (PaymentIntent, error) {
	intent, err := svc.GetIntent(ctx, id)
	if err != nil {
		return PaymentIntent{}, err
	}
	if intent.Status != PaymentSucceeded {
		return intent, &PaymentError{PaymentID: id, Status: intent.Status}
	}
	return intent, nil
}
