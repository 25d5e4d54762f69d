// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/haid/charityconnect/core"
	"github.com/haid/charityconnect/core/donor"
	"github.com/haid/charityconnect/core/needy"
	logsvc "github.com/haid/charityconnect/services/logger"
)

// NewLogger returns a silent logger.
func NewLogger() core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), core.NewTestConfig())
}

// NewValidator returns a validator set up like the app's.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate, translator
}

func tstamp(createdAt []time.Time) time.Time {
	if len(createdAt) > 0 {
		return createdAt[0].UTC()
	}
	return time.Now().UTC()
}

func CreateDonor(t *testing.T, repo donor.Repository, name, email, phone, city string, createdAt ...time.Time) donor.Donor {
	d, err := repo.GetOrCreateDonor(context.Background(), donor.Donor{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		City:      null.NewString(city, city != ""),
		CreatedAt: tstamp(createdAt),
	})
	if err != nil {
		t.Fatalf("CreateDonor() failed: %v", err)
	}
	return d
}

func CreateItemDonation(t *testing.T, repo donor.Repository, donorID, category string, createdAt ...time.Time) donor.ItemDonation {
	d, err := repo.CreateItemDonation(context.Background(), donor.ItemDonation{
		ID:          uuid.NewString(),
		DonorID:     donorID,
		Category:    category,
		Condition:   "good",
		Description: "some " + category,
		Status:      donor.ItemPending,
		CreatedAt:   tstamp(createdAt),
	})
	if err != nil {
		t.Fatalf("CreateItemDonation() failed: %v", err)
	}
	return d
}

// CreateMonetaryDonation creates a monetary donation; a "completed" one carries a fake payment ID.
func CreateMonetaryDonation(t *testing.T, repo donor.Repository, donorID, amount, status string, createdAt ...time.Time) donor.MonetaryDonation {
	d := donor.MonetaryDonation{
		ID:        uuid.NewString(),
		DonorID:   donorID,
		Amount:    amount,
		Purpose:   "general",
		Status:    status,
		CreatedAt: tstamp(createdAt),
	}
	if status == donor.MoneyCompleted {
		d.StripePaymentIntentID = null.StringFrom("pi_" + d.ID)
	}
	d, err := repo.CreateMonetaryDonation(context.Background(), d)
	if err != nil {
		t.Fatalf("CreateMonetaryDonation() failed: %v", err)
	}
	return d
}

func CreatePerson(t *testing.T, repo needy.Repository, name, city string, needs []string, createdAt ...time.Time) needy.Person {
	p, err := repo.CreatePerson(context.Background(), needy.Person{
		ID:                   uuid.NewString(),
		Name:                 name,
		Age:                  40,
		Gender:               "female",
		Address:              "12 MG Road",
		City:                 city,
		State:                "Maharashtra",
		Pincode:              "400001",
		Needs:                needs,
		Situation:            "lost job",
		ReporterName:         "Ravi",
		ReporterPhone:        "+919800000000",
		ReporterEmail:        "ravi@test.in",
		ReporterRelationship: "neighbour",
		Status:               needy.StatusPending,
		CreatedAt:            tstamp(createdAt),
	})
	if err != nil {
		t.Fatalf("CreatePerson() failed: %v", err)
	}
	return p
}

func SetPersonStatus(t *testing.T, repo needy.Repository, id string, verified bool, status string) needy.Person {
	p, err := repo.UpdatePersonStatus(context.Background(), id, verified, status)
	if err != nil {
		t.Fatalf("SetPersonStatus() failed: %v", err)
	}
	return p
}
