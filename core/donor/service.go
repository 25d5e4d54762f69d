package donor

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/haid/charityconnect/core"
	"github.com/haid/charityconnect/core/notify"
)

var (
	// errors
	ErrDonorNotFound = errors.New("donor not found")
	ErrItemNotFound  = errors.New("item donation not found")
	// ErrPaymentAlreadyRecorded is returned when a payment intent already backs another donation.
	ErrPaymentAlreadyRecorded = errors.New("payment already recorded for another donation")
)

const receiptTemplate = "donation_receipt"

type (
	Repository interface {
		// GetOrCreateDonor returns the Donor registered with `d.Email`, creating it from `d` if absent.
		// Existing donors are never updated. Safe under concurrent calls with the same email.
		GetOrCreateDonor(ctx context.Context, d Donor) (Donor, error)
		GetDonorByEmail(ctx context.Context, email string) (Donor, error)
		QueryDonors(ctx context.Context) ([]Donor, error)

		CreateItemDonation(ctx context.Context, d ItemDonation) (ItemDonation, error)
		UpdateItemDonationStatus(ctx context.Context, id, status string) (ItemDonation, error)
		// QueryItemDonations returns matching donations joined with their donor, newest first.
		QueryItemDonations(ctx context.Context, filter DonationFilter) ([]ItemDonationView, error)

		// CreateMonetaryDonation returns ErrPaymentAlreadyRecorded if `d.StripePaymentIntentID`
		// is already attached to another donation.
		CreateMonetaryDonation(ctx context.Context, d MonetaryDonation) (MonetaryDonation, error)
		// QueryMonetaryDonations returns matching donations joined with their donor, newest first.
		QueryMonetaryDonations(ctx context.Context, filter DonationFilter) ([]MonetaryDonationView, error)
	}

	Service struct {
		repo     Repository
		payments core.PaymentService
		notifier notify.Notifier
		mailSvc  core.EmailService
		logger   core.Logger
		now      func() time.Time
	}

	// ReceiptData is rendered by the donation receipt email.
	ReceiptData struct {
		Number      string
		DonorName   string
		Kind        string // "item" | "monetary"
		Description string
		Amount      string
		Date        string
	}
)

func NewService(
	repo Repository,
	payments core.PaymentService,
	notifier notify.Notifier,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		payments: payments,
		notifier: notifier,
		mailSvc:  mailSvc,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (svc *Service) getOrCreateDonor(ctx context.Context, nd NewDonor) (Donor, error) {
	d := nd.toDonor()
	d.ID = uuid.NewString()
	d.CreatedAt = svc.now()
	donor, err := svc.repo.GetOrCreateDonor(ctx, d)
	if err != nil {
		return Donor{}, errors.Wrap(err, "getting or creating donor")
	}
	return donor, nil
}

// CreatePaymentIntent asks the payment provider for a handle the client can confirm.
func (svc *Service) CreatePaymentIntent(ctx context.Context, amount float64) (core.PaymentIntent, error) {
	if amount <= 0 {
		return core.PaymentIntent{}, core.NewValidationError(errors.New("Invalid amount"))
	}
	intent, err := svc.payments.CreateIntent(ctx, amount)
	if err != nil {
		if errors.Cause(err) == core.ErrPaymentUnavailable {
			return core.PaymentIntent{}, err
		}
		return core.PaymentIntent{}, errors.Wrap(err, "creating payment intent")
	}
	return intent, nil
}

// SubmitItem records an item donation; the donor is then thanked by SMS & email.
func (svc *Service) SubmitItem(ctx context.Context, nd NewItemDonation) (ItemDonation, error) {
	donor, err := svc.getOrCreateDonor(ctx, nd.Donor)
	if err != nil {
		return ItemDonation{}, err
	}

	dn, err := svc.repo.CreateItemDonation(ctx, ItemDonation{
		ID:                 uuid.NewString(),
		DonorID:            donor.ID,
		Category:           nd.Item.Category,
		Condition:          nd.Item.Condition,
		Description:        nd.Item.Description,
		Quantity:           nullString(nd.Item.Quantity),
		PickupDate:         nullString(nd.Pickup.Date),
		PickupTimeSlot:     nullString(nd.Pickup.TimeSlot),
		PickupInstructions: nullString(nd.Pickup.Instructions),
		Status:             ItemPending,
		CreatedAt:          svc.now(),
	})
	if err != nil {
		return ItemDonation{}, errors.Wrap(err, "creating item donation")
	}

	svc.notifier.Notify(ctx, donor.Phone, fmt.Sprintf(
		"Thank you %s for your kind donation of %s. Your contribution will help the needy. Our team will contact you soon for pickup. - Team HAID",
		donor.Name, dn.Category,
	))
	svc.sendReceipt(donor, ReceiptData{
		Kind:        "item",
		Description: dn.Category + ": " + dn.Description,
		Date:        dn.CreatedAt.Format("02 Jan 2006"),
	})
	return dn, nil
}

// SubmitMonetary records a monetary donation whose payment the provider confirms as succeeded
// for the donated amount. Nothing is written when the payment is not confirmed.
func (svc *Service) SubmitMonetary(ctx context.Context, nd NewMonetaryDonation) (MonetaryDonation, error) {
	intent, err := core.ConfirmPayment(ctx, svc.payments, nd.PaymentIntentID)
	if err != nil {
		if errors.Cause(err) == core.ErrPaymentUnavailable || core.IsPaymentError(err) {
			return MonetaryDonation{}, err
		}
		return MonetaryDonation{}, errors.Wrap(err, "confirming payment")
	}
	if intent.Amount != core.ToMinorUnits(core.ParseAmount(nd.Donation.Amount)) {
		return MonetaryDonation{}, core.NewValidationError(
			errors.New("Payment amount does not match the donation amount"),
			core.FieldError{Field: "donation.amount", Error: "amount does not match the payment"},
		)
	}

	donor, err := svc.getOrCreateDonor(ctx, nd.Donor)
	if err != nil {
		return MonetaryDonation{}, err
	}

	// the payment is confirmed: the donation is recorded completed in one write
	dn, err := svc.repo.CreateMonetaryDonation(ctx, MonetaryDonation{
		ID:                    uuid.NewString(),
		DonorID:               donor.ID,
		Amount:                nd.Donation.Amount,
		Purpose:               nd.Donation.Purpose,
		Message:               nullString(nd.Donation.Message),
		StripePaymentIntentID: nullString(nd.PaymentIntentID),
		Status:                MoneyCompleted,
		CreatedAt:             svc.now(),
	})
	if err != nil {
		return MonetaryDonation{}, errors.Wrap(err, "creating monetary donation")
	}

	svc.notifier.Notify(ctx, donor.Phone, fmt.Sprintf(
		"Thank you %s for your generous donation of ₹%s. Your contribution will make a real difference in helping those in need. - Team HAID",
		donor.Name, core.FormatAmount(dn.Amount),
	))
	svc.sendReceipt(donor, ReceiptData{
		Kind:        "monetary",
		Description: dn.Purpose,
		Amount:      core.FormatAmount(dn.Amount),
		Date:        dn.CreatedAt.Format("02 Jan 2006"),
	})
	return dn, nil
}

func (svc *Service) sendReceipt(donor Donor, data ReceiptData) {
	if svc.mailSvc == nil {
		return
	}
	data.Number = core.NewReceiptNumber(svc.now())
	data.DonorName = donor.Name
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: donor.Name, Address: donor.Email}},
		Subject:      "Your HAID donation receipt " + data.Number,
		TemplateName: receiptTemplate,
		TemplateData: data,
	})
}

// UpdateItemStatus moves an item donation along its pickup workflow.
func (svc *Service) UpdateItemStatus(ctx context.Context, id string, us UpdateItemStatus) (ItemDonation, error) {
	if !core.IsUUID(id) {
		return ItemDonation{}, ErrItemNotFound
	}
	return svc.repo.UpdateItemDonationStatus(ctx, id, us.Status)
}

func (svc *Service) QueryItems(ctx context.Context, filter DonationFilter) ([]ItemDonationView, error) {
	filter.Search = core.CleanString(filter.Search)
	return svc.repo.QueryItemDonations(ctx, filter)
}

func (svc *Service) QueryMonetary(ctx context.Context, filter DonationFilter) ([]MonetaryDonationView, error) {
	filter.Search = core.CleanString(filter.Search)
	return svc.repo.QueryMonetaryDonations(ctx, filter)
}

func (svc *Service) QueryDonors(ctx context.Context) ([]Donor, error) {
	return svc.repo.QueryDonors(ctx)
}

// History returns the Donor registered with `email` along with their donations.
func (svc *Service) History(ctx context.Context, email string) (History, error) {
	d, err := svc.repo.GetDonorByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return History{}, err
	}

	filter := DonationFilter{DonorID: d.ID}
	items, err := svc.repo.QueryItemDonations(ctx, filter)
	if err != nil {
		return History{}, errors.Wrap(err, "querying item donations")
	}
	monetary, err := svc.repo.QueryMonetaryDonations(ctx, filter)
	if err != nil {
		return History{}, errors.Wrap(err, "querying monetary donations")
	}

	h := History{
		Donor:             d,
		ItemDonations:     make([]ItemDonation, 0, len(items)),
		MonetaryDonations: make([]MonetaryDonation, 0, len(monetary)),
	}
	for _, it := range items {
		h.ItemDonations = append(h.ItemDonations, it.ItemDonation)
	}
	for _, m := range monetary {
		h.MonetaryDonations = append(h.MonetaryDonations, m.MonetaryDonation)
	}
	return h, nil
}
