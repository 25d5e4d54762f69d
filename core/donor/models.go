package donor

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/haid/charityconnect/core"
)

// Item donation statuses
const (
	ItemPending   = "pending"
	ItemScheduled = "scheduled"
	ItemCollected = "collected"
	ItemDelivered = "delivered"
	ItemCancelled = "cancelled"
)

// Monetary donation statuses
const (
	MoneyPending   = "pending"
	MoneyCompleted = "completed"
)

var ItemStatuses = []string{ItemPending, ItemScheduled, ItemCollected, ItemDelivered, ItemCancelled}

type Donor struct {
	ID        string      `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	Email     string      `json:"email" db:"email"`
	Phone     string      `json:"phone" db:"phone"`
	Address   null.String `json:"address" db:"address"`
	City      null.String `json:"city" db:"city"`
	State     null.String `json:"state" db:"state"`
	Pincode   null.String `json:"pincode" db:"pincode"`
	Pan       null.String `json:"pan" db:"pan"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"` // UTC
}

// Masked returns a copy of the Donor safe to show on public lookups.
func (d Donor) Masked() Donor {
	d.Email = core.MaskEmail(d.Email)
	d.Phone = core.MaskPhone(d.Phone)
	return d
}

type ItemDonation struct {
	ID                 string      `json:"id" db:"id"`
	DonorID            string      `json:"donorId" db:"donor_id"`
	Category           string      `json:"category" db:"category"`
	Condition          string      `json:"condition" db:"condition"`
	Description        string      `json:"description" db:"description"`
	Quantity           null.String `json:"quantity" db:"quantity"`
	PickupDate         null.String `json:"pickupDate" db:"pickup_date"`
	PickupTimeSlot     null.String `json:"pickupTimeSlot" db:"pickup_time_slot"`
	PickupInstructions null.String `json:"pickupInstructions" db:"pickup_instructions"`
	Status             string      `json:"status" db:"status"`
	CreatedAt          time.Time   `json:"createdAt" db:"created_at"` // UTC
}

type MonetaryDonation struct {
	ID                    string      `json:"id" db:"id"`
	DonorID               string      `json:"donorId" db:"donor_id"`
	Amount                string      `json:"amount" db:"amount"`
	Purpose               string      `json:"purpose" db:"purpose"`
	Message               null.String `json:"message" db:"message"`
	StripePaymentIntentID null.String `json:"stripePaymentIntentId" db:"stripe_payment_intent_id"`
	Status                string      `json:"status" db:"status"`
	CreatedAt             time.Time   `json:"createdAt" db:"created_at"` // UTC
}

// DonorFields are the donor display fields joined to listed donations.
type DonorFields struct {
	DonorName  string      `json:"donorName" db:"donor_name"`
	DonorEmail string      `json:"donorEmail" db:"donor_email"`
	DonorPhone string      `json:"donorPhone" db:"donor_phone"`
	DonorCity  null.String `json:"donorCity" db:"donor_city"`
}

type (
	ItemDonationView struct {
		ItemDonation
		DonorFields
	}

	MonetaryDonationView struct {
		MonetaryDonation
		DonorFields
	}
)

func NewDonorFields(d Donor) DonorFields {
	return DonorFields{DonorName: d.Name, DonorEmail: d.Email, DonorPhone: d.Phone, DonorCity: d.City}
}

// NewDonor contains the donor details sent along every donation.
type NewDonor struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode" validate:"omitempty,pincode"`
	Pan     string `json:"pan" validate:"omitempty,alphanum,len=10"`
}

func (nd *NewDonor) clean() {
	nd.Name = core.CleanString(nd.Name)
	nd.Email = core.CleanString(nd.Email, true /* lower */)
	nd.Phone = core.CleanString(nd.Phone)
	nd.Address = core.CleanString(nd.Address)
	nd.City = core.CleanString(nd.City)
	nd.State = core.CleanString(nd.State)
	nd.Pincode = core.CleanString(nd.Pincode)
	nd.Pan = core.CleanString(nd.Pan)
}

func (nd NewDonor) toDonor() Donor {
	return Donor{
		Name:    nd.Name,
		Email:   nd.Email,
		Phone:   nd.Phone,
		Address: nullString(nd.Address),
		City:    nullString(nd.City),
		State:   nullString(nd.State),
		Pincode: nullString(nd.Pincode),
		Pan:     nullString(nd.Pan),
	}
}

type (
	NewItem struct {
		Category    string `json:"category" validate:"required"`
		Condition   string `json:"condition" validate:"required"`
		Description string `json:"description" validate:"required"`
		Quantity    string `json:"quantity"`
	}

	Pickup struct {
		Date         string `json:"date" validate:"omitempty,datetime=2006-01-02"`
		TimeSlot     string `json:"timeSlot"`
		Instructions string `json:"instructions"`
	}

	// NewItemDonation is the body of an item donation submission.
	NewItemDonation struct {
		Donor  NewDonor `json:"donor"`
		Item   NewItem  `json:"item"`
		Pickup Pickup   `json:"pickup"`
	}
)

func (nd *NewItemDonation) Validate(validate *validator.Validate) error {
	nd.Donor.clean()
	nd.Item.Category = core.CleanString(nd.Item.Category)
	nd.Item.Condition = core.CleanString(nd.Item.Condition)
	nd.Item.Description = core.CleanString(nd.Item.Description)
	nd.Item.Quantity = core.CleanString(nd.Item.Quantity)
	nd.Pickup.Date = core.CleanString(nd.Pickup.Date)
	nd.Pickup.TimeSlot = core.CleanString(nd.Pickup.TimeSlot)
	nd.Pickup.Instructions = core.CleanString(nd.Pickup.Instructions)
	return validate.Struct(nd)
}

type (
	NewMoney struct {
		Amount  string `json:"amount" validate:"required,amount"`
		Purpose string `json:"purpose" validate:"required"`
		Message string `json:"message"`
	}

	// NewMonetaryDonation is the body of a monetary donation submission.
	NewMonetaryDonation struct {
		Donor           NewDonor `json:"donor"`
		Donation        NewMoney `json:"donation"`
		PaymentIntentID string   `json:"paymentIntentId" validate:"required"`
	}
)

func (nd *NewMonetaryDonation) Validate(validate *validator.Validate) error {
	nd.Donor.clean()
	nd.Donation.Amount = core.CleanString(nd.Donation.Amount)
	nd.Donation.Purpose = core.CleanString(nd.Donation.Purpose)
	nd.Donation.Message = core.CleanString(nd.Donation.Message)
	nd.PaymentIntentID = core.CleanString(nd.PaymentIntentID)
	return validate.Struct(nd)
}

type UpdateItemStatus struct {
	Status string `json:"status" validate:"required,oneof=pending scheduled collected delivered cancelled"`
}

func (us *UpdateItemStatus) Validate(validate *validator.Validate) error {
	us.Status = core.CleanString(us.Status, true /* lower */)
	return validate.Struct(us)
}

type NewPaymentIntent struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

func (np *NewPaymentIntent) Validate(validate *validator.Validate) error {
	return validate.Struct(np)
}

type DonationFilter struct {
	DonorID string
	// Search does a case-insensitive match on ItemDonation.Category, ItemDonation.Description
	// or MonetaryDonation.Purpose.
	Search string
}

// History is everything a Donor gave.
type History struct {
	Donor             Donor              `json:"donor"`
	ItemDonations     []ItemDonation     `json:"itemDonations"`
	MonetaryDonations []MonetaryDonation `json:"monetaryDonations"`
}

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}
