package donor_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haid/charityconnect/core"
	"github.com/haid/charityconnect/core/donor"
	"github.com/haid/charityconnect/core/notify"
	appfs "github.com/haid/charityconnect/fs"
	"github.com/haid/charityconnect/services/email"
	"github.com/haid/charityconnect/services/payment"
	"github.com/haid/charityconnect/services/sms"
	"github.com/haid/charityconnect/storage/database/inmem"
	"github.com/haid/charityconnect/tests"
)

type testEnv struct {
	svc      *donor.Service
	repo     donor.Repository
	smsLogs  notify.Repository
	sms      *smssvc.ServiceMock
	payments *paymentsvc.ServiceMock
	mails    *emailsvc.ConsoleServiceMock
}

func setup(payments ...core.PaymentService) *testEnv {
	conf := core.NewTestConfig()
	logger := testutil.NewLogger()
	db := inmemdb.NewDB()

	env := &testEnv{
		repo:     inmemdb.NewDonorRepository(db),
		smsLogs:  inmemdb.NewSMSLogRepository(db),
		sms:      smssvc.NewServiceMock(),
		payments: paymentsvc.NewServiceMock(),
	}
	tmpls := core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf, logger)
	env.mails = emailsvc.NewConsoleServiceMock(conf, tmpls, logger)

	var paySvc core.PaymentService = env.payments
	if len(payments) > 0 {
		paySvc = payments[0]
	}
	notifier := notify.NewService(env.smsLogs, env.sms, logger)
	env.svc = donor.NewService(env.repo, paySvc, notifier, env.mails, logger)
	return env
}

func newDonor(email string) donor.NewDonor {
	return donor.NewDonor{Name: "Asha Rao", Email: email, Phone: "+919812345678", City: "Mumbai"}
}

func TestService_CreatePaymentIntent(t *testing.T) {
	ctx := context.Background()

	env := setup()
	_, err := env.svc.CreatePaymentIntent(ctx, 0)
	assert.True(t, errors.As(err, new(*core.ValidationError)))

	pi, err := env.svc.CreatePaymentIntent(ctx, 499.99)
	require.NoError(t, err)
	assert.Equal(t, "pi_000001_secret", pi.ClientSecret)
	assert.Equal(t, int64(49999), pi.Amount)

	env = setup(paymentsvc.NewDisabledService())
	_, err = env.svc.CreatePaymentIntent(ctx, 10)
	assert.Equal(t, core.ErrPaymentUnavailable, errors.Cause(err))
}

func TestService_SubmitItem(t *testing.T) {
	ctx := context.Background()
	env := setup()

	dn, err := env.svc.SubmitItem(ctx, donor.NewItemDonation{
		Donor: newDonor("a@x.com"),
		Item:  donor.NewItem{Category: "books", Condition: "good", Description: "two boxes", Quantity: "2"},
	})
	require.NoError(t, err)
	assert.Equal(t, donor.ItemPending, dn.Status)
	assert.Equal(t, "2", dn.Quantity.String)
	assert.False(t, dn.PickupDate.Valid)

	d, err := env.repo.GetDonorByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, d.ID, dn.DonorID)
	assert.False(t, d.Pan.Valid)

	sent := env.sms.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Thank you Asha Rao for your kind donation of books. Your contribution will help the needy. "+
		"Our team will contact you soon for pickup. - Team HAID", sent[0].Body)

	mails := env.mails.SentMessages()
	require.Len(t, mails, 1)
	assert.Contains(t, mails[0].Subject, "Your HAID donation receipt HAID-")
	assert.Contains(t, mails[0].TextContent, "Dear Asha Rao,")
	assert.Contains(t, mails[0].TextContent, "Donation: books: two boxes")
	assert.NotContains(t, mails[0].TextContent, "Amount:")
	assert.Contains(t, mails[0].HTMLContent, "<td>books: two boxes</td>")
}

func TestService_SubmitItem_smsFailure(t *testing.T) {
	ctx := context.Background()
	env := setup()
	env.sms.Err = errors.New("twilio is down")

	_, err := env.svc.SubmitItem(ctx, donor.NewItemDonation{
		Donor: newDonor("a@x.com"),
		Item:  donor.NewItem{Category: "books", Condition: "good", Description: "two boxes"},
	})
	require.NoError(t, err)

	logs, err := env.smsLogs.QuerySMSLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, notify.StatusFailed, logs[0].Status)
}

func TestService_SubmitMonetary(t *testing.T) {
	ctx := context.Background()
	env := setup()
	env.payments.AddIntent("pi_ok", core.PaymentSucceeded, 1500)
	env.payments.AddIntent("pi_processing", "processing", 1500)
	env.payments.AddIntent("pi_one_rupee", core.PaymentSucceeded, 1)

	submit := func(piID string) (donor.MonetaryDonation, error) {
		return env.svc.SubmitMonetary(ctx, donor.NewMonetaryDonation{
			Donor:           newDonor("v@x.com"),
			Donation:        donor.NewMoney{Amount: "1500", Purpose: "education", Message: "keep going"},
			PaymentIntentID: piID,
		})
	}

	_, err := submit("pi_processing")
	var pErr *core.PaymentError
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, "processing", pErr.Status)

	_, err = submit("pi_lol")
	assert.Error(t, err)

	_, err = submit("pi_one_rupee")
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr), "paid amount must match the donation")
	assert.Equal(t, []core.FieldError{{Field: "donation.amount", Error: "amount does not match the payment"}}, vErr.Fields)

	donors, err := env.repo.QueryDonors(ctx)
	require.NoError(t, err)
	assert.Empty(t, donors, "failed payments must not create donors")

	dn, err := submit("pi_ok")
	require.NoError(t, err)
	assert.Equal(t, donor.MoneyCompleted, dn.Status)
	assert.Equal(t, "pi_ok", dn.StripePaymentIntentID.String)
	assert.Equal(t, "keep going", dn.Message.String)

	sent := env.sms.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Thank you Asha Rao for your generous donation of ₹1,500. Your contribution will make a real "+
		"difference in helping those in need. - Team HAID", sent[0].Body)

	mails := env.mails.SentMessages()
	require.Len(t, mails, 1)
	assert.Contains(t, mails[0].TextContent, "Amount: ₹1,500")

	views, err := env.svc.QueryMonetary(ctx, donor.DonationFilter{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, dn, views[0].MonetaryDonation, "recorded completed in a single write")

	t.Run("payment replay", func(t *testing.T) {
		_, err := submit("pi_ok")
		assert.Equal(t, donor.ErrPaymentAlreadyRecorded, errors.Cause(err))

		views, err := env.svc.QueryMonetary(ctx, donor.DonationFilter{})
		require.NoError(t, err)
		assert.Len(t, views, 1)
		assert.Len(t, env.sms.SentMessages(), 1)
	})
}

func TestService_SubmitMonetary_unavailable(t *testing.T) {
	ctx := context.Background()
	env := setup(paymentsvc.NewDisabledService())

	_, err := env.svc.SubmitMonetary(ctx, donor.NewMonetaryDonation{
		Donor:           newDonor("v@x.com"),
		Donation:        donor.NewMoney{Amount: "1500", Purpose: "education"},
		PaymentIntentID: "pi_ok",
	})
	assert.Equal(t, core.ErrPaymentUnavailable, errors.Cause(err))

	donors, err := env.repo.QueryDonors(ctx)
	require.NoError(t, err)
	assert.Empty(t, donors)
	assert.Empty(t, env.sms.SentMessages())
}

func TestService_donorLookupOrCreate(t *testing.T) {
	ctx := context.Background()
	env := setup()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.SubmitItem(ctx, donor.NewItemDonation{
				Donor: newDonor("same@x.com"),
				Item:  donor.NewItem{Category: "books", Condition: "good", Description: "box"},
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	donors, err := env.repo.QueryDonors(ctx)
	require.NoError(t, err)
	require.Len(t, donors, 1)

	items, err := env.svc.QueryItems(ctx, donor.DonationFilter{DonorID: donors[0].ID})
	require.NoError(t, err)
	assert.Len(t, items, 20)
}

func TestService_History(t *testing.T) {
	ctx := context.Background()
	env := setup()
	asha := testutil.CreateDonor(t, env.repo, "Asha", "asha@x.com", "+919800000001", "Mumbai")
	babu := testutil.CreateDonor(t, env.repo, "Babu", "babu@x.com", "+919800000002", "Delhi")
	item := testutil.CreateItemDonation(t, env.repo, asha.ID, "books")
	testutil.CreateItemDonation(t, env.repo, babu.ID, "toys")
	money := testutil.CreateMonetaryDonation(t, env.repo, asha.ID, "500", donor.MoneyCompleted)

	h, err := env.svc.History(ctx, " ASHA@x.com ")
	require.NoError(t, err)
	assert.Equal(t, asha, h.Donor)
	assert.Equal(t, []donor.ItemDonation{item}, h.ItemDonations)
	assert.Equal(t, []donor.MonetaryDonation{money}, h.MonetaryDonations)

	_, err = env.svc.History(ctx, "lol@x.com")
	assert.Equal(t, donor.ErrDonorNotFound, errors.Cause(err))
}

func TestService_UpdateItemStatus(t *testing.T) {
	ctx := context.Background()
	env := setup()
	asha := testutil.CreateDonor(t, env.repo, "Asha", "asha@x.com", "+919800000001", "Mumbai")
	item := testutil.CreateItemDonation(t, env.repo, asha.ID, "books")

	got, err := env.svc.UpdateItemStatus(ctx, item.ID, donor.UpdateItemStatus{Status: donor.ItemCollected})
	require.NoError(t, err)
	assert.Equal(t, donor.ItemCollected, got.Status)

	for _, id := range []string{"lol", "", uuid.NewString()} {
		_, err = env.svc.UpdateItemStatus(ctx, id, donor.UpdateItemStatus{Status: donor.ItemCollected})
		assert.Equal(t, donor.ErrItemNotFound, errors.Cause(err), id)
	}
}

func TestDonor_Masked(t *testing.T) {
	d := donor.Donor{Name: "Asha", Email: "asha@x.com", Phone: "+919800000001"}
	m := d.Masked()
	assert.Equal(t, "a**a@x.com", m.Email)
	assert.Equal(t, "+9*********01", m.Phone)
	assert.Equal(t, "asha@x.com", d.Email, "original left untouched")
}
