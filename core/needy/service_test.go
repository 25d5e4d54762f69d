package needy_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haid/charityconnect/core/needy"
	"github.com/haid/charityconnect/storage/database/inmem"
	"github.com/haid/charityconnect/tests"
)

type sentSMS struct {
	phone   string
	message string
}

type notifierMock struct {
	mu   sync.Mutex
	sent []sentSMS
}

func (n *notifierMock) Notify(_ context.Context, phone, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentSMS{phone: phone, message: message})
}

func setup(strict bool) (*needy.Service, needy.Repository, *notifierMock) {
	repo := inmemdb.NewNeedyRepository(inmemdb.NewDB())
	notifier := new(notifierMock)
	return needy.NewService(repo, notifier, strict), repo, notifier
}

func intPtr(i int) *int { return &i }

func TestService_Register(t *testing.T) {
	svc, repo, notifier := setup(false)
	validate, _ := testutil.NewValidator()

	np := needy.NewPerson{
		Name:                 " Lakshmi Devi ",
		Age:                  intPtr(0),
		Gender:               "female",
		Address:              "4 Station Road",
		City:                 "Nagpur",
		State:                "Maharashtra",
		Pincode:              "440001",
		Needs:                []string{"food"},
		Situation:            "widowed",
		ReporterName:         "Ravi",
		ReporterPhone:        "+919800000000",
		ReporterEmail:        "RAVI@test.in",
		ReporterRelationship: "neighbour",
	}
	require.NoError(t, np.Validate(validate))

	p, err := svc.Register(context.Background(), np)
	require.NoError(t, err)
	assert.Equal(t, "Lakshmi Devi", p.Name)
	assert.Equal(t, 0, p.Age)
	assert.Equal(t, "ravi@test.in", p.ReporterEmail)
	assert.False(t, p.Phone.Valid)
	assert.False(t, p.FamilySize.Valid)
	assert.False(t, p.Income.Valid)
	assert.False(t, p.Verified)
	assert.Equal(t, needy.StatusPending, p.Status)

	got, err := repo.GetPerson(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "+919800000000", notifier.sent[0].phone)

	t.Run("zero income", func(t *testing.T) {
		np := np
		np.Income = "0"
		require.NoError(t, np.Validate(validate))

		p, err := svc.Register(context.Background(), np)
		require.NoError(t, err)
		assert.Equal(t, "0", p.Income.String)
		assert.True(t, p.Income.Valid)
	})

	t.Run("negative income", func(t *testing.T) {
		np := np
		np.Income = "-1"
		assert.Error(t, np.Validate(validate))
	})
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := setup(false)
	p := testutil.CreatePerson(t, repo, "Anita", "Pune", []string{"food"})

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	for _, id := range []string{"lol", "", "123", "00000000-0000-0000-0000-000000000000"} {
		_, err = svc.Get(ctx, id)
		assert.Equal(t, needy.ErrNotFound, errors.Cause(err), id)
	}
}

func TestService_Apply(t *testing.T) {
	ctx := context.Background()

	t.Run("verify is idempotent", func(t *testing.T) {
		svc, repo, _ := setup(false)
		p := testutil.CreatePerson(t, repo, "Anita", "Pune", []string{"food"})

		once, err := svc.Verify(ctx, p.ID)
		require.NoError(t, err)
		twice, err := svc.Verify(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
		assert.True(t, twice.Verified)
		assert.Equal(t, needy.StatusVerified, twice.Status)
	})

	t.Run("unverify undoes verify", func(t *testing.T) {
		svc, repo, _ := setup(false)
		p := testutil.CreatePerson(t, repo, "Anita", "Pune", []string{"food"})

		_, err := svc.Verify(ctx, p.ID)
		require.NoError(t, err)
		got, err := svc.Unverify(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	})

	t.Run("unhelp goes back to verified", func(t *testing.T) {
		svc, repo, _ := setup(false)
		p := testutil.CreatePerson(t, repo, "Anita", "Pune", []string{"food"})

		_, err := svc.Helped(ctx, p.ID)
		require.NoError(t, err)
		got, err := svc.Unhelp(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, got.Verified)
		assert.Equal(t, needy.StatusVerified, got.Status)
	})

	t.Run("reject & unreject", func(t *testing.T) {
		svc, repo, _ := setup(false)
		p := testutil.CreatePerson(t, repo, "Anita", "Pune", []string{"food"})
		testutil.SetPersonStatus(t, repo, p.ID, true, needy.StatusVerified)

		got, err := svc.Reject(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, got.Verified)
		assert.Equal(t, needy.StatusRejected, got.Status)

		got, err = svc.Unreject(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, got.Verified)
		assert.Equal(t, needy.StatusPending, got.Status)
	})

	t.Run("notifications", func(t *testing.T) {
		svc, repo, notifier := setup(false)
		p := testutil.CreatePerson(t, repo, "Anita", "Pune", []string{"food"})

		for _, action := range []string{
			needy.ActionVerify, needy.ActionHelped, needy.ActionUnhelp,
			needy.ActionUnverify, needy.ActionReject, needy.ActionUnreject,
		} {
			_, err := svc.Apply(ctx, p.ID, action)
			require.NoError(t, err, action)
		}

		require.Len(t, notifier.sent, 3)
		assert.Contains(t, notifier.sent[0].message, "has been verified")
		assert.Contains(t, notifier.sent[1].message, "assistance has been delivered to Anita")
		assert.Contains(t, notifier.sent[2].message, "could not verify the request for Anita")
		for _, sms := range notifier.sent {
			assert.Equal(t, p.ReporterPhone, sms.phone)
		}
	})

	t.Run("unknown person", func(t *testing.T) {
		svc, _, notifier := setup(false)
		_, err := svc.Verify(ctx, "lol")
		assert.Equal(t, needy.ErrNotFound, errors.Cause(err))
		_, err = svc.Verify(ctx, uuid.NewString())
		assert.Equal(t, needy.ErrNotFound, errors.Cause(err))
		assert.Empty(t, notifier.sent)
	})

	t.Run("malformed id in strict mode", func(t *testing.T) {
		svc, _, notifier := setup(true)
		_, err := svc.Helped(ctx, "lol")
		assert.Equal(t, needy.ErrNotFound, errors.Cause(err))
		assert.Empty(t, notifier.sent)
	})

	t.Run("unknown action", func(t *testing.T) {
		svc, repo, _ := setup(false)
		p := testutil.CreatePerson(t, repo, "Anita", "Pune", []string{"food"})
		_, err := svc.Apply(ctx, p.ID, "lol")
		assert.EqualError(t, err, `unknown action "lol"`)
		assert.False(t, needy.IsAction("lol"))
		assert.True(t, needy.IsAction(needy.ActionUnhelp))
	})
}

func TestService_Apply_strict(t *testing.T) {
	ctx := context.Background()
	svc, repo, notifier := setup(true)
	p := testutil.CreatePerson(t, repo, "Anita", "Pune", []string{"food"})

	_, err := svc.Helped(ctx, p.ID)
	assert.Equal(t, needy.ErrInvalidTransition, errors.Cause(err))

	_, err = svc.Verify(ctx, p.ID)
	require.NoError(t, err)
	_, err = svc.Verify(ctx, p.ID)
	require.NoError(t, err, "repeating an operation is allowed")

	_, err = svc.Helped(ctx, p.ID)
	require.NoError(t, err)
	_, err = svc.Reject(ctx, p.ID)
	assert.Equal(t, needy.ErrInvalidTransition, errors.Cause(err))

	got, err := repo.GetPerson(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Verified)
	assert.Equal(t, needy.StatusHelped, got.Status)
	assert.Len(t, notifier.sent, 3) // verify x2, helped

	_, err = svc.Verify(ctx, "lol")
	assert.Equal(t, needy.ErrNotFound, errors.Cause(err))
}

func TestService_Query(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := setup(false)
	anita := testutil.CreatePerson(t, repo, "Anita", "Pune", []string{"food"})
	testutil.CreatePerson(t, repo, "Babu", "Goa", []string{"shelter"})

	persons, err := svc.Query(ctx, needy.QueryFilter{City: "  PUNE "})
	require.NoError(t, err)
	assert.Equal(t, []needy.Person{anita}, persons)

	all, err := svc.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
