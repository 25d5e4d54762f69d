package tests

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/haid/charityconnect/apps/api/echo"
	"github.com/haid/charityconnect/core"
	"github.com/haid/charityconnect/core/needy"
	"github.com/haid/charityconnect/core/notify"
	"github.com/haid/charityconnect/tests"
)

func newPersonBody() map[string]interface{} {
	return map[string]interface{}{
		"name":                 "Lakshmi Devi",
		"age":                  62,
		"gender":               "female",
		"familySize":           3,
		"address":              "4 Station Road",
		"city":                 "Nagpur",
		"state":                "Maharashtra",
		"pincode":              "440001",
		"needs":                []string{"food", "medicine"},
		"situation":            "widowed, no income",
		"income":               "1500",
		"reporterName":         "Ravi",
		"reporterPhone":        "+919800000000",
		"reporterEmail":        "ravi@test.in",
		"reporterRelationship": "neighbour",
	}
}

func Test_needyApi_register(t *testing.T) {
	app := setup(t)

	invalid := newPersonBody()
	invalid["age"] = 200
	invalid["pincode"] = "1234"
	invalid["needs"] = []string{}
	invalid["income"] = "-3"
	invalid["reporterEmail"] = "lol"

	tests := []httpTest{
		{
			name: "empty body", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, validationErr(map[string]string{
				"name":                 "this field is required",
				"age":                  "this field is required",
				"gender":               "this field is required",
				"address":              "this field is required",
				"city":                 "this field is required",
				"state":                "this field is required",
				"pincode":              "this field is required",
				"needs":                "this field is required",
				"situation":            "this field is required",
				"reporterName":         "this field is required",
				"reporterPhone":        "this field is required",
				"reporterEmail":        "this field is required",
				"reporterRelationship": "this field is required",
			})),
		},
		{
			name: "invalid fields", body: marchallObj(t, invalid), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, validationErr(map[string]string{
				"age":           "age must be 150 or less",
				"pincode":       "pincode must be a valid 6 digit PIN code",
				"needs":         "needs must contain at least 1 item",
				"income":        "income must be a non-negative amount with at most 2 decimal places",
				"reporterEmail": "reporterEmail must be a valid email address",
			})),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/api/needy"
	}
	runHttpTests(t, app, tests)

	t.Run("registered", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/needy", marchallObj(t, newPersonBody()))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp PersonResponse
		unmarchall(t, rec, &resp)
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Person.ID)
		assert.Equal(t, 62, resp.Person.Age)
		assert.Equal(t, 3, resp.Person.FamilySize.Int)
		assert.Equal(t, []string{"food", "medicine"}, resp.Person.Needs)
		assert.False(t, resp.Person.Verified)
		assert.Equal(t, needy.StatusPending, resp.Person.Status)

		sent := app.sms.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "+919800000000", sent[0].To)
		assert.Contains(t, sent[0].Body, "Thank you Ravi for registering Lakshmi Devi with HAID.")

		logs, err := app.smsLogRepo.QuerySMSLogs(context.Background())
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, notify.StatusSent, logs[0].Status)
		assert.True(t, logs[0].TwilioSID.Valid)
	})
}

func Test_needyApi_query(t *testing.T) {
	app := setup(t)

	path := func(status, verified, city, search, ordering string) string {
		v := make(url.Values)
		if status != "" {
			v.Add("status", status)
		}
		if verified != "" {
			v.Add("verified", verified)
		}
		if city != "" {
			v.Add("city", city)
		}
		if search != "" {
			v.Add("search", search)
		}
		if ordering != "" {
			v.Add("ordering", ordering)
		}
		return "/api/needy?" + v.Encode()
	}

	now := time.Now()
	anita := testutil.CreatePerson(t, app.needyRepo, "Anita", "Pune", []string{"food"}, now.Add(-3*time.Hour))
	babu := testutil.CreatePerson(t, app.needyRepo, "Babu", "Mumbai", []string{"shelter"}, now.Add(-2*time.Hour))
	chitra := testutil.CreatePerson(t, app.needyRepo, "Chitra", "Pune", []string{"medicine"}, now.Add(-1*time.Hour))
	babu = testutil.SetPersonStatus(t, app.needyRepo, babu.ID, true, needy.StatusVerified)
	chitra = testutil.SetPersonStatus(t, app.needyRepo, chitra.ID, false, needy.StatusRejected)

	tests := []httpTest{
		{name: "all (newest first)", path: "/api/needy", wantData: marchallList(t, chitra, babu, anita)},
		{name: "status=verified", path: path(needy.StatusVerified, "", "", "", ""), wantData: marchallList(t, babu)},
		{name: "status (unknown)", path: path("lol", "", "", "", ""), wantData: marchallList(t)},
		{name: "verified=false", path: path("", "false", "", "", ""), wantData: marchallList(t, chitra, anita)},
		{name: "verified (invalid)", path: path("", "lol", "", "", ""), wantData: marchallList(t)},
		{name: "city=pune", path: path("", "", "pune", "", ""), wantData: marchallList(t, chitra, anita)},
		{name: "search=BAB", path: path("", "", "", "BAB", ""), wantData: marchallList(t, babu)},
		{name: "order by name", path: path("", "", "", "", "name"), wantData: marchallList(t, anita, babu, chitra)},
		{name: "order by -city,name", path: path("", "", "", "", "-city,name"), wantData: marchallList(t, anita, chitra, babu)},
		{name: "unknown ordering is ignored", path: path("", "", "", "", "lol"), wantData: marchallList(t, chitra, babu, anita)},
		{name: "filtering & ordering", path: path("", "", "Pune", "", "created_at"), wantData: marchallList(t, anita, chitra)},
	}
	runHttpTests(t, app, tests)
}

func Test_needyApi_retrieve(t *testing.T) {
	app := setup(t)
	p := testutil.CreatePerson(t, app.needyRepo, "Anita", "Pune", []string{"food"})

	tests := []httpTest{
		{
			name: "unknown", path: "/api/needy/lol", wantCode: http.StatusNotFound,
			wantData: marchallObj(t, ErrorResponse{Message: "needy person not found"}),
		},
		{name: "found", path: "/api/needy/" + p.ID, wantData: marchallObj(t, p)},
	}
	runHttpTests(t, app, tests)
}

func Test_needyApi_transition(t *testing.T) {
	app := setup(t)
	p := testutil.CreatePerson(t, app.needyRepo, "Anita", "Pune", []string{"food"})

	state := func(verified bool, status string) needy.Person {
		s := p
		s.Verified = verified
		s.Status = status
		return s
	}
	resp := func(person needy.Person, msg string) []byte {
		return marchallObj(t, TransitionResponse{Success: true, Person: person, Message: msg})
	}
	path := func(action string) string { return "/api/needy/" + p.ID + "/" + action }

	tests := []httpTest{
		{
			name: "unknown person", path: "/api/needy/lol/verify", wantCode: http.StatusNotFound,
			wantData: marchallObj(t, ErrorResponse{Message: "needy person not found"}),
		},
		{name: "unknown action", path: path("lol"), wantCode: http.StatusNotFound},
		{
			name: "verify", path: path(needy.ActionVerify),
			wantData: resp(state(true, needy.StatusVerified), "Person verified successfully"),
		},
		{
			name: "verify again", path: path(needy.ActionVerify),
			wantData: resp(state(true, needy.StatusVerified), "Person verified successfully"),
		},
		{
			name: "helped", path: path(needy.ActionHelped),
			wantData: resp(state(true, needy.StatusHelped), "Person marked as helped"),
		},
		{
			name: "unhelp goes back to verified", path: path(needy.ActionUnhelp),
			wantData: resp(state(true, needy.StatusVerified), "Person marked as not helped"),
		},
		{
			name: "unverify", path: path(needy.ActionUnverify),
			wantData: resp(state(false, needy.StatusPending), "Person verification removed"),
		},
		{
			name: "reject", path: path(needy.ActionReject),
			wantData: resp(state(false, needy.StatusRejected), "Person rejected"),
		},
		{
			name: "unreject", path: path(needy.ActionUnreject),
			wantData: resp(state(false, needy.StatusPending), "Person rejection removed"),
		},
		{
			name: "permissive: helped from pending", path: path(needy.ActionHelped),
			wantData: resp(state(true, needy.StatusHelped), "Person marked as helped"),
		},
		{
			name: "permissive: reject from helped", path: path(needy.ActionReject),
			wantData: resp(state(false, needy.StatusRejected), "Person rejected"),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
	}
	runHttpTests(t, app, tests)

	// verify x2, helped x2, reject x2
	assert.Len(t, app.sms.SentMessages(), 6)
}

func Test_needyApi_transition_strict(t *testing.T) {
	app := setup(t, func(conf *core.Config) {
		conf.Lifecycle.Strict = true
	})
	p := testutil.CreatePerson(t, app.needyRepo, "Anita", "Pune", []string{"food"})
	path := func(action string) string { return "/api/needy/" + p.ID + "/" + action }

	tests := []httpTest{
		{
			name: "helped from pending", path: path(needy.ActionHelped), wantCode: http.StatusConflict,
			wantData: marchallObj(t, ErrorResponse{Message: "helped: pending -> helped: status transition not allowed"}),
		},
		{name: "verify", path: path(needy.ActionVerify)},
		{name: "verify again", path: path(needy.ActionVerify)},
		{name: "helped", path: path(needy.ActionHelped)},
		{
			name: "reject from helped", path: path(needy.ActionReject), wantCode: http.StatusConflict,
			wantData: marchallObj(t, ErrorResponse{Message: "reject: helped -> rejected: status transition not allowed"}),
		},
		{name: "unhelp", path: path(needy.ActionUnhelp)},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
	}
	runHttpTests(t, app, tests)

	got, err := app.needyRepo.GetPerson(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, got.Verified)
	assert.Equal(t, needy.StatusVerified, got.Status)
}
