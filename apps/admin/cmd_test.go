package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/haid/charityconnect/core/needy"
	"github.com/haid/charityconnect/core/notify"
	smssvc "github.com/haid/charityconnect/services/sms"
	inmemdb "github.com/haid/charityconnect/storage/database/inmem"
	"github.com/haid/charityconnect/tests"
)

var (
	needyRepo needy.Repository
	smsSvc    *smssvc.ServiceMock
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	// set up DB & repos
	db := inmemdb.NewDB()
	needyRepo = inmemdb.NewNeedyRepository(db)
	smsSvc = smssvc.NewServiceMock()

	// start CLI
	out := new(bytes.Buffer)
	notifySvc := notify.NewService(inmemdb.NewSMSLogRepository(db), smsSvc, testutil.NewLogger())
	return &commandLine{
		needySvc:  needy.NewService(needyRepo, notifySvc, false),
		notifySvc: notifySvc,
		out:       out,
	}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func runCliTests(t *testing.T, cli *commandLine, tests []cliTest, check func(t *testing.T, tt cliTest)) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
				return
			}
			if tt.wantErr != nil || tt.wantErrStr != "" {
				t.Errorf("cli.run() error = nil, want an error")
				return
			}
			if check != nil {
				check(t, tt)
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, out := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	}
	runCliTests(t, cli, tests, nil)

	if !strings.Contains(out.String(), "Usage:") {
		t.Errorf("usage not printed, got %q", out.String())
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "0"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "add_donor_notes", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	runCliTests(t, cli, tests, nil)
}

func Test_commandLine_needy(t *testing.T) {
	cli, out := setup(t)

	p := testutil.CreatePerson(t, needyRepo, "Sita", "Pune", []string{"food"})

	type extra struct {
		verified bool
		status   string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"needy"}, wantErr: errHelp},
		{name: "no action", args: []string{"needy", "-id", p.ID}, wantErr: errHelp},
		{name: "unknown action", args: []string{"needy", "-id", p.ID, "-action", "lol"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"needy", "-lol"}, wantErrStr: "flag provided but not defined: -lol"},
		{name: "person not found", args: []string{"needy", "-id", "lol", "-action", "verify"}, wantErr: needy.ErrNotFound},
		{name: "verify", args: []string{"needy", "-id", p.ID, "-action", "verify"}, extra: extra{verified: true, status: needy.StatusVerified}},
		{name: "helped", args: []string{"needy", "-id", p.ID, "-action", "helped"}, extra: extra{verified: true, status: needy.StatusHelped}},
		{name: "unhelp", args: []string{"needy", "-id", p.ID, "-action", "unhelp"}, extra: extra{verified: true, status: needy.StatusVerified}},
		{name: "reject", args: []string{"needy", "-id", p.ID, "-action", "reject"}, extra: extra{verified: false, status: needy.StatusRejected}},
	}
	runCliTests(t, cli, tests, func(t *testing.T, tt cliTest) {
		want := tt.extra.(extra)
		got, err := needyRepo.GetPerson(context.Background(), p.ID)
		if err != nil {
			t.Fatalf("GetPerson() failed, %v", err)
		}
		if got.Verified != want.verified || got.Status != want.status {
			t.Errorf("person = (%t, %s), want (%t, %s)", got.Verified, got.Status, want.verified, want.status)
		}
	})

	if !strings.Contains(out.String(), "Person verified successfully: Sita (verified=true, status=verified)") {
		t.Errorf("missing verify outcome, got %q", out.String())
	}
	// verify, helped & reject notify the reporter
	if got := len(smsSvc.SentMessages()); got != 3 {
		t.Errorf("sent %d messages, want 3", got)
	}
}

func Test_commandLine_smslogs(t *testing.T) {
	cli, out := setup(t)

	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		cli.notifySvc.Notify(ctx, "+9198000000"+strconv.Itoa(i)+"0", "message "+strconv.Itoa(i))
	}

	tests := []cliTest{
		{name: "negative limit", args: []string{"smslogs", "-limit", "-1"}, wantErr: errHelp},
		{name: "non-int limit", args: []string{"smslogs", "-limit", "lol"}, wantErrStr: "invalid value \"lol\" for flag -limit: parse error"},
		{name: "limited", args: []string{"smslogs", "-limit", "2"}, extra: 2},
		{name: "all", args: []string{"smslogs", "-limit", "0"}, extra: 3},
		{name: "default limit", args: []string{"smslogs"}, extra: 3},
	}
	runCliTests(t, cli, tests, func(t *testing.T, tt cliTest) {
		// skip usage printed by previous failures
		listing := out.String()[strings.LastIndex(out.String(), "CREATED AT"):]
		lines := strings.Split(strings.TrimSpace(listing), "\n")
		// header + entries
		if got := len(lines) - 1; got != tt.extra.(int) {
			t.Errorf("listed %d entries, want %d:\n%s", got, tt.extra, listing)
		}
		if strings.Contains(listing, "+919800000010") {
			t.Errorf("phone numbers must be masked, got:\n%s", listing)
		}
		out.Reset()
	})
}
