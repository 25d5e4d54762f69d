package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/haid/charityconnect/core"
	"github.com/haid/charityconnect/core/needy"
	"github.com/haid/charityconnect/core/notify"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db        *sql.DB
	needySvc  *needy.Service
	notifySvc *notify.Service
	out       io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, up-by-one, up-to, down, down-to, redo, reset, status, version, create, fix)")
	fmt.Fprintln(cli.out, "  needy -id ID -action ACTION - apply an admin operation (verify, reject, helped, unhelp, unverify, unreject)")
	fmt.Fprintln(cli.out, "  smslogs [-limit N] - list the latest SMS delivery attempts")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	needyCmd := flag.NewFlagSet("needy", flag.ContinueOnError)
	needyCmd.SetOutput(cli.out)
	needyID := needyCmd.String("id", "", "The needy person's ID.")
	needyAction := needyCmd.String("action", "", "The admin operation to apply.")

	smsLogsCmd := flag.NewFlagSet("smslogs", flag.ContinueOnError)
	smsLogsCmd.SetOutput(cli.out)
	smsLogsLimit := smsLogsCmd.Int("limit", 20, "The number of entries to list; 0 lists all.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "needy":
		if err := needyCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *needyID == "" || !needy.IsAction(*needyAction) {
			needyCmd.Usage()
			return errHelp
		}
		return cli.applyNeedyAction(*needyID, *needyAction)
	case "smslogs":
		if err := smsLogsCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *smsLogsLimit < 0 {
			smsLogsCmd.Usage()
			return errHelp
		}
		return cli.listSMSLogs(*smsLogsLimit)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) applyNeedyAction(id, action string) error {
	p, err := cli.needySvc.Apply(context.Background(), id, action)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s: %s (verified=%t, status=%s)\n", needy.ActionMessage(action), p.Name, p.Verified, p.Status)
	return nil
}

func (cli *commandLine) listSMSLogs(limit int) error {
	logs, err := cli.notifySvc.QueryLogs(context.Background())
	if err != nil {
		return err
	}
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED AT\tPHONE\tSTATUS\tMESSAGE")
	for _, l := range logs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", l.CreatedAt.Format("2006-01-02 15:04:05"), core.MaskPhone(l.Phone), l.Status, l.Message)
	}
	return w.Flush()
}
