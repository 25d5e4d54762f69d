package main

import (
	"context"
	"log"
	"os"

	"github.com/haid/charityconnect/core"
	"github.com/haid/charityconnect/core/needy"
	"github.com/haid/charityconnect/core/notify"
	logsvc "github.com/haid/charityconnect/services/logger"
	smssvc "github.com/haid/charityconnect/services/sms"
	"github.com/haid/charityconnect/storage/database"
	sqlxrepos "github.com/haid/charityconnect/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()
	appLogger := logsvc.NewRollbarLogger(logger, conf)

	if !conf.Database.Enabled() {
		logger.Fatal("no database configured: set HAID_DATABASE_URL or HAID_DATABASE_HOST")
	}

	// set up DB
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout*6)
	errAndDie(database.CreateIfNotExist(ctx, conf))
	db, err := database.Open(ctx, conf)
	cancel()
	errAndDie(err)
	defer db.Close()

	// start CLI
	notifySvc := notify.NewService(sqlxrepos.NewSMSLogRepository(db), smssvc.NewService(conf, appLogger), appLogger)
	cli := commandLine{
		db:        db.DB,
		needySvc:  needy.NewService(sqlxrepos.NewNeedyRepository(db), notifySvc, conf.Lifecycle.Strict),
		notifySvc: notifySvc,
		out:       os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
