package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/haid/charityconnect/apps/api/echo"
	"github.com/haid/charityconnect/core"
	"github.com/haid/charityconnect/core/analytics"
	"github.com/haid/charityconnect/core/donor"
	"github.com/haid/charityconnect/core/needy"
	"github.com/haid/charityconnect/core/notify"
	appfs "github.com/haid/charityconnect/fs"
	emailsvc "github.com/haid/charityconnect/services/email"
	logsvc "github.com/haid/charityconnect/services/logger"
	paymentsvc "github.com/haid/charityconnect/services/payment"
	smssvc "github.com/haid/charityconnect/services/sms"
	"github.com/haid/charityconnect/storage/database"
	inmemdb "github.com/haid/charityconnect/storage/database/inmem"
	sqlxrepos "github.com/haid/charityconnect/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Storage is the backing store chosen from the config, along with its repositories.
type Storage struct {
	dig.Out

	Closer     StorageCloser
	DonorRepo  donor.Repository
	NeedyRepo  needy.Repository
	SMSLogRepo notify.Repository
}

// StorageCloser releases the backing store; Name is reported by the health check.
type StorageCloser struct {
	Name  string
	Close func() error
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newStorage(conf *core.Config, loggerParam DBLoggerParam) Storage {
	logger := loggerParam.Logger

	if !conf.Database.Enabled() {
		logger.Warn("No database configured, using in-memory storage")
		db := inmemdb.NewDB()
		return Storage{
			Closer:     StorageCloser{Name: "memory", Close: func() error { return nil }},
			DonorRepo:  inmemdb.NewDonorRepository(db),
			NeedyRepo:  inmemdb.NewNeedyRepository(db),
			SMSLogRepo: inmemdb.NewSMSLogRepository(db),
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout*6)
	defer cancel()

	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	db, err := database.Open(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	if err = database.Migrate(db.DB); err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}

	return Storage{
		Closer:     StorageCloser{Name: "postgres", Close: db.Close},
		DonorRepo:  sqlxrepos.NewDonorRepository(db),
		NeedyRepo:  sqlxrepos.NewNeedyRepository(db),
		SMSLogRepo: sqlxrepos.NewSMSLogRepository(db),
	}
}

func newEmailTemplates(conf *core.Config, logger core.Logger) *core.EmailTemplates {
	return core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf, logger)
}

func newEmailService(conf *core.Config, tmpls *core.EmailTemplates, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, tmpls, logger)
	}
	return emailsvc.NewSendgridService(conf, tmpls, logger)
}

func newValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate, translator
}

func newNotifier(svc *notify.Service) notify.Notifier {
	return svc
}

func newNeedyService(conf *core.Config, repo needy.Repository, notifier notify.Notifier) *needy.Service {
	return needy.NewService(repo, notifier, conf.Lifecycle.Strict)
}

func newAnalyticsService(conf *core.Config, donorRepo donor.Repository, needyRepo needy.Repository) *analytics.Service {
	return analytics.NewService(donorRepo, needyRepo, conf.Timezone)
}

type serverParams struct {
	dig.In

	Conf         *core.Config
	Logger       core.Logger
	Storage      StorageCloser
	DonorSvc     *donor.Service
	NeedySvc     *needy.Service
	AnalyticsSvc *analytics.Service
	NotifySvc    *notify.Service
	Validate     *validator.Validate
	Translator   ut.Translator
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:         p.Conf,
		Logger:       p.Logger,
		DonorSvc:     p.DonorSvc,
		NeedySvc:     p.NeedySvc,
		AnalyticsSvc: p.AnalyticsSvc,
		NotifySvc:    p.NotifySvc,
		Validate:     p.Validate,
		Translator:   p.Translator,
		Storage:      p.Storage.Name,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStorage))
	must(c.Provide(newEmailTemplates))
	must(c.Provide(newEmailService))
	must(c.Provide(smssvc.NewService))
	must(c.Provide(paymentsvc.NewService))
	must(c.Provide(newValidator))
	must(c.Provide(notify.NewService))
	must(c.Provide(newNotifier))
	must(c.Provide(newNeedyService))
	must(c.Provide(donor.NewService))
	must(c.Provide(newAnalyticsService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
