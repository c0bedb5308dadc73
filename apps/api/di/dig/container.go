package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/astravon/portal/apps/api/echo"
	"github.com/astravon/portal/core"
	"github.com/astravon/portal/core/podcast"
	"github.com/astravon/portal/core/post"
	"github.com/astravon/portal/core/school"
	"github.com/astravon/portal/core/session"
	"github.com/astravon/portal/core/user"
	emailsvc "github.com/astravon/portal/services/email"
	logsvc "github.com/astravon/portal/services/logger"
	"github.com/astravon/portal/services/realtime"
	uploadsvc "github.com/astravon/portal/services/upload"
	"github.com/astravon/portal/storage/database"
	"github.com/astravon/portal/storage/database/inmem"
	sqlxrepos "github.com/astravon/portal/storage/database/sqlx"
)

// EngineMemory runs the API on the in-memory repositories (no database server needed).
const EngineMemory = "memory"

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type Repositories struct {
	dig.Out
	Users    user.Repository
	Posts    post.Repository
	Schools  school.Repository
	Podcasts podcast.Repository
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

// newDB returns nil when the memory engine is configured.
func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	if conf.Database.Engine == EngineMemory {
		loggerParam.Logger.Info("using the in-memory database; data is lost on exit")
		return nil
	}

	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newRepositories(db *sqlx.DB) Repositories {
	if db == nil {
		mem := inmemdb.Open()
		return Repositories{
			Users:    inmemdb.NewUserRepository(mem),
			Posts:    inmemdb.NewPostRepository(mem),
			Schools:  inmemdb.NewSchoolRepository(mem),
			Podcasts: inmemdb.NewPodcastRepository(mem),
		}
	}
	return Repositories{
		Users:    sqlxrepos.NewUserRepository(db),
		Posts:    sqlxrepos.NewPostRepository(db),
		Schools:  sqlxrepos.NewSchoolRepository(db),
		Podcasts: sqlxrepos.NewPodcastRepository(db),
	}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

// newHub provides the realtime hub both as the /postHub handler and as the post services' Notifier.
func newHub(logger core.Logger) (*realtime.Hub, post.Notifier) {
	hub := realtime.NewHub(logger)
	return hub, hub
}

func newUploader(conf *core.Config, logger core.Logger) uploadsvc.Uploader {
	uploader, err := uploadsvc.New(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up uploads: %v", err), err)
	}
	return uploader
}

func newGuard(conf *core.Config) session.Guard {
	return session.NewGuard(conf.AdminMails...)
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newRepositories))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newHub))
	must(c.Provide(newUploader))
	must(c.Provide(newGuard))
	must(c.Provide(user.NewService))
	must(c.Provide(post.NewService))
	must(c.Provide(school.NewService))
	must(c.Provide(podcast.NewService))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
