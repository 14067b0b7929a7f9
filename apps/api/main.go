package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/hukumu/apps/api/echo"
	"github.com/trezcool/hukumu/core"
	"github.com/trezcool/hukumu/core/assessment"
	"github.com/trezcool/hukumu/core/group"
	"github.com/trezcool/hukumu/core/team"
	emailsvc "github.com/trezcool/hukumu/services/email"
	logsvc "github.com/trezcool/hukumu/services/logger"
	"github.com/trezcool/hukumu/storage/database"
	"github.com/trezcool/hukumu/storage/database/jsondb"
	"github.com/trezcool/hukumu/storage/database/sqlxrepos"
)

const shutdownTimeout = 20 * time.Second

type repos struct {
	groups      group.Repository
	teams       team.Repository
	assessments assessment.Repository
}

func main() {
	// set up logger
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if core.Conf.RollbarToken != "" {
		rl := logsvc.NewRollbarLogger(std, core.Conf)
		rl.Enable(!core.Conf.Debug)
		logger = rl
	} else {
		logger = logsvc.NewStdLogger(std)
	}

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	// set up storage
	store, closeStore, err := setUpStorage(logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer closeStore()

	// set up services
	var backend core.EmailService
	if core.Conf.Debug {
		backend = emailsvc.NewConsoleService()
	} else {
		backend = emailsvc.NewSendgridService(logger)
	}
	mailSvc := emailsvc.NewQueuedService(backend, logger, core.Conf.EmailQueueSize, core.Conf.EmailWorkers)
	defer mailSvc.Close()

	groupSvc := group.NewService(store.groups)
	teamSvc := team.NewService(store.teams, mailSvc, logger)
	assessmentSvc := assessment.NewService(store.assessments, store.teams, store.groups, mailSvc, logger)

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Address:        core.Conf.Server.Addr,
		GroupSvc:       groupSvc,
		TeamSvc:        teamSvc,
		AssessmentSvc:  assessmentSvc,
		MailSvc:        mailSvc,
		Logger:         logger,
		SignalShutdown: func() { shutdown <- syscall.SIGTERM },
	})
	go server.Start()

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

// setUpStorage picks the backend: Postgres when a database engine is
// configured, the JSON snapshot store otherwise.
func setUpStorage(logger core.Logger) (repos, func(), error) {
	if core.Conf.Database.Engine == "" {
		db, err := jsondb.Open(core.Conf.DataDir, logger)
		if err != nil {
			return repos{}, nil, err
		}
		return repos{
			groups:      jsondb.NewGroupRepository(db),
			teams:       jsondb.NewTeamRepository(db),
			assessments: jsondb.NewAssessmentRepository(db),
		}, func() {}, nil
	}

	if err := database.CreateIfNotExist(core.Conf); err != nil {
		return repos{}, nil, err
	}
	db, err := database.Open(core.Conf)
	if err != nil {
		return repos{}, nil, err
	}
	if err = database.Ping(db); err != nil {
		return repos{}, nil, err
	}
	if err = database.Migrate(db); err != nil {
		return repos{}, nil, err
	}

	xdb := sqlx.NewDb(db, core.Conf.Database.Engine)
	closeDB := func() {
		if err := xdb.Close(); err != nil {
			logger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}
	return repos{
		groups:      sqlxrepos.NewGroupRepository(xdb),
		teams:       sqlxrepos.NewTeamRepository(xdb),
		assessments: sqlxrepos.NewAssessmentRepository(xdb),
	}, closeDB, nil
}
