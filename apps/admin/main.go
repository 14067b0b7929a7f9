package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/hukumu/core"
	"github.com/trezcool/hukumu/core/assessment"
	"github.com/trezcool/hukumu/core/team"
	emailsvc "github.com/trezcool/hukumu/services/email"
	logsvc "github.com/trezcool/hukumu/services/logger"
	"github.com/trezcool/hukumu/storage/database"
	"github.com/trezcool/hukumu/storage/database/jsondb"
	"github.com/trezcool/hukumu/storage/database/sqlxrepos"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	appLogger := logsvc.NewStdLogger(logger)

	cli := commandLine{}

	// set up storage
	if core.Conf.Database.Engine == "" {
		store, err := jsondb.Open(core.Conf.DataDir, appLogger)
		errAndDie(err)
		cli.groupRepo = jsondb.NewGroupRepository(store)
		cli.teamRepo = jsondb.NewTeamRepository(store)
		cli.assessmentRepo = jsondb.NewAssessmentRepository(store)
	} else {
		var db *sql.DB
		var err error
		errAndDie(database.CreateIfNotExist(core.Conf))
		db, err = database.Open(core.Conf)
		errAndDie(err)
		defer db.Close()
		errAndDie(database.Ping(db))
		cli.db = db

		xdb := sqlx.NewDb(db, core.Conf.Database.Engine)
		cli.groupRepo = sqlxrepos.NewGroupRepository(xdb)
		cli.teamRepo = sqlxrepos.NewTeamRepository(xdb)
		cli.assessmentRepo = sqlxrepos.NewAssessmentRepository(xdb)
	}

	// set up services
	mailSvc := emailsvc.NewConsoleService()
	cli.teamSvc = team.NewService(cli.teamRepo, mailSvc, appLogger)
	cli.assessmentSvc = assessment.NewService(cli.assessmentRepo, cli.teamRepo, cli.groupRepo, mailSvc, appLogger)

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
