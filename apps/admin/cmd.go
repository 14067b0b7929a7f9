package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/trezcool/hukumu/core/assessment"
	"github.com/trezcool/hukumu/core/group"
	"github.com/trezcool/hukumu/core/team"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db *sql.DB

	groupRepo      group.Repository
	teamRepo       team.Repository
	assessmentRepo assessment.Repository

	teamSvc       *team.Service
	assessmentSvc *assessment.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args...]                  - run database migrations (goose commands)")
	fmt.Println("  exportcsv -out FILE                        - export all assessments to a CSV file")
	fmt.Println("  importteams -file FILE [-group GROUP]      - import teams from a CSV file")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	exportCmd := flag.NewFlagSet("exportcsv", flag.ExitOnError)
	exportOut := exportCmd.String("out", "", "Destination file for the CSV export.")

	importCmd := flag.NewFlagSet("importteams", flag.ExitOnError)
	importFile := importCmd.String("file", "", "The teams CSV file to import.")
	importGroup := importCmd.String("group", "", "The group to import the teams into. Defaults to 'default'.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "exportcsv":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *exportOut == "" {
			exportCmd.Usage()
			return errHelp
		}
		return cli.exportCSV(*exportOut)
	case "importteams":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importTeams(*importFile, *importGroup)
	default:
		cli.printUsage()
		return errHelp
	}
}
