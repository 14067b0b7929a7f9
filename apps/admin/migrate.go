package main

import (
	"errors"

	"github.com/trezcool/hukumu/storage/database"
)

var (
	errNoDatabase = errors.New("migrations require a configured database engine")

	gooseRunFunc = database.RunGoose // mockable
)

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoDatabase
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(args[0], cli.db, arguments...)
}
