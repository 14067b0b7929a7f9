package main

import (
	"fmt"
	"io/ioutil"
	"strings"
)

func (cli *commandLine) importTeams(file, grp string) error {
	data, err := ioutil.ReadFile(file)
	if err != nil {
		return err
	}

	res, err := cli.teamSvc.ImportCSV(data, grp)
	if err != nil {
		return err
	}

	fmt.Printf("imported %d of %d teams\n", res.Imported, res.TotalProcessed)
	if len(res.Duplicates) > 0 {
		fmt.Printf("skipped duplicates: %s\n", strings.Join(res.Duplicates, ", "))
	}
	for _, t := range res.NewTeams {
		fmt.Printf("  %s (group %s, PIN %s)\n", t.Name, t.Group, t.PIN)
	}
	return nil
}
