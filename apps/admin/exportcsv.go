package main

import (
	"fmt"
	"io/ioutil"
)

func (cli *commandLine) exportCSV(out string) error {
	content, err := cli.assessmentSvc.ExportCSV()
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(out, content, 0644); err != nil {
		return err
	}
	fmt.Printf("assessments exported to %s\n", out)
	return nil
}
