package assessment

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/hukumu/core"
	"github.com/trezcool/hukumu/core/group"
)

var exportHeader = []string{
	"Judge Name", "Team Name",
	"Complexity Understanding", "Clear Storytelling", "Systems Action Plan", "Overall Assessment",
	"Complexity Comments", "Storytelling Comments", "Action Plan Comments", "Overall Comments",
	"Submitted At",
}

// ExportCSV renders every assessment into the fixed 11-column export format.
// Comment quoting is handled by the CSV writer, so exported files re-parse to
// the original rating integers and comment strings.
func (svc *Service) ExportCSV() ([]byte, error) {
	source, err := svc.repo.QueryAllAssessments()
	if err != nil {
		return nil, err
	}
	return writeCSV(source, false)
}

func writeCSV(source []Assessment, withScore bool) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := exportHeader
	if withScore {
		// the emailed variant carries a extra computed score column
		header = append(header[:6:6], append([]string{"Total Score %"}, header[6:]...)...)
	}
	if err := w.Write(header); err != nil {
		return nil, errors.Wrap(err, "writing CSV header")
	}

	for _, a := range source {
		row := []string{
			a.JudgeName,
			a.TeamName,
			fmt.Sprintf("%d", a.Ratings.Complexity),
			fmt.Sprintf("%d", a.Ratings.Storytelling),
			fmt.Sprintf("%d", a.Ratings.ActionPlan),
			fmt.Sprintf("%d", a.Ratings.Overall),
		}
		if withScore {
			row = append(row, formatPercent(a.Ratings.total(), 1)+"%")
		}
		row = append(row,
			a.Comments.Complexity,
			a.Comments.Storytelling,
			a.Comments.ActionPlan,
			a.Comments.Overall,
			a.SubmittedAt.Format(time.RFC3339),
		)
		if err := w.Write(row); err != nil {
			return nil, errors.Wrap(err, "writing CSV row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "flushing CSV")
	}
	return buf.Bytes(), nil
}

// EmailedResults reports a results-export email that was queued (or skipped
// when no program-team recipients are configured).
type EmailedResults struct {
	Recipients      []string
	AssessmentCount int
	Skipped         bool
}

// ResultsExportData feeds the results-export notification template.
type ResultsExportData struct {
	GroupName        string
	TotalAssessments int
	ExportedAt       time.Time
}

// EmailResults builds the group's assessment CSV (with the computed score
// column) and emails it to the configured program-team recipients. Missing
// recipients are a normal skip; an empty assessment set is an error.
func (svc *Service) EmailResults(grp string) (EmailedResults, error) {
	grp = group.Normalize(grp)
	source, err := svc.repo.QueryAssessmentsByGroup(grp)
	if err != nil {
		return EmailedResults{}, err
	}
	if len(source) == 0 {
		return EmailedResults{}, ErrNoData
	}

	recipients := core.Conf.ProgramTeamEmails
	if len(recipients) == 0 {
		svc.logger.Info("no program team emails configured, skipping results export")
		return EmailedResults{AssessmentCount: len(source), Skipped: true}, nil
	}

	content, err := writeCSV(source, true)
	if err != nil {
		return EmailedResults{}, err
	}

	now := time.Now().UTC()
	msg := &core.EmailMessage{
		Subject:      fmt.Sprintf("Team Assessment Results Export - %s - %s", grp, now.Format("2006-01-02")),
		TemplateName: "results-export",
		TemplateData: ResultsExportData{
			GroupName:        grp,
			TotalAssessments: len(source),
			ExportedAt:       now,
		},
	}
	for _, addr := range recipients {
		msg.To = append(msg.To, mail.Address{Address: addr})
	}
	if err := msg.Attach(
		bytes.NewReader(content),
		fmt.Sprintf("team-assessments-%s-%s.csv", grp, now.Format("2006-01-02")),
		"text/csv",
	); err != nil {
		return EmailedResults{}, errors.Wrap(err, "attaching results CSV")
	}
	svc.mailSvc.SendMessages(msg)

	return EmailedResults{Recipients: recipients, AssessmentCount: len(source)}, nil
}
