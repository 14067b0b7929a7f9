package assessment

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/hukumu/core"
	"github.com/trezcool/hukumu/core/group"
	"github.com/trezcool/hukumu/core/team"
)

var (
	// errors
	ErrNotFound    = errors.New("assessment not found")
	ErrNotAssessed = errors.New("no assessments found for this team yet")
	ErrNoData      = errors.New("no assessment data available to email")
)

type (
	Repository interface {
		CreateAssessment(a Assessment) (Assessment, error)
		UpdateAssessment(a Assessment) (Assessment, error)
		QueryAllAssessments() ([]Assessment, error)
		QueryAssessmentsByGroup(grp string) ([]Assessment, error)
		// QueryAssessmentsByTeam matches the team name case-insensitively;
		// an empty grp matches every group.
		QueryAssessmentsByTeam(teamName, grp string) ([]Assessment, error)
		// GetAssessmentByJudgeAndTeam is the upsert key lookup: judge name
		// case-insensitive, team name exact.
		GetAssessmentByJudgeAndTeam(judgeName, teamName string) (Assessment, error)
	}

	// EmailDirectory resolves a group's notification recipient; an empty
	// result means none is configured.
	EmailDirectory interface {
		GetGroupEmail(name string) (string, error)
	}

	Service struct {
		repo    Repository
		teams   team.Repository
		emails  EmailDirectory
		mailSvc core.EmailService
		logger  core.Logger
	}
)

func NewService(repo Repository, teams team.Repository, emails EmailDirectory, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{repo: repo, teams: teams, emails: emails, mailSvc: mailSvc, logger: logger}
}

// resolveGroup finds the authoritative group for a submission: the matched
// team's own group wins over whatever the submitter declared, and when a team
// name collides across groups the non-default group is preferred.
func (svc *Service) resolveGroup(teamName, declared string) (string, error) {
	matching, err := svc.teams.QueryTeamsByName(teamName)
	if err != nil {
		return "", err
	}
	if len(matching) == 0 {
		return group.Normalize(declared), nil
	}
	for _, t := range matching {
		if group.Normalize(t.Group) != group.Default {
			return group.Normalize(t.Group), nil
		}
	}
	return group.Normalize(matching[0].Group), nil
}

// Submit upserts a judge's assessment of a team, keyed by (judge name
// lower-cased, team name exact). A resubmission overlays the new ratings and
// comments onto the existing record, keeping its identifier; it never appends
// a second record for the pair. The returned flag reports whether an existing
// record was updated.
func (svc *Service) Submit(na NewAssessment) (Assessment, bool, error) {
	if err := na.Validate(); err != nil {
		return Assessment{}, false, err
	}

	grp, err := svc.resolveGroup(na.TeamName, na.Group)
	if err != nil {
		return Assessment{}, false, err
	}

	a := Assessment{
		JudgeName:   na.JudgeName,
		TeamName:    na.TeamName,
		Group:       grp,
		Ratings:     na.Ratings,
		Comments:    na.Comments,
		SubmittedAt: time.Now().UTC(),
	}

	var updated bool
	existing, err := svc.repo.GetAssessmentByJudgeAndTeam(na.JudgeName, na.TeamName)
	switch {
	case err == nil:
		a.ID = existing.ID
		a, err = svc.repo.UpdateAssessment(a)
		updated = true
	case errors.Is(err, ErrNotFound):
		a.ID = uuid.New().String()
		a, err = svc.repo.CreateAssessment(a)
	default:
		return Assessment{}, false, err
	}
	if err != nil {
		return Assessment{}, false, err
	}

	if core.Conf.NotifyOnSubmit {
		svc.notifySubmitted(a)
	}
	return a, updated, nil
}

func (svc *Service) QueryAll() ([]Assessment, error) {
	return svc.repo.QueryAllAssessments()
}

func (svc *Service) QueryByGroup(grp string) ([]Assessment, error) {
	if core.CleanString(grp) == "" {
		return svc.repo.QueryAllAssessments()
	}
	return svc.repo.QueryAssessmentsByGroup(group.Normalize(grp))
}

func (svc *Service) QueryByTeam(teamName, grp string) ([]Assessment, error) {
	if grp = core.CleanString(grp); grp != "" {
		grp = group.Normalize(grp)
	}
	return svc.repo.QueryAssessmentsByTeam(core.CleanString(teamName), grp)
}

// QueryByGroupTeams returns the assessments of every team registered in the
// group, matched through the teams' names rather than the assessments' own
// group field (legacy records may carry a stale group).
func (svc *Service) QueryByGroupTeams(grp string) ([]Assessment, error) {
	groupTeams, err := svc.teams.QueryTeamsByGroup(group.Normalize(grp))
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(groupTeams))
	for _, t := range groupTeams {
		names[t.Name] = true
	}

	all, err := svc.repo.QueryAllAssessments()
	if err != nil {
		return nil, err
	}
	matched := make([]Assessment, 0, len(all))
	for _, a := range all {
		if names[a.TeamName] {
			matched = append(matched, a)
		}
	}
	return matched, nil
}

// CompletionSummary reports a successful completion check.
type CompletionSummary struct {
	JudgeName        string
	GroupName        string
	AssessmentsCount int
	CompletedAt      time.Time
}

// MarkComplete verifies that the judge has assessed every team in the group
// and, on success, fires the judge-complete notification. It fails with an
// IncompleteError listing counts otherwise. No completed flag is stored:
// completion stays a derived, re-computable fact.
func (svc *Service) MarkComplete(cr CompleteRequest) (CompletionSummary, error) {
	if err := cr.Validate(); err != nil {
		return CompletionSummary{}, err
	}
	grp := group.Normalize(cr.GroupName)

	groupTeams, err := svc.teams.QueryTeamsByGroup(grp)
	if err != nil {
		return CompletionSummary{}, err
	}
	names := make(map[string]bool, len(groupTeams))
	for _, t := range groupTeams {
		names[t.Name] = true
	}

	all, err := svc.repo.QueryAllAssessments()
	if err != nil {
		return CompletionSummary{}, err
	}
	var judgeAssessments []Assessment
	assessed := make(map[string]bool)
	for _, a := range all {
		if strings.EqualFold(a.JudgeName, cr.JudgeName) && names[a.TeamName] {
			judgeAssessments = append(judgeAssessments, a)
			assessed[a.TeamName] = true
		}
	}

	if len(assessed) != len(groupTeams) {
		return CompletionSummary{}, &IncompleteError{Assessed: len(assessed), Total: len(groupTeams)}
	}

	summary := CompletionSummary{
		JudgeName:        cr.JudgeName,
		GroupName:        grp,
		AssessmentsCount: len(judgeAssessments),
		CompletedAt:      time.Now().UTC(),
	}
	svc.notifyComplete(summary, judgeAssessments)
	return summary, nil
}

func (svc *Service) groupRecipient(grp string) (mail.Address, bool) {
	email, err := svc.emails.GetGroupEmail(grp)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("looking up email for group %q: %v", grp, err), err)
		return mail.Address{}, false
	}
	if email == "" {
		svc.logger.Info(fmt.Sprintf("no email configured for group %q, skipping notification", grp))
		return mail.Address{}, false
	}
	return mail.Address{Address: email}, true
}

// SubmittedData feeds the assessment-submitted notification template.
type SubmittedData struct {
	Assessment Assessment
	GroupName  string
	TotalScore string
}

func (svc *Service) notifySubmitted(a Assessment) {
	to, ok := svc.groupRecipient(a.Group)
	if !ok {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{to},
		Subject:      fmt.Sprintf("New Assessment: %s (%s) - Judge: %s", a.TeamName, a.Group, a.JudgeName),
		TemplateName: "assessment-submitted",
		TemplateData: SubmittedData{
			Assessment: a,
			GroupName:  a.Group,
			TotalScore: formatPercent(a.Ratings.total(), 1),
		},
	})
}

// CompletionData feeds the judge-complete notification template.
type CompletionData struct {
	JudgeName        string
	GroupName        string
	CompletedAt      time.Time
	TotalAssessments int
	AverageScore     string
	HighestScore     string
	LowestScore      string
	TeamsAbove80     int
	Rows             []CompletionRow
}

type CompletionRow struct {
	TeamName string
	Ratings  Ratings
	Score    string
}

func (svc *Service) notifyComplete(summary CompletionSummary, judgeAssessments []Assessment) {
	to, ok := svc.groupRecipient(summary.GroupName)
	if !ok {
		return
	}

	data := CompletionData{
		JudgeName:        summary.JudgeName,
		GroupName:        summary.GroupName,
		CompletedAt:      summary.CompletedAt,
		TotalAssessments: len(judgeAssessments),
	}
	var sum, high, low float64
	for i, a := range judgeAssessments {
		score := percent(a.Ratings.total(), 1)
		sum += score
		if i == 0 || score > high {
			high = score
		}
		if i == 0 || score < low {
			low = score
		}
		if score >= 80 {
			data.TeamsAbove80++
		}
		data.Rows = append(data.Rows, CompletionRow{
			TeamName: a.TeamName,
			Ratings:  a.Ratings,
			Score:    formatScore(score),
		})
	}
	if n := len(judgeAssessments); n > 0 {
		data.AverageScore = formatScore(sum / float64(n))
		data.HighestScore = formatScore(high)
		data.LowestScore = formatScore(low)
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To: []mail.Address{to},
		Subject: fmt.Sprintf("Judge Complete: %s finished assessing %s (%d teams)",
			summary.JudgeName, summary.GroupName, data.TotalAssessments),
		TemplateName: "judge-complete",
		TemplateData: data,
	})
}
