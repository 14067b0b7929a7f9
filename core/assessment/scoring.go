package assessment

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/trezcool/hukumu/core"
	"github.com/trezcool/hukumu/core/group"
	"github.com/trezcool/hukumu/core/team"
)

// percent maps a sum of ratings over judgeCount judges onto a 0-100 scale:
// each judge contributes at most 20 points (4 dimensions x 5).
func percent(ratingsTotal, judgeCount int) float64 {
	if judgeCount == 0 {
		return 0
	}
	return float64(ratingsTotal) / float64(judgeCount*20) * 100
}

func formatScore(score float64) string {
	return fmt.Sprintf("%.1f", score)
}

func formatPercent(ratingsTotal, judgeCount int) string {
	return formatScore(percent(ratingsTotal, judgeCount))
}

func formatAverage(total, judgeCount int) string {
	if judgeCount == 0 {
		judgeCount = 1
	}
	return fmt.Sprintf("%.2f", float64(total)/float64(judgeCount))
}

type (
	// Averages are per-dimension arithmetic means, fixed to 2 decimals.
	Averages struct {
		Complexity   string `json:"complexity"`
		Storytelling string `json:"storytelling"`
		ActionPlan   string `json:"actionPlan"`
		Overall      string `json:"overall"`
	}

	TeamStats struct {
		TeamName    string       `json:"teamName"`
		Assessments []Assessment `json:"assessments"`
		Averages    Averages     `json:"averages"`
		TotalScore  string       `json:"totalScore"`
		JudgeCount  int          `json:"judgeCount"`

		score float64
	}

	Analytics struct {
		TotalAssessments int         `json:"totalAssessments"`
		TotalTeams       int         `json:"totalTeams"`
		TeamStats        []TeamStats `json:"teamStats"`
		JudgeList        []string    `json:"judgeList"`
	}
)

type dimensionTotals struct {
	complexity, storytelling, actionPlan, overall int
}

func (dt *dimensionTotals) add(r Ratings) {
	dt.complexity += r.Complexity
	dt.storytelling += r.Storytelling
	dt.actionPlan += r.ActionPlan
	dt.overall += r.Overall
}

func (dt dimensionTotals) sum() int {
	return dt.complexity + dt.storytelling + dt.actionPlan + dt.overall
}

func (dt dimensionTotals) averages(judgeCount int) Averages {
	return Averages{
		Complexity:   formatAverage(dt.complexity, judgeCount),
		Storytelling: formatAverage(dt.storytelling, judgeCount),
		ActionPlan:   formatAverage(dt.actionPlan, judgeCount),
		Overall:      formatAverage(dt.overall, judgeCount),
	}
}

// Analytics aggregates a group's assessments (all groups when grp is empty)
// into per-team stats ranked by descending percentage. The comparison is
// numeric: formatted strings would misorder "80.0" above "100.0". A team
// with no assessments contributes no entry here.
func (svc *Service) Analytics(grp string) (Analytics, error) {
	source, err := svc.QueryByGroup(grp)
	if err != nil {
		return Analytics{}, err
	}

	byTeam := make(map[string][]Assessment)
	var teamOrder []string
	var judges []string
	seenJudges := make(map[string]bool)
	for _, a := range source {
		if _, ok := byTeam[a.TeamName]; !ok {
			teamOrder = append(teamOrder, a.TeamName)
		}
		byTeam[a.TeamName] = append(byTeam[a.TeamName], a)
		if !seenJudges[a.JudgeName] {
			seenJudges[a.JudgeName] = true
			judges = append(judges, a.JudgeName)
		}
	}

	stats := make([]TeamStats, 0, len(byTeam))
	for _, name := range teamOrder {
		stats = append(stats, computeTeamStats(name, byTeam[name]))
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].score > stats[j].score })

	return Analytics{
		TotalAssessments: len(source),
		TotalTeams:       len(stats),
		TeamStats:        stats,
		JudgeList:        judges,
	}, nil
}

func computeTeamStats(teamName string, assessments []Assessment) TeamStats {
	var totals dimensionTotals
	for _, a := range assessments {
		totals.add(a.Ratings)
	}
	count := len(assessments)
	score := percent(totals.sum(), count)
	return TeamStats{
		TeamName:    teamName,
		Assessments: assessments,
		Averages:    totals.averages(count),
		TotalScore:  formatScore(score),
		JudgeCount:  count,
		score:       score,
	}
}

type (
	// ResultEntry is a single judge's feedback as exposed to the team itself;
	// the judge's name is withheld.
	ResultEntry struct {
		Ratings     Ratings  `json:"ratings"`
		Comments    Comments `json:"comments"`
		SubmittedAt string   `json:"submittedAt"`
	}

	TeamResults struct {
		TeamName    string        `json:"teamName"`
		JudgeCount  int           `json:"judgeCount"`
		Averages    Averages      `json:"averages"`
		TotalScore  string        `json:"totalScore"`
		Assessments []ResultEntry `json:"assessments"`
		Members     []team.Member `json:"members"`
	}
)

// TeamResults resolves a team by its group-scoped PIN and aggregates its
// assessments. A valid PIN whose team has no assessments yet yields
// ErrNotAssessed, which is distinct from an invalid PIN.
func (svc *Service) TeamResults(grp, pin string) (TeamResults, error) {
	pin = core.CleanString(pin)
	if len(pin) != 6 {
		return TeamResults{}, core.NewValidationError(fmt.Errorf("please provide a valid 6-digit PIN"))
	}

	t, err := svc.teams.GetTeamByPIN(group.Normalize(grp), pin)
	if err != nil {
		return TeamResults{}, err
	}

	all, err := svc.repo.QueryAssessmentsByGroup(group.Normalize(grp))
	if err != nil {
		return TeamResults{}, err
	}
	var teamAssessments []Assessment
	for _, a := range all {
		if strings.EqualFold(a.TeamName, t.Name) {
			teamAssessments = append(teamAssessments, a)
		}
	}
	if len(teamAssessments) == 0 {
		return TeamResults{}, ErrNotAssessed
	}

	var totals dimensionTotals
	entries := make([]ResultEntry, 0, len(teamAssessments))
	for _, a := range teamAssessments {
		totals.add(a.Ratings)
		entries = append(entries, ResultEntry{
			Ratings:     a.Ratings,
			Comments:    a.Comments,
			SubmittedAt: a.SubmittedAt.Format(time.RFC3339),
		})
	}

	count := len(teamAssessments)
	members := t.Members
	if members == nil {
		members = []team.Member{}
	}
	return TeamResults{
		TeamName:    t.Name,
		JudgeCount:  count,
		Averages:    totals.averages(count),
		TotalScore:  formatPercent(totals.sum(), count),
		Assessments: entries,
		Members:     members,
	}, nil
}
