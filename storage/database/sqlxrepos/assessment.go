package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/hukumu/core/assessment"
)

type assessmentRepository struct {
	db *sqlx.DB
}

func NewAssessmentRepository(db *sqlx.DB) assessment.Repository {
	return &assessmentRepository{db: db}
}

type assessmentRow struct {
	ID                  string    `db:"id"`
	JudgeName           string    `db:"judge_name"`
	TeamName            string    `db:"team_name"`
	GroupName           string    `db:"group_name"`
	RatingComplexity    int       `db:"rating_complexity"`
	RatingStorytelling  int       `db:"rating_storytelling"`
	RatingActionPlan    int       `db:"rating_action_plan"`
	RatingOverall       int       `db:"rating_overall"`
	CommentComplexity   string    `db:"comment_complexity"`
	CommentStorytelling string    `db:"comment_storytelling"`
	CommentActionPlan   string    `db:"comment_action_plan"`
	CommentOverall      string    `db:"comment_overall"`
	SubmittedAt         time.Time `db:"submitted_at"`
}

func (r assessmentRow) toAssessment() assessment.Assessment {
	return assessment.Assessment{
		ID:        r.ID,
		JudgeName: r.JudgeName,
		TeamName:  r.TeamName,
		Group:     r.GroupName,
		Ratings: assessment.Ratings{
			Complexity:   r.RatingComplexity,
			Storytelling: r.RatingStorytelling,
			ActionPlan:   r.RatingActionPlan,
			Overall:      r.RatingOverall,
		},
		Comments: assessment.Comments{
			Complexity:   r.CommentComplexity,
			Storytelling: r.CommentStorytelling,
			ActionPlan:   r.CommentActionPlan,
			Overall:      r.CommentOverall,
		},
		SubmittedAt: r.SubmittedAt,
	}
}

func toAssessments(rows []assessmentRow) []assessment.Assessment {
	as := make([]assessment.Assessment, 0, len(rows))
	for _, r := range rows {
		as = append(as, r.toAssessment())
	}
	return as
}

func assessmentArgs(a assessment.Assessment) []interface{} {
	return []interface{}{
		a.ID, a.JudgeName, a.TeamName, a.Group,
		a.Ratings.Complexity, a.Ratings.Storytelling, a.Ratings.ActionPlan, a.Ratings.Overall,
		a.Comments.Complexity, a.Comments.Storytelling, a.Comments.ActionPlan, a.Comments.Overall,
		a.SubmittedAt,
	}
}

func (repo *assessmentRepository) CreateAssessment(a assessment.Assessment) (assessment.Assessment, error) {
	_, err := repo.db.Exec(`
		INSERT INTO assessment (
			id, judge_name, team_name, group_name,
			rating_complexity, rating_storytelling, rating_action_plan, rating_overall,
			comment_complexity, comment_storytelling, comment_action_plan, comment_overall,
			submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		assessmentArgs(a)...,
	)
	if err != nil {
		return assessment.Assessment{}, err
	}
	return a, nil
}

func (repo *assessmentRepository) UpdateAssessment(a assessment.Assessment) (assessment.Assessment, error) {
	res, err := repo.db.Exec(`
		UPDATE assessment SET
			judge_name = $2, team_name = $3, group_name = $4,
			rating_complexity = $5, rating_storytelling = $6, rating_action_plan = $7, rating_overall = $8,
			comment_complexity = $9, comment_storytelling = $10, comment_action_plan = $11, comment_overall = $12,
			submitted_at = $13
		WHERE id = $1`,
		assessmentArgs(a)...,
	)
	if err != nil {
		return assessment.Assessment{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assessment.Assessment{}, assessment.ErrNotFound
	}
	return a, nil
}

func (repo *assessmentRepository) QueryAllAssessments() ([]assessment.Assessment, error) {
	var rows []assessmentRow
	if err := repo.db.Select(&rows, `SELECT * FROM assessment ORDER BY submitted_at`); err != nil {
		return nil, err
	}
	return toAssessments(rows), nil
}

func (repo *assessmentRepository) QueryAssessmentsByGroup(grp string) ([]assessment.Assessment, error) {
	var rows []assessmentRow
	err := repo.db.Select(&rows, `
		SELECT * FROM assessment WHERE `+groupExpr("group_name")+` = `+groupExpr("$1")+` ORDER BY submitted_at`, grp)
	if err != nil {
		return nil, err
	}
	return toAssessments(rows), nil
}

func (repo *assessmentRepository) QueryAssessmentsByTeam(teamName, grp string) ([]assessment.Assessment, error) {
	var rows []assessmentRow
	var err error
	if grp == "" {
		err = repo.db.Select(&rows, `
			SELECT * FROM assessment WHERE lower(team_name) = lower($1) ORDER BY submitted_at`, teamName)
	} else {
		err = repo.db.Select(&rows, `
			SELECT * FROM assessment
			WHERE lower(team_name) = lower($1) AND `+groupExpr("group_name")+` = `+groupExpr("$2")+`
			ORDER BY submitted_at`, teamName, grp)
	}
	if err != nil {
		return nil, err
	}
	return toAssessments(rows), nil
}

func (repo *assessmentRepository) GetAssessmentByJudgeAndTeam(judgeName, teamName string) (assessment.Assessment, error) {
	var row assessmentRow
	err := repo.db.Get(&row, `
		SELECT * FROM assessment WHERE lower(judge_name) = lower($1) AND team_name = $2`, judgeName, teamName)
	if err == sql.ErrNoRows {
		return assessment.Assessment{}, assessment.ErrNotFound
	}
	if err != nil {
		return assessment.Assessment{}, err
	}
	return row.toAssessment(), nil
}
