package assessment

import (
	"fmt"
	"time"

	"github.com/trezcool/hukumu/core"
)

type Ratings struct {
	Complexity   int `json:"complexity" validate:"required,min=1,max=5"`
	Storytelling int `json:"storytelling" validate:"required,min=1,max=5"`
	ActionPlan   int `json:"actionPlan" validate:"required,min=1,max=5"`
	Overall      int `json:"overall" validate:"required,min=1,max=5"`
}

func (r Ratings) total() int {
	return r.Complexity + r.Storytelling + r.ActionPlan + r.Overall
}

type Comments struct {
	Complexity   string `json:"complexity"`
	Storytelling string `json:"storytelling"`
	ActionPlan   string `json:"actionPlan"`
	Overall      string `json:"overall"`
}

type Assessment struct {
	ID          string    `json:"id"`
	JudgeName   string    `json:"judgeName"`
	TeamName    string    `json:"teamName"`
	Group       string    `json:"group"`
	Ratings     Ratings   `json:"ratings"`
	Comments    Comments  `json:"comments"`
	SubmittedAt time.Time `json:"submittedAt"` // UTC
}

// NewAssessment contains a judge's submission for one team. A missing or
// out-of-range rating is rejected outright rather than silently coerced to
// the lowest score.
type NewAssessment struct {
	JudgeName string   `json:"judgeName" validate:"required"`
	TeamName  string   `json:"teamName" validate:"required"`
	Ratings   Ratings  `json:"ratings"`
	Comments  Comments `json:"comments"`
	Group     string   `json:"group"`
}

func (na *NewAssessment) Validate() error {
	na.JudgeName = core.CleanString(na.JudgeName)
	na.TeamName = core.CleanString(na.TeamName)
	na.Comments.Complexity = core.CleanString(na.Comments.Complexity)
	na.Comments.Storytelling = core.CleanString(na.Comments.Storytelling)
	na.Comments.ActionPlan = core.CleanString(na.Comments.ActionPlan)
	na.Comments.Overall = core.CleanString(na.Comments.Overall)
	return core.Validate.Struct(na)
}

// CompleteRequest asks to verify that a judge has assessed every team in a
// group. Completion is a derived fact, recomputed on demand; nothing is
// flagged on the records themselves.
type CompleteRequest struct {
	JudgeName string `json:"judgeName" validate:"required"`
	GroupName string `json:"groupName" validate:"required"`
}

func (cr *CompleteRequest) Validate() error {
	cr.JudgeName = core.CleanString(cr.JudgeName)
	cr.GroupName = core.CleanString(cr.GroupName)
	return core.Validate.Struct(cr)
}

// IncompleteError reports that a judge has not yet covered every team in the
// group.
type IncompleteError struct {
	Assessed int
	Total    int
}

func (err *IncompleteError) Error() string {
	return fmt.Sprintf("Judge has only assessed %d of %d teams", err.Assessed, err.Total)
}
