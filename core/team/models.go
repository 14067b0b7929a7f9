package team

import (
	"time"

	"github.com/trezcool/hukumu/core"
)

// SourceCSVUpload marks teams created through a CSV import.
const SourceCSVUpload = "csv_upload"

type Member struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Group     string    `json:"group"`
	PIN       string    `json:"pin"`
	Members   []Member  `json:"members"`
	CreatedAt time.Time `json:"createdAt"` // UTC
	Source    string    `json:"source,omitempty"`
}

// NewTeam contains information needed to register a single Team.
// Unlike the CSV import path, this path does not check name uniqueness
// within the group; duplicates are tolerated here.
type NewTeam struct {
	Name  string `json:"name" validate:"required"`
	Group string `json:"group"`
}

func (nt *NewTeam) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	return core.Validate.Struct(nt)
}

// Draft is a validated CSV row awaiting group and PIN assignment.
type Draft struct {
	Name    string
	Members []Member
}
