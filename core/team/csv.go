package team

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/hukumu/core"
)

const maxMembers = 6

// teamNameColumns are the recognized team-name headers, first non-blank match wins.
var teamNameColumns = []string{"team_name", "teamName", "Team Name", "name", "Name", "team", "Team"}

// CSVValidationError reports per-row validation failures of an uploaded batch.
// The whole batch is rejected; nothing is partially applied.
type CSVValidationError struct {
	Details    []string
	ValidTeams int
	TotalRows  int
}

func (err *CSVValidationError) Error() string {
	return "validation errors found"
}

// parseCSVRows reads raw CSV bytes into row maps keyed by header name.
// Short rows are tolerated; missing cells read as empty.
func parseCSVRows(data []byte) ([]map[string]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading CSV")
	}
	if len(records) < 2 {
		return nil, nil // header only, or nothing at all
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			col = strings.TrimSpace(col)
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// rowTeamName extracts the team name from a row, trying the recognized
// column aliases in order.
func rowTeamName(row map[string]string) string {
	for _, col := range teamNameColumns {
		if name := core.CleanString(row[col]); name != "" {
			return name
		}
	}
	return ""
}

// rowMembers extracts up to maxMembers members from a row. A member is
// recorded only if its name column is non-blank; the email is optional.
func rowMembers(row map[string]string) []Member {
	var members []Member
	for i := 1; i <= maxMembers; i++ {
		name := firstNonBlank(row,
			fmt.Sprintf("member%d_name", i),
			fmt.Sprintf("Member%d Name", i),
			fmt.Sprintf("member_%d_name", i),
		)
		if name == "" {
			continue
		}
		email := firstNonBlank(row,
			fmt.Sprintf("member%d_email", i),
			fmt.Sprintf("Member%d Email", i),
			fmt.Sprintf("member_%d_email", i),
		)
		members = append(members, Member{Name: name, Email: email})
	}
	return members
}

func firstNonBlank(row map[string]string, cols ...string) string {
	for _, col := range cols {
		if v := core.CleanString(row[col]); v != "" {
			return v
		}
	}
	return ""
}

// validateRows turns parsed rows into drafts, collecting per-row errors.
// A row fails when its team name is missing or duplicates (case-insensitive)
// a name already accepted within this same upload; duplicates against teams
// that already exist are resolved later by the catalog, not here.
func validateRows(rows []map[string]string) ([]string, []Draft) {
	var (
		errs   []string
		drafts []Draft
	)
	seen := make(map[string]bool, len(rows))

	for i, row := range rows {
		rowNum := i + 1

		name := rowTeamName(row)
		if name == "" {
			errs = append(errs, fmt.Sprintf("Row %d: Missing team name", rowNum))
			continue
		}
		if seen[strings.ToLower(name)] {
			errs = append(errs, fmt.Sprintf("Row %d: Duplicate team name %q", rowNum, name))
			continue
		}
		seen[strings.ToLower(name)] = true

		drafts = append(drafts, Draft{Name: name, Members: rowMembers(row)})
	}
	return errs, drafts
}

// CSVTemplate returns a downloadable teams-upload template with sample rows.
func CSVTemplate() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{
		"team_name",
		"member1_name", "member1_email",
		"member2_name", "member2_email",
		"member3_name", "member3_email",
		"member4_name", "member4_email",
	})
	_ = w.Write([]string{
		"Team Alpha",
		"John Smith", "john.smith@student.example.edu",
		"Sarah Johnson", "sarah.johnson@student.example.edu",
		"Mike Chen", "mike.chen@student.example.edu",
		"Lisa Brown", "lisa.brown@student.example.edu",
	})
	_ = w.Write([]string{
		"Team Beta",
		"Alex Wilson", "alex.wilson@student.example.edu",
		"Emma Davis", "emma.davis@student.example.edu",
		"Ryan Taylor", "ryan.taylor@student.example.edu",
		"", "",
	})
	w.Flush()
	return buf.Bytes()
}
