// Package sqlxrepos implements the domain repositories over Postgres via sqlx.
package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/hukumu/core/group"
)

// groupExpr mirrors group.Normalize in SQL: trim the reference and map a
// blank value to the default group. Comparisons stay case-sensitive, same as
// the JSON store.
func groupExpr(ref string) string {
	return `CASE WHEN trim(` + ref + `) = '' THEN '` + group.Default + `' ELSE trim(` + ref + `) END`
}

type groupRepository struct {
	db *sqlx.DB
}

func NewGroupRepository(db *sqlx.DB) group.Repository {
	return &groupRepository{db: db}
}

func (repo *groupRepository) QueryAllGroups() ([]string, error) {
	names := make([]string, 0)
	err := repo.db.Select(&names, `SELECT name FROM grp ORDER BY name`)
	return names, err
}

func (repo *groupRepository) QueryReferencedGroups() ([]string, error) {
	names := make([]string, 0)
	err := repo.db.Select(&names, `
		SELECT DISTINCT `+groupExpr("group_name")+` FROM team
		UNION
		SELECT DISTINCT `+groupExpr("group_name")+` FROM assessment`)
	return names, err
}

func (repo *groupRepository) GroupExists(name string) (bool, error) {
	var exists bool
	err := repo.db.Get(&exists,
		`SELECT EXISTS (SELECT 1 FROM grp WHERE `+groupExpr("name")+` = `+groupExpr("$1")+`)`, name)
	return exists, err
}

func (repo *groupRepository) CreateGroup(name string) error {
	_, err := repo.db.Exec(`INSERT INTO grp (name) VALUES ($1) ON CONFLICT DO NOTHING`, name)
	return err
}

func (repo *groupRepository) DeleteGroup(name string) error {
	res, err := repo.db.Exec(`DELETE FROM grp WHERE `+groupExpr("name")+` = `+groupExpr("$1"), name)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return group.ErrNotFound
	}
	_, err = repo.db.Exec(`DELETE FROM group_email WHERE group_name = `+groupExpr("$1"), name)
	return err
}

func (repo *groupRepository) GroupHasTeams(name string) (bool, error) {
	var exists bool
	err := repo.db.Get(&exists,
		`SELECT EXISTS (SELECT 1 FROM team WHERE `+groupExpr("group_name")+` = `+groupExpr("$1")+`)`, name)
	return exists, err
}

func (repo *groupRepository) GroupHasAssessments(name string) (bool, error) {
	var exists bool
	err := repo.db.Get(&exists,
		`SELECT EXISTS (SELECT 1 FROM assessment WHERE `+groupExpr("group_name")+` = `+groupExpr("$1")+`)`, name)
	return exists, err
}

func (repo *groupRepository) GetGroupEmail(name string) (string, error) {
	var email string
	err := repo.db.Get(&email, `SELECT email FROM group_email WHERE group_name = `+groupExpr("$1"), name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return email, err
}

func (repo *groupRepository) SetGroupEmail(name, email string) error {
	_, err := repo.db.Exec(`
		INSERT INTO group_email (group_name, email) VALUES (`+groupExpr("$1")+`, $2)
		ON CONFLICT (group_name) DO UPDATE SET email = EXCLUDED.email`, name, email)
	return err
}

func (repo *groupRepository) DeleteGroupEmail(name string) error {
	_, err := repo.db.Exec(`DELETE FROM group_email WHERE group_name = `+groupExpr("$1"), name)
	return err
}
