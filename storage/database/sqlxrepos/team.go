package sqlxrepos

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/hukumu/core/team"
)

type teamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) team.Repository {
	return &teamRepository{db: db}
}

type teamRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	GroupName string    `db:"group_name"`
	PIN       string    `db:"pin"`
	Members   []byte    `db:"members"`
	Source    string    `db:"source"`
	CreatedAt time.Time `db:"created_at"`
}

func (r teamRow) toTeam() (team.Team, error) {
	t := team.Team{
		ID:        r.ID,
		Name:      r.Name,
		Group:     r.GroupName,
		PIN:       r.PIN,
		Members:   []team.Member{},
		CreatedAt: r.CreatedAt,
		Source:    r.Source,
	}
	if len(r.Members) > 0 {
		if err := json.Unmarshal(r.Members, &t.Members); err != nil {
			return team.Team{}, errors.Wrap(err, "parsing team members")
		}
	}
	return t, nil
}

func toTeams(rows []teamRow) ([]team.Team, error) {
	teams := make([]team.Team, 0, len(rows))
	for _, r := range rows {
		t, err := r.toTeam()
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, nil
}

const insertTeamQuery = `
	INSERT INTO team (id, name, group_name, pin, members, source, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

func (repo *teamRepository) CreateTeam(t team.Team) (team.Team, error) {
	members, err := json.Marshal(t.Members)
	if err != nil {
		return team.Team{}, errors.Wrap(err, "encoding team members")
	}
	if _, err := repo.db.Exec(insertTeamQuery, t.ID, t.Name, t.Group, t.PIN, members, t.Source, t.CreatedAt); err != nil {
		return team.Team{}, err
	}
	return t, nil
}

func (repo *teamRepository) CreateTeams(ts []team.Team) ([]team.Team, error) {
	tx, err := repo.db.Beginx()
	if err != nil {
		return nil, err
	}
	for _, t := range ts {
		members, err := json.Marshal(t.Members)
		if err != nil {
			_ = tx.Rollback()
			return nil, errors.Wrap(err, "encoding team members")
		}
		if _, err := tx.Exec(insertTeamQuery, t.ID, t.Name, t.Group, t.PIN, members, t.Source, t.CreatedAt); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ts, nil
}

func (repo *teamRepository) QueryAllTeams() ([]team.Team, error) {
	var rows []teamRow
	if err := repo.db.Select(&rows, `SELECT * FROM team ORDER BY created_at`); err != nil {
		return nil, err
	}
	return toTeams(rows)
}

func (repo *teamRepository) QueryTeamsByGroup(grp string) ([]team.Team, error) {
	var rows []teamRow
	err := repo.db.Select(&rows,
		`SELECT * FROM team WHERE `+groupExpr("group_name")+` = `+groupExpr("$1")+` ORDER BY created_at`, grp)
	if err != nil {
		return nil, err
	}
	return toTeams(rows)
}

func (repo *teamRepository) QueryTeamsByName(name string) ([]team.Team, error) {
	var rows []teamRow
	if err := repo.db.Select(&rows, `SELECT * FROM team WHERE name = $1`, name); err != nil {
		return nil, err
	}
	return toTeams(rows)
}

func (repo *teamRepository) GetTeamByPIN(grp, pin string) (team.Team, error) {
	var row teamRow
	err := repo.db.Get(&row,
		`SELECT * FROM team WHERE `+groupExpr("group_name")+` = `+groupExpr("$1")+` AND pin = $2`, grp, pin)
	if err == sql.ErrNoRows {
		return team.Team{}, team.ErrNotFound
	}
	if err != nil {
		return team.Team{}, err
	}
	return row.toTeam()
}
