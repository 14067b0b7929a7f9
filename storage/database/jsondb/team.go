package jsondb

import (
	"github.com/trezcool/hukumu/core/group"
	"github.com/trezcool/hukumu/core/team"
)

type teamRepository struct {
	db *DB
}

func NewTeamRepository(db *DB) team.Repository {
	return &teamRepository{db: db}
}

func (repo *teamRepository) CreateTeam(t team.Team) (team.Team, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.teams = append(repo.db.teams, t)
	repo.db.saveLocked(teamsFile, repo.db.teams)
	return t, nil
}

// CreateTeams appends a batch under one lock and one file write, so a CSV
// import lands atomically with respect to concurrent readers.
func (repo *teamRepository) CreateTeams(ts []team.Team) ([]team.Team, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.teams = append(repo.db.teams, ts...)
	repo.db.saveLocked(teamsFile, repo.db.teams)
	return ts, nil
}

func (repo *teamRepository) QueryAllTeams() ([]team.Team, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	teams := make([]team.Team, len(repo.db.teams))
	copy(teams, repo.db.teams)
	return teams, nil
}

func (repo *teamRepository) QueryTeamsByGroup(grp string) ([]team.Team, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	norm := group.Normalize(grp)
	teams := make([]team.Team, 0)
	for _, t := range repo.db.teams {
		if group.Normalize(t.Group) == norm {
			teams = append(teams, t)
		}
	}
	return teams, nil
}

func (repo *teamRepository) QueryTeamsByName(name string) ([]team.Team, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var teams []team.Team
	for _, t := range repo.db.teams {
		if t.Name == name {
			teams = append(teams, t)
		}
	}
	return teams, nil
}

func (repo *teamRepository) GetTeamByPIN(grp, pin string) (team.Team, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	norm := group.Normalize(grp)
	for _, t := range repo.db.teams {
		if t.PIN == pin && group.Normalize(t.Group) == norm {
			return t, nil
		}
	}
	return team.Team{}, team.ErrNotFound
}
