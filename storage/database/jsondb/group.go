package jsondb

import (
	"github.com/trezcool/hukumu/core/group"
)

type groupRepository struct {
	db *DB
}

func NewGroupRepository(db *DB) group.Repository {
	return &groupRepository{db: db}
}

func (repo *groupRepository) QueryAllGroups() ([]string, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	names := make([]string, len(repo.db.groups))
	copy(names, repo.db.groups)
	return names, nil
}

func (repo *groupRepository) QueryReferencedGroups() ([]string, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	seen := make(map[string]bool)
	var names []string
	for _, t := range repo.db.teams {
		if name := group.Normalize(t.Group); !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, a := range repo.db.assessments {
		if name := group.Normalize(a.Group); !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names, nil
}

func (repo *groupRepository) GroupExists(name string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.existsLocked(name), nil
}

func (repo *groupRepository) existsLocked(name string) bool {
	name = group.Normalize(name)
	for _, g := range repo.db.groups {
		if group.Normalize(g) == name {
			return true
		}
	}
	return false
}

func (repo *groupRepository) CreateGroup(name string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.existsLocked(name) {
		return group.ErrExists
	}
	repo.db.groups = append(repo.db.groups, name)
	repo.db.saveLocked(groupsFile, repo.db.groups)
	return nil
}

func (repo *groupRepository) DeleteGroup(name string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	norm := group.Normalize(name)
	for i, g := range repo.db.groups {
		if group.Normalize(g) == norm {
			repo.db.groups = append(repo.db.groups[:i], repo.db.groups[i+1:]...)
			delete(repo.db.groupEmails, norm)
			repo.db.saveLocked(groupsFile, repo.db.groups)
			repo.db.saveLocked(groupEmailsFile, repo.db.groupEmails)
			return nil
		}
	}
	return group.ErrNotFound
}

func (repo *groupRepository) GroupHasTeams(name string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	norm := group.Normalize(name)
	for _, t := range repo.db.teams {
		if group.Normalize(t.Group) == norm {
			return true, nil
		}
	}
	return false, nil
}

func (repo *groupRepository) GroupHasAssessments(name string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	norm := group.Normalize(name)
	for _, a := range repo.db.assessments {
		if group.Normalize(a.Group) == norm {
			return true, nil
		}
	}
	return false, nil
}

func (repo *groupRepository) GetGroupEmail(name string) (string, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.db.groupEmails[group.Normalize(name)], nil
}

func (repo *groupRepository) SetGroupEmail(name, email string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.groupEmails[group.Normalize(name)] = email
	repo.db.saveLocked(groupEmailsFile, repo.db.groupEmails)
	return nil
}

func (repo *groupRepository) DeleteGroupEmail(name string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.groupEmails, group.Normalize(name))
	repo.db.saveLocked(groupEmailsFile, repo.db.groupEmails)
	return nil
}
