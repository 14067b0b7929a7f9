package group

import (
	"errors"
	"sort"

	"github.com/trezcool/hukumu/core"
)

var (
	// errors
	ErrNotFound       = errors.New("group not found")
	ErrExists         = errors.New("group already exists")
	ErrHasTeams       = errors.New("cannot delete group with existing teams; remove teams first")
	ErrHasAssessments = errors.New("cannot delete group with existing assessments; remove assessments first")
)

type (
	Repository interface {
		QueryAllGroups() ([]string, error)
		// QueryReferencedGroups returns the distinct normalized groups carried
		// by existing Team and Assessment records, registered or not.
		QueryReferencedGroups() ([]string, error)
		GroupExists(name string) (bool, error)
		CreateGroup(name string) error
		DeleteGroup(name string) error
		GroupHasTeams(name string) (bool, error)
		GroupHasAssessments(name string) (bool, error)
		GetGroupEmail(name string) (string, error)
		SetGroupEmail(name, email string) error
		DeleteGroupEmail(name string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// QueryAll returns the registered groups unioned with every group implicitly
// referenced by existing records, sorted lexicographically. The view is
// derived on demand and never persisted, so the explicit registry and the
// implicit references cannot drift apart.
func (svc *Service) QueryAll() ([]string, error) {
	registered, err := svc.repo.QueryAllGroups()
	if err != nil {
		return nil, err
	}
	referenced, err := svc.repo.QueryReferencedGroups()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(registered)+len(referenced))
	all := make([]string, 0, len(registered)+len(referenced))
	for _, name := range registered {
		if !seen[name] {
			seen[name] = true
			all = append(all, name)
		}
	}
	for _, name := range referenced {
		if !seen[name] {
			seen[name] = true
			all = append(all, name)
		}
	}
	sort.Strings(all)
	return all, nil
}

func (svc *Service) Create(ng NewGroup) (string, error) {
	if err := ng.Validate(); err != nil {
		return "", err
	}
	exists, err := svc.repo.GroupExists(ng.Name)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrExists
	}
	if err := svc.repo.CreateGroup(ng.Name); err != nil {
		return "", err
	}
	return ng.Name, nil
}

func (svc *Service) Delete(name string) error {
	exists, err := svc.repo.GroupExists(name)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	if hasTeams, err := svc.repo.GroupHasTeams(name); err != nil {
		return err
	} else if hasTeams {
		return ErrHasTeams
	}
	if hasAssessments, err := svc.repo.GroupHasAssessments(name); err != nil {
		return err
	} else if hasAssessments {
		return ErrHasAssessments
	}

	return svc.repo.DeleteGroup(name)
}

// GetEmail returns the notification recipient for a group. An empty result
// means no email is configured, which is a normal condition: notification
// callers skip sending rather than fail.
func (svc *Service) GetEmail(name string) (string, error) {
	exists, err := svc.repo.GroupExists(name)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrNotFound
	}
	return svc.repo.GetGroupEmail(name)
}

// SetEmail stores the notification recipient for a group; an empty email
// clears the mapping.
func (svc *Service) SetEmail(ge Email) error {
	exists, err := svc.repo.GroupExists(ge.GroupName)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	ge.Email = core.CleanString(ge.Email)
	if ge.Email == "" {
		return svc.repo.DeleteGroupEmail(ge.GroupName)
	}
	if err := ge.Validate(); err != nil {
		return err
	}
	return svc.repo.SetGroupEmail(ge.GroupName, ge.Email)
}
