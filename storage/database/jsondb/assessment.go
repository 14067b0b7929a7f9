package jsondb

import (
	"strings"

	"github.com/trezcool/hukumu/core/assessment"
	"github.com/trezcool/hukumu/core/group"
)

type assessmentRepository struct {
	db *DB
}

func NewAssessmentRepository(db *DB) assessment.Repository {
	return &assessmentRepository{db: db}
}

func (repo *assessmentRepository) CreateAssessment(a assessment.Assessment) (assessment.Assessment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.assessments = append(repo.db.assessments, a)
	repo.db.saveLocked(assessmentsFile, repo.db.assessments)
	return a, nil
}

func (repo *assessmentRepository) UpdateAssessment(a assessment.Assessment) (assessment.Assessment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i, existing := range repo.db.assessments {
		if existing.ID == a.ID {
			repo.db.assessments[i] = a
			repo.db.saveLocked(assessmentsFile, repo.db.assessments)
			return a, nil
		}
	}
	return assessment.Assessment{}, assessment.ErrNotFound
}

func (repo *assessmentRepository) QueryAllAssessments() ([]assessment.Assessment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	as := make([]assessment.Assessment, len(repo.db.assessments))
	copy(as, repo.db.assessments)
	return as, nil
}

func (repo *assessmentRepository) QueryAssessmentsByGroup(grp string) ([]assessment.Assessment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	norm := group.Normalize(grp)
	as := make([]assessment.Assessment, 0)
	for _, a := range repo.db.assessments {
		if group.Normalize(a.Group) == norm {
			as = append(as, a)
		}
	}
	return as, nil
}

func (repo *assessmentRepository) QueryAssessmentsByTeam(teamName, grp string) ([]assessment.Assessment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	norm := group.Normalize(grp)
	var as []assessment.Assessment
	for _, a := range repo.db.assessments {
		if !strings.EqualFold(a.TeamName, teamName) {
			continue
		}
		if grp != "" && group.Normalize(a.Group) != norm {
			continue
		}
		as = append(as, a)
	}
	return as, nil
}

func (repo *assessmentRepository) GetAssessmentByJudgeAndTeam(judgeName, teamName string) (assessment.Assessment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, a := range repo.db.assessments {
		if strings.EqualFold(a.JudgeName, judgeName) && a.TeamName == teamName {
			return a, nil
		}
	}
	return assessment.Assessment{}, assessment.ErrNotFound
}
