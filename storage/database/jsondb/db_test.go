package jsondb_test

import (
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/trezcool/hukumu/core"
	"github.com/trezcool/hukumu/core/assessment"
	"github.com/trezcool/hukumu/core/group"
	"github.com/trezcool/hukumu/core/team"
	logsvc "github.com/trezcool/hukumu/services/logger"
	"github.com/trezcool/hukumu/storage/database/jsondb"
)

func testLogger() core.Logger {
	return logsvc.NewStdLogger(log.New(ioutil.Discard, "", 0))
}

func TestOpenFreshStore(t *testing.T) {
	dir := t.TempDir()
	db, err := jsondb.Open(dir, testLogger())
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}

	groups, err := jsondb.NewGroupRepository(db).QueryAllGroups()
	if err != nil {
		t.Fatalf("QueryAllGroups(): %v", err)
	}
	if len(groups) != 1 || groups[0] != group.Default {
		t.Errorf("groups = %v; want [%s]", groups, group.Default)
	}

	teams, err := jsondb.NewTeamRepository(db).QueryAllTeams()
	if err != nil {
		t.Fatalf("QueryAllTeams(): %v", err)
	}
	if len(teams) != 0 {
		t.Errorf("teams = %v; want none", teams)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	logger := testLogger()

	db, err := jsondb.Open(dir, logger)
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	groupRepo := jsondb.NewGroupRepository(db)
	teamRepo := jsondb.NewTeamRepository(db)
	assessmentRepo := jsondb.NewAssessmentRepository(db)

	created := time.Date(2026, 2, 3, 10, 30, 0, 0, time.UTC)
	if _, err := teamRepo.CreateTeam(team.Team{
		ID: "t1", Name: "Alpha", Group: "cs-101", PIN: "123456",
		Members:   []team.Member{{Name: "John", Email: "john@test.cd"}},
		CreatedAt: created,
	}); err != nil {
		t.Fatalf("CreateTeam(): %v", err)
	}
	if _, err := assessmentRepo.CreateAssessment(assessment.Assessment{
		ID: "a1", JudgeName: "Dr. Jane", TeamName: "Alpha", Group: "cs-101",
		Ratings:     assessment.Ratings{Complexity: 4, Storytelling: 3, ActionPlan: 5, Overall: 4},
		SubmittedAt: created,
	}); err != nil {
		t.Fatalf("CreateAssessment(): %v", err)
	}
	if err := groupRepo.CreateGroup("cs-101"); err != nil {
		t.Fatalf("CreateGroup(): %v", err)
	}
	if err := groupRepo.SetGroupEmail("cs-101", "admin@test.cd"); err != nil {
		t.Fatalf("SetGroupEmail(): %v", err)
	}

	// a second Open on the same dir sees everything
	db2, err := jsondb.Open(dir, logger)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}

	teams, err := jsondb.NewTeamRepository(db2).QueryAllTeams()
	if err != nil {
		t.Fatalf("QueryAllTeams(): %v", err)
	}
	if len(teams) != 1 {
		t.Fatalf("teams = %d; want 1", len(teams))
	}
	got := teams[0]
	if got.ID != "t1" || got.Name != "Alpha" || got.PIN != "123456" {
		t.Errorf("team = %+v", got)
	}
	if len(got.Members) != 1 || got.Members[0].Email != "john@test.cd" {
		t.Errorf("members = %v", got.Members)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v; want %v", got.CreatedAt, created)
	}

	as, err := jsondb.NewAssessmentRepository(db2).QueryAllAssessments()
	if err != nil {
		t.Fatalf("QueryAllAssessments(): %v", err)
	}
	if len(as) != 1 || as[0].Ratings.ActionPlan != 5 {
		t.Errorf("assessments = %+v", as)
	}

	groups2 := jsondb.NewGroupRepository(db2)
	names, err := groups2.QueryAllGroups()
	if err != nil {
		t.Fatalf("QueryAllGroups(): %v", err)
	}
	if len(names) != 2 {
		t.Errorf("groups = %v; want 2", names)
	}
	email, err := groups2.GetGroupEmail("cs-101")
	if err != nil {
		t.Fatalf("GetGroupEmail(): %v", err)
	}
	if email != "admin@test.cd" {
		t.Errorf("email = %q; want %q", email, "admin@test.cd")
	}
}

func TestOpenToleratesMissingFiles(t *testing.T) {
	dir := t.TempDir()
	// only one of the four files on disk
	if err := ioutil.WriteFile(filepath.Join(dir, "teams.json"), []byte(`[{"id":"t1","name":"Alpha","group":"cs-101","pin":"123456"}]`), 0644); err != nil {
		t.Fatalf("WriteFile(): %v", err)
	}

	db, err := jsondb.Open(dir, testLogger())
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	teams, err := jsondb.NewTeamRepository(db).QueryAllTeams()
	if err != nil {
		t.Fatalf("QueryAllTeams(): %v", err)
	}
	if len(teams) != 1 || teams[0].Name != "Alpha" {
		t.Errorf("teams = %+v", teams)
	}
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := ioutil.WriteFile(filepath.Join(dir, "teams.json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile(): %v", err)
	}
	if _, err := jsondb.Open(dir, testLogger()); err == nil {
		t.Error("Open() expected an error on corrupt data")
	}
}

func TestMemoryOnlyStore(t *testing.T) {
	db, err := jsondb.Open("", testLogger())
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	if _, err := jsondb.NewTeamRepository(db).CreateTeam(team.Team{ID: "t1", Name: "Alpha"}); err != nil {
		t.Fatalf("CreateTeam(): %v", err)
	}

	// nothing lands on disk
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd(): %v", err)
	}
	if _, err := os.Stat(filepath.Join(cwd, "teams.json")); !os.IsNotExist(err) {
		t.Errorf("unexpected teams.json in %s", cwd)
	}
}

func TestGetTeamByPINScopedToGroup(t *testing.T) {
	db, err := jsondb.Open("", testLogger())
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	repo := jsondb.NewTeamRepository(db)
	if _, err := repo.CreateTeams([]team.Team{
		{ID: "t1", Name: "Alpha", Group: "cs-101", PIN: "123456"},
		{ID: "t2", Name: "Beta", Group: "", PIN: "654321"},
	}); err != nil {
		t.Fatalf("CreateTeams(): %v", err)
	}

	got, err := repo.GetTeamByPIN("cs-101", "123456")
	if err != nil {
		t.Fatalf("GetTeamByPIN(): %v", err)
	}
	if got.ID != "t1" {
		t.Errorf("team = %+v", got)
	}

	t.Run("wrong group", func(t *testing.T) {
		if _, err := repo.GetTeamByPIN("other", "123456"); err != team.ErrNotFound {
			t.Errorf("err = %v; want %v", err, team.ErrNotFound)
		}
	})

	t.Run("blank group normalizes to default", func(t *testing.T) {
		got, err := repo.GetTeamByPIN("default", "654321")
		if err != nil {
			t.Fatalf("GetTeamByPIN(): %v", err)
		}
		if got.ID != "t2" {
			t.Errorf("team = %+v", got)
		}
	})
}
