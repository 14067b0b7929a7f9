package group_test

import (
	"io/ioutil"
	"log"
	"reflect"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/hukumu/core/assessment"
	"github.com/trezcool/hukumu/core/group"
	"github.com/trezcool/hukumu/core/team"
	logsvc "github.com/trezcool/hukumu/services/logger"
	"github.com/trezcool/hukumu/storage/database/jsondb"
)

type testEnv struct {
	svc         *group.Service
	teams       team.Repository
	assessments assessment.Repository
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	logger := logsvc.NewStdLogger(log.New(ioutil.Discard, "", 0))
	db, err := jsondb.Open("", logger)
	if err != nil {
		t.Fatalf("jsondb.Open(): %v", err)
	}
	return testEnv{
		svc:         group.NewService(jsondb.NewGroupRepository(db)),
		teams:       jsondb.NewTeamRepository(db),
		assessments: jsondb.NewAssessmentRepository(db),
	}
}

func TestServiceQueryAll(t *testing.T) {
	env := newTestEnv(t)

	got, err := env.svc.QueryAll()
	if err != nil {
		t.Fatalf("QueryAll(): %v", err)
	}
	if !reflect.DeepEqual(got, []string{"default"}) {
		t.Errorf("QueryAll() = %v; want [default]", got)
	}

	t.Run("includes implicitly referenced groups, sorted", func(t *testing.T) {
		if _, err := env.svc.Create(group.NewGroup{Name: "cs-101"}); err != nil {
			t.Fatalf("Create(): %v", err)
		}
		// a team whose group was never registered
		if _, err := env.teams.CreateTeam(team.Team{ID: "t1", Name: "Alpha", Group: "biz-202"}); err != nil {
			t.Fatalf("CreateTeam(): %v", err)
		}
		// an assessment carrying yet another group
		if _, err := env.assessments.CreateAssessment(assessment.Assessment{ID: "a1", JudgeName: "J", TeamName: "X", Group: "art-303"}); err != nil {
			t.Fatalf("CreateAssessment(): %v", err)
		}

		got, err := env.svc.QueryAll()
		if err != nil {
			t.Fatalf("QueryAll(): %v", err)
		}
		want := []string{"art-303", "biz-202", "cs-101", "default"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("QueryAll() = %v; want %v", got, want)
		}
	})
}

func TestServiceCreate(t *testing.T) {
	env := newTestEnv(t)

	name, err := env.svc.Create(group.NewGroup{Name: "  cs-101  "})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if name != "cs-101" {
		t.Errorf("Create() = %q; want %q", name, "cs-101")
	}

	t.Run("duplicate", func(t *testing.T) {
		if _, err := env.svc.Create(group.NewGroup{Name: "cs-101"}); errors.Cause(err) != group.ErrExists {
			t.Errorf("err = %v; want %v", err, group.ErrExists)
		}
	})

	t.Run("invalid slug", func(t *testing.T) {
		if _, err := env.svc.Create(group.NewGroup{Name: "cs 101!"}); err == nil {
			t.Error("Create() expected a validation error")
		}
	})

	t.Run("missing name", func(t *testing.T) {
		if _, err := env.svc.Create(group.NewGroup{Name: "   "}); err == nil {
			t.Error("Create() expected a validation error")
		}
	})
}

func TestServiceDelete(t *testing.T) {
	setup := func(t *testing.T) testEnv {
		env := newTestEnv(t)
		if _, err := env.svc.Create(group.NewGroup{Name: "cs-101"}); err != nil {
			t.Fatalf("Create(): %v", err)
		}
		return env
	}

	t.Run("deletes an empty group", func(t *testing.T) {
		env := setup(t)
		if err := env.svc.Delete("cs-101"); err != nil {
			t.Fatalf("Delete(): %v", err)
		}
		got, err := env.svc.QueryAll()
		if err != nil {
			t.Fatalf("QueryAll(): %v", err)
		}
		if !reflect.DeepEqual(got, []string{"default"}) {
			t.Errorf("QueryAll() = %v; want [default]", got)
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		env := setup(t)
		if err := env.svc.Delete("nope"); errors.Cause(err) != group.ErrNotFound {
			t.Errorf("err = %v; want %v", err, group.ErrNotFound)
		}
	})

	t.Run("group with teams", func(t *testing.T) {
		env := setup(t)
		if _, err := env.teams.CreateTeam(team.Team{ID: "t1", Name: "Alpha", Group: "cs-101"}); err != nil {
			t.Fatalf("CreateTeam(): %v", err)
		}
		if err := env.svc.Delete("cs-101"); errors.Cause(err) != group.ErrHasTeams {
			t.Errorf("err = %v; want %v", err, group.ErrHasTeams)
		}
	})

	t.Run("group with assessments", func(t *testing.T) {
		env := setup(t)
		if _, err := env.assessments.CreateAssessment(assessment.Assessment{ID: "a1", JudgeName: "J", TeamName: "X", Group: "cs-101"}); err != nil {
			t.Fatalf("CreateAssessment(): %v", err)
		}
		if err := env.svc.Delete("cs-101"); errors.Cause(err) != group.ErrHasAssessments {
			t.Errorf("err = %v; want %v", err, group.ErrHasAssessments)
		}
	})
}

func TestServiceEmail(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.svc.Create(group.NewGroup{Name: "cs-101"}); err != nil {
		t.Fatalf("Create(): %v", err)
	}

	t.Run("unset reads empty", func(t *testing.T) {
		email, err := env.svc.GetEmail("cs-101")
		if err != nil {
			t.Fatalf("GetEmail(): %v", err)
		}
		if email != "" {
			t.Errorf("GetEmail() = %q; want empty", email)
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		if _, err := env.svc.GetEmail("nope"); errors.Cause(err) != group.ErrNotFound {
			t.Errorf("err = %v; want %v", err, group.ErrNotFound)
		}
		if err := env.svc.SetEmail(group.Email{GroupName: "nope", Email: "x@test.cd"}); errors.Cause(err) != group.ErrNotFound {
			t.Errorf("err = %v; want %v", err, group.ErrNotFound)
		}
	})

	t.Run("set and read back", func(t *testing.T) {
		if err := env.svc.SetEmail(group.Email{GroupName: "cs-101", Email: " admin@test.cd "}); err != nil {
			t.Fatalf("SetEmail(): %v", err)
		}
		email, err := env.svc.GetEmail("cs-101")
		if err != nil {
			t.Fatalf("GetEmail(): %v", err)
		}
		if email != "admin@test.cd" {
			t.Errorf("GetEmail() = %q; want %q", email, "admin@test.cd")
		}
	})

	t.Run("invalid address rejected", func(t *testing.T) {
		if err := env.svc.SetEmail(group.Email{GroupName: "cs-101", Email: "not-an-email"}); err == nil {
			t.Error("SetEmail() expected a validation error")
		}
	})

	t.Run("blank email clears the mapping", func(t *testing.T) {
		if err := env.svc.SetEmail(group.Email{GroupName: "cs-101", Email: "   "}); err != nil {
			t.Fatalf("SetEmail(): %v", err)
		}
		email, err := env.svc.GetEmail("cs-101")
		if err != nil {
			t.Fatalf("GetEmail(): %v", err)
		}
		if email != "" {
			t.Errorf("GetEmail() = %q; want empty", email)
		}
	})
}
