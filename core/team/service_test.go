package team_test

import (
	"io/ioutil"
	"log"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/hukumu/core"
	"github.com/trezcool/hukumu/core/team"
	emailsvc "github.com/trezcool/hukumu/services/email"
	logsvc "github.com/trezcool/hukumu/services/logger"
	"github.com/trezcool/hukumu/storage/database/jsondb"
)

// mailRecorder captures outgoing messages without rendering or sending them.
type mailRecorder struct {
	messages []*core.EmailMessage
}

var _ core.EmailService = (*mailRecorder)(nil)

func (m *mailRecorder) SendMessages(messages ...*core.EmailMessage) {
	m.messages = append(m.messages, messages...)
}

func newTestService(t *testing.T) (*team.Service, *mailRecorder) {
	t.Helper()
	logger := logsvc.NewStdLogger(log.New(ioutil.Discard, "", 0))
	db, err := jsondb.Open("", logger)
	if err != nil {
		t.Fatalf("jsondb.Open(): %v", err)
	}
	mail := &mailRecorder{}
	return team.NewService(jsondb.NewTeamRepository(db), mail, logger), mail
}

func TestServiceCreate(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.Create(team.NewTeam{Name: "  Rocket Squad  ", Group: "  cs-101 "})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if got.ID == "" {
		t.Error("Create() did not assign an ID")
	}
	if got.Name != "Rocket Squad" {
		t.Errorf("Name = %q; want %q", got.Name, "Rocket Squad")
	}
	if got.Group != "cs-101" {
		t.Errorf("Group = %q; want %q", got.Group, "cs-101")
	}
	if len(got.PIN) != 6 {
		t.Errorf("PIN = %q; want 6 digits", got.PIN)
	}
	if got.Members == nil || len(got.Members) != 0 {
		t.Errorf("Members = %v; want empty slice", got.Members)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	t.Run("blank group defaults", func(t *testing.T) {
		got, err := svc.Create(team.NewTeam{Name: "Solo"})
		if err != nil {
			t.Fatalf("Create(): %v", err)
		}
		if got.Group != "default" {
			t.Errorf("Group = %q; want %q", got.Group, "default")
		}
	})

	t.Run("missing name rejected", func(t *testing.T) {
		if _, err := svc.Create(team.NewTeam{Name: "   "}); err == nil {
			t.Error("Create() expected a validation error")
		}
	})
}

func TestServiceImportCSV(t *testing.T) {
	data := []byte("team_name,member1_name,member1_email\n" +
		"Alpha,John,john@test.cd\n" +
		"Beta,,\n")

	t.Run("imports new teams and notifies members", func(t *testing.T) {
		svc, mail := newTestService(t)

		res, err := svc.ImportCSV(data, " cs-101 ")
		if err != nil {
			t.Fatalf("ImportCSV(): %v", err)
		}
		if res.Imported != 2 || res.DuplicatesSkipped != 0 || res.TotalProcessed != 2 {
			t.Errorf("result = %+v", res)
		}
		for _, nt := range res.NewTeams {
			if nt.Group != "cs-101" {
				t.Errorf("Group = %q; want %q", nt.Group, "cs-101")
			}
			if nt.Source != team.SourceCSVUpload {
				t.Errorf("Source = %q; want %q", nt.Source, team.SourceCSVUpload)
			}
			if len(nt.PIN) != 6 {
				t.Errorf("PIN = %q; want 6 digits", nt.PIN)
			}
		}
		if res.NewTeams[0].PIN == res.NewTeams[1].PIN {
			t.Error("both teams got the same PIN")
		}

		// only Alpha has a member email; Beta's notification is skipped
		if len(mail.messages) != 1 {
			t.Fatalf("sent %d messages; want 1", len(mail.messages))
		}
		msg := mail.messages[0]
		if msg.TemplateName != "team-pin" {
			t.Errorf("TemplateName = %q; want %q", msg.TemplateName, "team-pin")
		}
		if !strings.Contains(msg.Subject, "Alpha") {
			t.Errorf("Subject = %q", msg.Subject)
		}
		if len(msg.To) != 1 || msg.To[0].Address != "john@test.cd" {
			t.Errorf("To = %v", msg.To)
		}
	})

	t.Run("skips duplicates of existing teams", func(t *testing.T) {
		svc, _ := newTestService(t)
		if _, err := svc.Create(team.NewTeam{Name: "alpha", Group: "cs-101"}); err != nil {
			t.Fatalf("Create(): %v", err)
		}

		res, err := svc.ImportCSV(data, "cs-101")
		if err != nil {
			t.Fatalf("ImportCSV(): %v", err)
		}
		if res.Imported != 1 || res.DuplicatesSkipped != 1 || res.TotalProcessed != 2 {
			t.Errorf("result = %+v", res)
		}
		if len(res.Duplicates) != 1 || res.Duplicates[0] != "Alpha" {
			t.Errorf("Duplicates = %v", res.Duplicates)
		}
		if res.NewTeams[0].Name != "Beta" {
			t.Errorf("NewTeams = %v", res.NewTeams)
		}
	})

	t.Run("existing teams in other groups do not collide", func(t *testing.T) {
		svc, _ := newTestService(t)
		if _, err := svc.Create(team.NewTeam{Name: "Alpha", Group: "other"}); err != nil {
			t.Fatalf("Create(): %v", err)
		}

		res, err := svc.ImportCSV(data, "cs-101")
		if err != nil {
			t.Fatalf("ImportCSV(): %v", err)
		}
		if res.Imported != 2 || res.DuplicatesSkipped != 0 {
			t.Errorf("result = %+v", res)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.ImportCSV([]byte("team_name\n"), "cs-101")
		if errors.Cause(err) != team.ErrEmptyCSV {
			t.Errorf("err = %v; want %v", err, team.ErrEmptyCSV)
		}
	})

	t.Run("validation errors reject the batch", func(t *testing.T) {
		svc, _ := newTestService(t)
		bad := []byte("team_name\nAlpha\n\"\"\nAlpha\n")

		_, err := svc.ImportCSV(bad, "cs-101")
		var vErr *team.CSVValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("err = %v; want *CSVValidationError", err)
		}
		if len(vErr.Details) != 2 || vErr.ValidTeams != 1 || vErr.TotalRows != 3 {
			t.Errorf("err = %+v", vErr)
		}

		// nothing applied
		teams, err := svc.QueryAll()
		if err != nil {
			t.Fatalf("QueryAll(): %v", err)
		}
		if len(teams) != 0 {
			t.Errorf("teams = %v; want none", teams)
		}
	})
}

func TestServiceGetByPIN(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(team.NewTeam{Name: "Alpha", Group: "cs-101"})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}

	got, err := svc.GetByPIN(" cs-101 ", " "+created.PIN+" ")
	if err != nil {
		t.Fatalf("GetByPIN(): %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got team %q; want %q", got.ID, created.ID)
	}

	t.Run("scoped to the group", func(t *testing.T) {
		if _, err := svc.GetByPIN("other", created.PIN); errors.Cause(err) != team.ErrNotFound {
			t.Errorf("err = %v; want %v", err, team.ErrNotFound)
		}
	})

	t.Run("unknown PIN", func(t *testing.T) {
		if _, err := svc.GetByPIN("cs-101", "000000"); errors.Cause(err) != team.ErrNotFound {
			t.Errorf("err = %v; want %v", err, team.ErrNotFound)
		}
	})
}

// Sends the PIN notification through a rendering backend to make sure the
// embedded templates actually produce content.
func TestServicePINEmailContent(t *testing.T) {
	logger := logsvc.NewStdLogger(log.New(ioutil.Discard, "", 0))
	db, err := jsondb.Open("", logger)
	if err != nil {
		t.Fatalf("jsondb.Open(): %v", err)
	}
	emailsvc.ClearSentMessages()
	defer emailsvc.ClearSentMessages()
	svc := team.NewService(jsondb.NewTeamRepository(db), emailsvc.NewConsoleServiceMock(), logger)

	data := []byte("team_name,member1_name,member1_email\nAlpha,John,john@test.cd\n")
	if _, err := svc.ImportCSV(data, "cs-101"); err != nil {
		t.Fatalf("ImportCSV(): %v", err)
	}

	msgs := emailsvc.GetSentMessages()
	if len(msgs) != 1 {
		t.Fatalf("sent %d messages; want 1", len(msgs))
	}
	msg := msgs[0]
	if !strings.Contains(msg.TextContent, "Your Team PIN:") {
		t.Errorf("TextContent = %q; want the PIN body", msg.TextContent)
	}
	if !strings.Contains(msg.HTMLContent, "Hello Alpha Members!") {
		t.Error("HTMLContent missing the team greeting")
	}
}
