package team

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/hukumu/core"
	"github.com/trezcool/hukumu/core/group"
)

var (
	// errors
	ErrNotFound = errors.New("team not found")
	ErrEmptyCSV = errors.New("CSV file is empty or invalid")
)

type (
	Repository interface {
		CreateTeam(t Team) (Team, error)
		CreateTeams(ts []Team) ([]Team, error)
		QueryAllTeams() ([]Team, error)
		QueryTeamsByGroup(grp string) ([]Team, error)
		// QueryTeamsByName matches the trimmed name exactly, across all groups.
		QueryTeamsByName(name string) ([]Team, error)
		GetTeamByPIN(grp, pin string) (Team, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		logger  core.Logger
	}

	// ImportResult summarizes a CSV import: accepted teams, and duplicates
	// that were skipped (never merged).
	ImportResult struct {
		Imported          int
		DuplicatesSkipped int
		TotalProcessed    int
		NewTeams          []Team
		Duplicates        []string
	}

	// PINIssuedData feeds the team-pin notification template.
	PINIssuedData struct {
		Team  Team
		Group string
	}
)

func NewService(repo Repository, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, logger: logger}
}

// Create registers a single team in its (normalized) group with a fresh
// group-unique PIN.
func (svc *Service) Create(nt NewTeam) (Team, error) {
	if err := nt.Validate(); err != nil {
		return Team{}, err
	}
	grp := group.Normalize(nt.Group)

	existing, err := svc.repo.QueryTeamsByGroup(grp)
	if err != nil {
		return Team{}, err
	}

	t := Team{
		ID:        uuid.New().String(),
		Name:      nt.Name,
		Group:     grp,
		PIN:       GenerateUniquePIN(takenPINs(existing)),
		Members:   []Member{},
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateTeam(t)
}

func (svc *Service) QueryAll() ([]Team, error) {
	return svc.repo.QueryAllTeams()
}

func (svc *Service) QueryByGroup(grp string) ([]Team, error) {
	return svc.repo.QueryTeamsByGroup(group.Normalize(grp))
}

// ImportCSV parses and validates an uploaded CSV batch, then registers every
// accepted row not already present in the target group (case-insensitive name
// match). Validation failures reject the whole batch; cross-batch duplicates
// are skipped, not merged. A PIN notification goes out to each imported
// team's members.
func (svc *Service) ImportCSV(data []byte, grp string) (ImportResult, error) {
	grp = group.Normalize(grp)

	rows, err := parseCSVRows(data)
	if err != nil {
		return ImportResult{}, err
	}
	if len(rows) == 0 {
		return ImportResult{}, ErrEmptyCSV
	}

	errs, drafts := validateRows(rows)
	if len(errs) > 0 {
		return ImportResult{}, &CSVValidationError{
			Details:    errs,
			ValidTeams: len(drafts),
			TotalRows:  len(rows),
		}
	}

	existing, err := svc.repo.QueryTeamsByGroup(grp)
	if err != nil {
		return ImportResult{}, err
	}
	existingNames := make(map[string]bool, len(existing))
	for _, t := range existing {
		existingNames[strings.ToLower(t.Name)] = true
	}
	taken := takenPINs(existing)

	var (
		newTeams   []Team
		duplicates []string
	)
	now := time.Now().UTC()
	for _, draft := range drafts {
		if existingNames[strings.ToLower(draft.Name)] {
			duplicates = append(duplicates, draft.Name)
			continue
		}
		existingNames[strings.ToLower(draft.Name)] = true

		pin := GenerateUniquePIN(taken)
		taken[pin] = true
		newTeams = append(newTeams, Team{
			ID:        uuid.New().String(),
			Name:      draft.Name,
			Group:     grp,
			PIN:       pin,
			Members:   draft.Members,
			CreatedAt: now,
			Source:    SourceCSVUpload,
		})
	}

	created, err := svc.repo.CreateTeams(newTeams)
	if err != nil {
		return ImportResult{}, err
	}

	for _, t := range created {
		svc.notifyPINIssued(t, grp)
	}

	return ImportResult{
		Imported:          len(created),
		DuplicatesSkipped: len(duplicates),
		TotalProcessed:    len(drafts),
		NewTeams:          created,
		Duplicates:        duplicates,
	}, nil
}

// GetByPIN resolves the unique team holding a PIN within a group. PINs in
// other groups never match.
func (svc *Service) GetByPIN(grp, pin string) (Team, error) {
	return svc.repo.GetTeamByPIN(group.Normalize(grp), core.CleanString(pin))
}

// notifyPINIssued emails the team's PIN to its members. Teams without member
// emails are skipped; failures are the mail service's to log, never ours to
// surface.
func (svc *Service) notifyPINIssued(t Team, grp string) {
	var to []mail.Address
	for _, m := range t.Members {
		if email := core.CleanString(m.Email); email != "" {
			to = append(to, mail.Address{Name: m.Name, Address: email})
		}
	}
	if len(to) == 0 {
		svc.logger.Info(fmt.Sprintf("no member email addresses for team %q, skipping PIN notification", t.Name))
		return
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           to,
		Subject:      fmt.Sprintf("Your Team Assessment PIN - %s", t.Name),
		TemplateName: "team-pin",
		TemplateData: PINIssuedData{Team: t, Group: grp},
	})
}
