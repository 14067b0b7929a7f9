// Package jsondb is a JSON-file snapshot store. Every record set lives in
// memory under a single lock; each mutation rewrites its whole file, so a
// crash between mutations loses at most the last write, never corrupts.
package jsondb

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/hukumu/core"
	"github.com/trezcool/hukumu/core/assessment"
	"github.com/trezcool/hukumu/core/group"
	"github.com/trezcool/hukumu/core/team"
)

const (
	teamsFile       = "teams.json"
	assessmentsFile = "assessments.json"
	groupsFile      = "groups.json"
	groupEmailsFile = "group-emails.json"
)

type DB struct {
	mutex  sync.RWMutex
	dir    string
	logger core.Logger

	teams       []team.Team
	assessments []assessment.Assessment
	groups      []string
	groupEmails map[string]string
}

// Open loads the store from dir, creating it with defaults when files are
// missing. An empty dir yields a memory-only store (used in tests).
func Open(dir string, logger core.Logger) (*DB, error) {
	db := &DB{
		dir:         dir,
		logger:      logger,
		teams:       []team.Team{},
		assessments: []assessment.Assessment{},
		groups:      []string{group.Default},
		groupEmails: make(map[string]string),
	}
	if dir == "" {
		return db, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "creating data dir")
	}
	if err := db.loadFile(teamsFile, &db.teams); err != nil {
		return nil, err
	}
	if err := db.loadFile(assessmentsFile, &db.assessments); err != nil {
		return nil, err
	}
	if err := db.loadFile(groupsFile, &db.groups); err != nil {
		return nil, err
	}
	if err := db.loadFile(groupEmailsFile, &db.groupEmails); err != nil {
		return nil, err
	}
	if len(db.groups) == 0 {
		db.groups = []string{group.Default}
	}
	if db.groupEmails == nil {
		db.groupEmails = make(map[string]string)
	}
	return db, nil
}

func (db *DB) loadFile(name string, v interface{}) error {
	data, err := ioutil.ReadFile(filepath.Join(db.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil // fresh store, keep defaults
		}
		return errors.Wrapf(err, "reading %s", name)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "parsing %s", name)
	}
	return nil
}

// saveLocked persists a record set; callers hold the write lock. A failed
// write is logged, not surfaced: the in-memory state stays authoritative and
// the next successful save catches up.
func (db *DB) saveLocked(name string, v interface{}) {
	if db.dir == "" {
		return
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		db.logger.Error("marshaling "+name, "error", err)
		return
	}
	if err := ioutil.WriteFile(filepath.Join(db.dir, name), data, 0644); err != nil {
		db.logger.Error("writing "+name, "error", err)
	}
}
