// Package nvlibrary persists named schemas in a single JSON file.
//
// The newest record comes first. Saving under an existing name overwrites
// that record in place and keeps its id.
package nvlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"cdr.dev/slog"
	"github.com/spf13/afero"
	"oss.terrastruct.com/xdefer"
	"oss.terrastruct.com/xjson"
	"oss.terrastruct.com/xrand"

	"oss.terrastruct.com/navani/lib/log"
	"oss.terrastruct.com/navani/nvoracle"
	"oss.terrastruct.com/navani/nvstate"
)

var (
	ErrNothingToSave = errors.New("nothing to save")
	ErrNotFound      = errors.New("schema not found")
)

type Record struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	DSL        string            `json:"dsl"`
	Icons      map[string]string `json:"icons"`
	Colors     map[string]string `json:"colors"`
	TableCount int               `json:"tableCount"`
	// SavedAt is in milliseconds since the Unix epoch.
	SavedAt int64 `json:"savedAt"`
}

func (r *Record) SavedTime() time.Time {
	return time.UnixMilli(r.SavedAt)
}

type Library struct {
	fs   afero.Fs
	path string
	// Now is the clock used for ids and timestamps.
	Now func() time.Time

	mu sync.Mutex
}

func Open(fs afero.Fs, path string) *Library {
	return &Library{
		fs:   fs,
		path: path,
		Now:  time.Now,
	}
}

func (l *Library) Path() string {
	return l.path
}

// NewID is the base36 millisecond timestamp followed by a random suffix.
func NewID(t time.Time) string {
	suffix := strings.NewReplacer("+", "", "/", "", "=", "", "-", "", "_", "").Replace(xrand.Base64(8))
	if len(suffix) > 4 {
		suffix = suffix[:4]
	}
	return strconv.FormatInt(t.UnixMilli(), 36) + strings.ToLower(suffix)
}

// List returns every record, newest first. A missing file is an empty
// library. So is an unreadable one, which is logged and left untouched.
func (l *Library) List(ctx context.Context) ([]*Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read(ctx)
}

func (l *Library) read(ctx context.Context) (_ []*Record, err error) {
	defer xdefer.Errorf(&err, "failed to read library %s", l.path)

	b, err := afero.ReadFile(l.fs, l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var records []*Record
	if err := json.Unmarshal(b, &records); err != nil {
		log.Warn(ctx, "ignoring corrupt library", slog.F("path", l.path), slog.Error(err))
		return nil, nil
	}
	return records, nil
}

func (l *Library) write(records []*Record) (err error) {
	defer xdefer.Errorf(&err, "failed to write library %s", l.path)

	if records == nil {
		records = []*Record{}
	}
	if dir := filepath.Dir(l.path); dir != "." {
		if err := l.fs.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return afero.WriteFile(l.fs, l.path, []byte(xjson.MarshalIndent(records)), 0644)
}

// Save stores the schema of st under its name. dsl must be non-empty and
// st must have at least one table.
func (l *Library) Save(ctx context.Context, st *nvstate.State, dsl string) (_ *Record, err error) {
	defer xdefer.Errorf(&err, "failed to save schema")

	dsl = strings.TrimSpace(dsl)
	if dsl == "" || len(st.Schema.Tables) == 0 {
		return nil, ErrNothingToSave
	}
	name := strings.TrimSpace(st.Name)
	if name == "" {
		name = nvstate.DefaultName
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.read(ctx)
	if err != nil {
		return nil, err
	}

	now := l.Now()
	r := &Record{
		ID:         NewID(now),
		Name:       name,
		DSL:        dsl,
		Icons:      st.Schema.Icons(),
		Colors:     st.Schema.Colors(),
		TableCount: len(st.Schema.Tables),
		SavedAt:    now.UnixMilli(),
	}

	replaced := false
	for i, existing := range records {
		if existing.Name == name {
			r.ID = existing.ID
			records[i] = r
			replaced = true
			break
		}
	}
	if !replaced {
		records = append([]*Record{r}, records...)
	}

	if err := l.write(records); err != nil {
		return nil, err
	}
	log.Debug(ctx, "saved schema", slog.F("id", r.ID), slog.F("name", r.Name), slog.F("replaced", replaced))
	return r, nil
}

// Get finds a record by id, falling back to an exact name match.
func (l *Library) Get(ctx context.Context, key string) (*Record, error) {
	records, err := l.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.ID == key {
			return r, nil
		}
	}
	for _, r := range records {
		if r.Name == key {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", key, ErrNotFound)
}

// Load reads the record key into st. Its icons and colors are merged into
// the parse by table name.
func (l *Library) Load(ctx context.Context, st *nvstate.State, key string) (_ *Record, err error) {
	defer xdefer.Errorf(&err, "failed to load schema")

	r, err := l.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	st.PendingIcons = r.Icons
	st.PendingColors = r.Colors
	if err := nvoracle.ApplyParse(st, r.DSL); err != nil {
		st.PendingIcons = nil
		st.PendingColors = nil
		return nil, err
	}
	st.Name = r.Name
	return r, nil
}

// Delete removes the record with id. Deleting a missing id is not an error.
func (l *Library) Delete(ctx context.Context, id string) (err error) {
	defer xdefer.Errorf(&err, "failed to delete schema %s", id)

	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.read(ctx)
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return nil
	}
	return l.write(kept)
}

// TimeAgo describes how long before now t was, e.g. "5m ago".
func TimeAgo(now, t time.Time) string {
	mins := int(now.Sub(t) / time.Minute)
	switch {
	case mins < 1:
		return "just now"
	case mins < 60:
		return fmt.Sprintf("%dm ago", mins)
	}
	hours := mins / 60
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}
	days := hours / 24
	if days < 30 {
		return fmt.Sprintf("%dd ago", days)
	}
	return t.Format("2006-01-02")
}
