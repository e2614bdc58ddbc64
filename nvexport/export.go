// Package nvexport writes a JSON snapshot of a diagram: its DSL plus the
// model with positions and styling.
package nvexport

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"cdr.dev/slog"
	"github.com/spf13/afero"
	"oss.terrastruct.com/xdefer"
	"oss.terrastruct.com/xjson"

	"oss.terrastruct.com/navani/lib/log"
	"oss.terrastruct.com/navani/nvformat"
	"oss.terrastruct.com/navani/nvschema"
	"oss.terrastruct.com/navani/nvstate"
)

// TimeFormat is ISO 8601 in UTC with milliseconds.
const TimeFormat = "2006-01-02T15:04:05.000Z"

var ErrNoTables = errors.New("no tables to export")

var unsafeNameRegex = regexp.MustCompile(`[^a-zA-Z0-9_\- ]`)

type Snapshot struct {
	Name          string                   `json:"name"`
	DSL           string                   `json:"dsl"`
	Tables        []*nvschema.Table        `json:"tables"`
	Relationships []*nvschema.Relationship `json:"relationships"`
	Icons         map[string]string        `json:"icons"`
	Colors        map[string]string        `json:"colors"`
	ExportedAt    string                   `json:"exportedAt"`
}

// New snapshots st at now. The DSL is regenerated from the model.
func New(st *nvstate.State, now time.Time, opts *nvformat.Options) (*Snapshot, error) {
	if len(st.Schema.Tables) == 0 {
		return nil, ErrNoTables
	}
	name := strings.TrimSpace(st.Name)
	if name == "" {
		name = nvstate.DefaultName
	}
	rels := st.Schema.Relationships
	if rels == nil {
		rels = []*nvschema.Relationship{}
	}
	return &Snapshot{
		Name:          name,
		DSL:           nvformat.Format(st.Schema, opts),
		Tables:        st.Schema.Tables,
		Relationships: rels,
		Icons:         st.Schema.Icons(),
		Colors:        st.Schema.Colors(),
		ExportedAt:    now.UTC().Format(TimeFormat),
	}, nil
}

func (s *Snapshot) Marshal() []byte {
	return []byte(xjson.MarshalIndent(s))
}

// SafeName keeps letters, digits, underscores, dashes and spaces of name.
func SafeName(name string) string {
	s := strings.TrimSpace(unsafeNameRegex.ReplaceAllString(name, ""))
	if s == "" {
		return "schema"
	}
	return s
}

func FileName(name string) string {
	return SafeName(name) + ".json"
}

// Write stores s as <dir>/<FileName(s.Name)> and returns the path.
func Write(ctx context.Context, fs afero.Fs, dir string, s *Snapshot) (_ string, err error) {
	defer xdefer.Errorf(&err, "failed to export %q", s.Name)

	if err := fs.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(s.Name))
	if err := afero.WriteFile(fs, path, s.Marshal(), 0644); err != nil {
		return "", err
	}
	log.Debug(ctx, "exported", slog.F("path", path), slog.F("tables", len(s.Tables)))
	return path, nil
}
