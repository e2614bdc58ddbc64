package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.terrastruct.com/navani/lib/log"
	"oss.terrastruct.com/navani/lib/textmeasure"
	"oss.terrastruct.com/navani/nvconfig"
	"oss.terrastruct.com/navani/nvoracle"
	"oss.terrastruct.com/navani/nvparser"
	"oss.terrastruct.com/navani/nvschema"
	"oss.terrastruct.com/navani/nvstate"
)

const libraryDSL = `Table authors {
  id int [pk]
  name varchar(100)
}

Table books {
  id int [pk]
  title text
}
`

func newTestSession(t *testing.T) (context.Context, *session) {
	t.Helper()
	ruler, err := textmeasure.NewRuler()
	require.NoError(t, err)
	ctx := log.WithTB(context.Background(), t, nil)
	return ctx, newSession(nvconfig.DefaultConfig(), ruler, "library")
}

func TestSessionLoad(t *testing.T) {
	t.Parallel()

	ctx, s := newTestSession(t)

	changed, err := s.load(ctx, libraryDSL)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, s.st.Schema.Tables, 2)

	changed, err = s.load(ctx, libraryDSL)
	require.NoError(t, err)
	assert.False(t, changed)

	// Positions survive a reload.
	require.NoError(t, nvoracle.MoveTable(s.st, "books", 900, 450))
	changed, err = s.load(ctx, libraryDSL+"\nTable reviews {\n  id int [pk]\n}\n")
	require.NoError(t, err)
	assert.True(t, changed)
	books := s.st.Schema.Table("books")
	assert.Equal(t, 900., books.X)
	assert.Equal(t, 450., books.Y)

	_, err = s.load(ctx, "// empty\n")
	assert.ErrorIs(t, err, nvparser.ErrNoTables)
	assert.Len(t, s.st.Schema.Tables, 3)
	res := s.render()
	assert.Equal(t, "No tables found; keeping the current diagram", res.Notice)
	assert.Contains(t, res.SVG, `data-table="reviews"`)
	assert.Equal(t, "library", res.Name)
	assert.Equal(t, "idle", res.Mode)
}

func TestSessionTemplate(t *testing.T) {
	t.Parallel()

	ctx, s := newTestSession(t)
	_, err := s.load(ctx, libraryDSL)
	require.NoError(t, err)

	dsl, err := s.handle(ctx, &message{Type: "template", Name: "users"})
	require.NoError(t, err)
	assert.Contains(t, dsl, "Table users {")
	assert.Equal(t, dsl, s.dsl)

	// The session's own write must not reload.
	changed, err := s.load(ctx, dsl)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = s.handle(ctx, &message{Type: "template", Name: "invoices"})
	assert.Error(t, err)
}

func TestSessionEditor(t *testing.T) {
	t.Parallel()

	ctx, s := newTestSession(t)
	_, err := s.load(ctx, libraryDSL)
	require.NoError(t, err)

	_, err = s.handle(ctx, &message{Type: "editor", Editor: &editorForm{}})
	assert.Error(t, err)

	s.mu.Lock()
	require.NoError(t, nvoracle.OpenCreateEditor(s.st, "books", "authors"))
	s.mu.Unlock()
	res := s.render()
	require.NotNil(t, res.Editor)
	assert.Equal(t, "create", res.Editor.Mode)
	assert.Equal(t, "authors", res.Editor.ToTable)

	dsl, err := s.handle(ctx, &message{Type: "editor", Editor: &editorForm{
		Name:     "author_id",
		ToColumn: "id",
		Kind:     nvstate.ManyToOne,
		Required: true,
	}})
	require.NoError(t, err)
	assert.Contains(t, dsl, "author_id int")
	assert.Contains(t, dsl, "ref: > authors.id")
	assert.Nil(t, s.st.Editor)

	s2, err := nvparser.Parse(dsl)
	require.NoError(t, err)
	require.Len(t, s2.Relationships, 1)
	assert.Equal(t, "books", s2.Relationships[0].FromTable)

	_, err = s.handle(ctx, &message{Type: "edit", Table: "books", Name: "author_id"})
	require.NoError(t, err)
	_, err = s.handle(ctx, &message{Type: "editorcancel"})
	require.NoError(t, err)
	assert.Nil(t, s.st.Editor)

	dsl, err = s.handle(ctx, &message{Type: "deleterelationship", Table: "books", Name: "author_id"})
	require.NoError(t, err)
	assert.NotContains(t, dsl, "ref:")
}

func TestSessionKeysAndStyle(t *testing.T) {
	t.Parallel()

	ctx, s := newTestSession(t)
	_, err := s.load(ctx, libraryDSL)
	require.NoError(t, err)

	dsl, err := s.handle(ctx, &message{Type: "style", Table: "authors", Icon: nvschema.Icons[0], Color: nvschema.Colors[1]})
	require.NoError(t, err)
	assert.Contains(t, dsl, nvschema.Icons[0])

	_, err = s.handle(ctx, &message{Type: "style", Table: "authors", Icon: "fa-nope"})
	assert.Error(t, err)

	dsl, err = s.handle(ctx, &message{Type: "resize", Width: 640, Height: 480})
	require.NoError(t, err)
	assert.Empty(t, dsl)
	assert.Equal(t, 640., s.st.Viewport.Width)

	s.mu.Lock()
	s.st.Select("books", false)
	s.mu.Unlock()
	dsl, err = s.handle(ctx, &message{Type: "key", Key: "Delete"})
	require.NoError(t, err)
	assert.NotContains(t, dsl, "books")
	assert.True(t, strings.HasPrefix(dsl, "Table authors"), dsl)

	_, err = s.handle(ctx, &message{Type: "dance"})
	assert.Error(t, err)
}

func TestSessionSnapshot(t *testing.T) {
	t.Parallel()

	ctx, s := newTestSession(t)
	_, err := s.load(ctx, libraryDSL)
	require.NoError(t, err)

	s.mu.Lock()
	s.st.Select("books", false)
	s.mu.Unlock()

	st := s.snapshot()
	assert.Empty(t, st.Selection)
	st.Schema.Table("books").X = -1000
	assert.NotEqual(t, -1000., s.st.Schema.Table("books").X)
}
