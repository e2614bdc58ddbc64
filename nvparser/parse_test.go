package nvparser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.terrastruct.com/navani/nvparser"
	"oss.terrastruct.com/navani/nvschema"
)

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		text       string
		expErr     error
		assertions func(t *testing.T, s *nvschema.Schema)
	}{
		{
			name: "users_posts",
			text: `Table users {
  id int [pk, increment]
  name varchar
}

Table posts {
  id int [pk, increment]
  user_id int [ref: > users.id]
}`,
			assertions: func(t *testing.T, s *nvschema.Schema) {
				require.Len(t, s.Tables, 2)
				require.Len(t, s.Relationships, 1)
				assert.Equal(t, &nvschema.Relationship{
					FromTable:  "posts",
					FromColumn: "user_id",
					ToTable:    "users",
					ToColumn:   "id",
				}, s.Relationships[0])

				id := s.Table("users").Column("id")
				assert.True(t, id.PK)
				assert.True(t, id.Increment)

				fk := s.Table("posts").Column("user_id")
				assert.True(t, fk.FK)
				assert.True(t, fk.NotNull)
				assert.Equal(t, "users", fk.RefTable)
				assert.Equal(t, "id", fk.RefColumn)
				assert.NoError(t, s.Validate())
			},
		},
		{
			name:   "empty",
			text:   "// nothing here\n/* still\nnothing */",
			expErr: nvparser.ErrNoTables,
			assertions: func(t *testing.T, s *nvschema.Schema) {
				assert.Empty(t, s.Tables)
			},
		},
		{
			name:   "garbage",
			text:   "this is not { a schema ] at all",
			expErr: nvparser.ErrNoTables,
		},
		{
			name: "comments",
			text: `// header
Table a { // trailing
  id int [pk] // pk
  /* name varchar */
  /*
  gone int
  */
  kept int
}`,
			assertions: func(t *testing.T, s *nvschema.Schema) {
				require.Len(t, s.Tables, 1)
				cols := s.Tables[0].Columns
				require.Len(t, cols, 2)
				assert.Equal(t, "id", cols[0].Name)
				assert.Equal(t, "kept", cols[1].Name)
			},
		},
		{
			name: "attrs",
			text: `Table users [icon: fa-users, color: #3B82F6] {
  id int
}
table lower [color: red] {
  id int
}`,
			assertions: func(t *testing.T, s *nvschema.Schema) {
				require.Len(t, s.Tables, 2)
				assert.Equal(t, "fa-users", s.Tables[0].Icon)
				assert.Equal(t, "#3B82F6", s.Tables[0].Color)
				assert.Equal(t, "", s.Tables[1].Color)
			},
		},
		{
			name: "multiline_indexes",
			text: `Table orders {
  id int [pk]
  user_id int
  created_at datetime

  Indexes {
    (user_id, created_at) [name: 'by_user']
    id
  }

  note: 'all orders'
  status varchar(20)
}`,
			assertions: func(t *testing.T, s *nvschema.Schema) {
				tb := s.Table("orders")
				require.NotNil(t, tb)
				assert.Equal(t, [][]string{{"user_id", "created_at"}, {"id"}}, tb.Indexes)
				assert.Equal(t, "all orders", tb.Note)
				require.Len(t, tb.Columns, 4)
				assert.Equal(t, "status", tb.Columns[3].Name)
			},
		},
		{
			name: "inline_index",
			text: `Table t {
  a int
  b int
  Indexes { (a, b) }
  Index { (a) }
}`,
			assertions: func(t *testing.T, s *nvschema.Schema) {
				assert.Equal(t, [][]string{{"a", "b"}, {"a"}}, s.Tables[0].Indexes)
			},
		},
		{
			name: "duplicates_ignored",
			text: `Table t {
  id int [pk]
  ID varchar
}
Table t {
  other int
}`,
			assertions: func(t *testing.T, s *nvschema.Schema) {
				require.Len(t, s.Tables, 1)
				require.Len(t, s.Tables[0].Columns, 1)
				assert.Equal(t, "int", s.Tables[0].Columns[0].Type)
			},
		},
		{
			name: "unknown_lines_skipped",
			text: `Table t {
  ???
  id int [pk]
  : nonsense
}`,
			assertions: func(t *testing.T, s *nvschema.Schema) {
				require.Len(t, s.Tables[0].Columns, 1)
			},
		},
		{
			name: "self_reference",
			text: `Table employees {
  id int [pk]
  manager_id int [references: employees.id]
}`,
			assertions: func(t *testing.T, s *nvschema.Schema) {
				require.Len(t, s.Relationships, 1)
				assert.True(t, s.Relationships[0].IsSelf())
			},
		},
		{
			name: "ref_default_column",
			text: `Table a {
  b_code int [ref: > b]
}`,
			assertions: func(t *testing.T, s *nvschema.Schema) {
				require.Len(t, s.Relationships, 1)
				assert.Equal(t, "id", s.Relationships[0].ToColumn)
				assert.Equal(t, "b", s.Relationships[0].ToTable)
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s, err := nvparser.Parse(tc.text)
			require.NotNil(t, s)
			if tc.expErr != nil {
				assert.ErrorIs(t, err, tc.expErr)
			} else {
				require.NoError(t, err)
			}
			if tc.assertions != nil {
				tc.assertions(t, s)
			}
		})
	}
}

func TestParseConstraints(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		in   string
		exp  nvparser.Constraints
	}{
		{
			name: "empty",
			in:   "",
			exp:  nvparser.Constraints{},
		},
		{
			name: "primary key",
			in:   "[Primary Key, NOT NULL]",
			exp:  nvparser.Constraints{PK: true, NotNull: true},
		},
		{
			name: "autoincrement implies pk",
			in:   "[autoincrement]",
			exp:  nvparser.Constraints{PK: true, Increment: true},
		},
		{
			name: "default",
			in:   "[default: 'pending', unique]",
			exp:  nvparser.Constraints{Default: "'pending'", Unique: true},
		},
		{
			name: "quoted comma",
			in:   "[default: 'a, b', note: \"x, y\"]",
			exp:  nvparser.Constraints{Default: "'a, b'", Note: "x, y"},
		},
		{
			name: "ref implies not null",
			in:   "[ref: > users.email]",
			exp: nvparser.Constraints{
				NotNull: true,
				Ref:     &nvparser.Ref{Table: "users", Column: "email"},
			},
		},
		{
			name: "ref without target",
			in:   "[ref: >]",
			exp:  nvparser.Constraints{},
		},
		{
			name: "unknown",
			in:   "[whatever, pk]",
			exp:  nvparser.Constraints{PK: true},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.exp, nvparser.ParseConstraints(tc.in))
		})
	}
}

func TestNormalizeType(t *testing.T) {
	t.Parallel()

	testCases := map[string]string{
		"INTEGER":       "int",
		"bigint":        "int",
		"TinyInt":       "int",
		"STRING":        "varchar",
		"BOOL":          "bool",
		"boolean":       "bool",
		"NUMERIC(10,2)": "decimal(10,2)",
		"DOUBLE":        "float",
		"REAL":          "float",
		"BINARY":        "blob",
		"VARCHAR(100)":  "varchar(100)",
		"DateTime":      "datetime",
		"MyEnum":        "myenum",
	}
	for in, exp := range testCases {
		assert.Equal(t, exp, nvparser.NormalizeType(in), in)
	}
}
