package nvformat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"oss.terrastruct.com/diff"

	"oss.terrastruct.com/navani/nvformat"
	"oss.terrastruct.com/navani/nvparser"
	"oss.terrastruct.com/navani/nvschema"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		in   string
		opts *nvformat.Options
		exp  string
	}{
		{
			name: "users_posts",
			in: `Table users {
  id int [pk, increment]
  name varchar
}
Table posts {
  id int [pk, increment]
  user_id int [ref: > users.id]
}`,
			exp: `Table users {
  id int [increment]
  name varchar
}

Table posts {
  id int [increment]
  user_id int [not null, ref: > users.id]
}

`,
		},
		{
			name: "constraint_order",
			in: `Table t [icon: fa-star, color: #22c55e] {
  code varchar(10) [note: 'short code', default: 'x', unique, not null, pk]
  label STRING [unique, default: 'none', not null]
  Indexes {
    (code, label)
  }
  note: 'lookup'
}`,
			exp: `Table t [icon: fa-star, color: #22c55e] {
  code varchar(10) [pk, default: 'x', note: 'short code']
  label varchar [not null, unique, default: 'none']

  Indexes {
    (code, label)
  }

  note: 'lookup'
}

`,
		},
		{
			name: "no_style",
			in: `Table t [icon: fa-star, color: #22c55e] {
  id int
}`,
			opts: &nvformat.Options{IncludeStyle: false},
			exp: `Table t {
  id int
}

`,
		},
		{
			name: "default_icon_omitted",
			in: `Table t [icon: fa-table] {
  id int
}`,
			exp: `Table t {
  id int
}

`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s, err := nvparser.Parse(tc.in)
			require.NoError(t, err)

			got := nvformat.Format(s, tc.opts)
			ds, err := diff.Strings(tc.exp, got)
			if err != nil {
				t.Fatal(err)
			}
			if ds != "" {
				t.Fatalf("tc.exp != got:\n%s", ds)
			}
		})
	}
}

func TestFormatUnparsedFK(t *testing.T) {
	c := &nvschema.Column{Name: "x", Type: "int", FK: true}
	assert.Equal(t, []string{"ref: > table.id"}, nvformat.Constraints(c))
}

// The users/posts document re-emits the reference and marks it not null.
func TestRefRoundTrip(t *testing.T) {
	s, err := nvparser.Parse(`Table users {
  id int [pk, increment]
  name varchar
}
Table posts {
  id int [pk, increment]
  user_id int [ref: > users.id]
}`)
	require.NoError(t, err)

	out := nvformat.Format(s, nil)
	assert.Contains(t, out, "user_id int [not null, ref: > users.id]")

	s2, err := nvparser.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, s.Relationships, s2.Relationships)
	assert.Equal(t, s.Tables, s2.Tables)
}
