// Package nvparser parses the schema DSL into an nvschema.Schema.
//
// The parser is forgiving: unknown lines are skipped and malformed input
// never fails. The only reported condition is a document without tables.
package nvparser

import (
	"errors"
	"regexp"
	"strings"

	"oss.terrastruct.com/navani/nvschema"
)

// ErrNoTables is returned alongside an empty schema when the text defines no
// tables. Callers treat it as a warning and keep their current diagram.
var ErrNoTables = errors.New("no tables found")

var (
	lineCommentRegex  = regexp.MustCompile(`(?m)//.*$`)
	blockCommentRegex = regexp.MustCompile(`(?s)/\*.*?\*/`)

	tableHeadRegex = regexp.MustCompile(`(?i)\bTable\s+(\w+)\s*(?:\[([^\]]*)\])?\s*\{`)
	iconAttrRegex  = regexp.MustCompile(`(?i)icon:\s*([\w-]+)`)
	colorAttrRegex = regexp.MustCompile(`(?i)color:\s*(#[0-9a-fA-F]{6})`)

	noteLineRegex    = regexp.MustCompile(`(?i)^note:\s*['"](.*)['"]`)
	inlineIndexRegex = regexp.MustCompile(`(?i)^Index(es)?\s*\{(.*?)\}`)
	indexOpenRegex   = regexp.MustCompile(`(?i)^Index(es)?\s*\{\s*$`)
	indexTupleRegex  = regexp.MustCompile(`\(([^)]*)\)`)
	indexBareRegex   = regexp.MustCompile(`^(\w+)\b`)
	columnRegex      = regexp.MustCompile(`^(\w+)\s+(\w+(?:\([^)]+\))?)\s*(.*)$`)
)

// StripComments removes // line comments and /* */ block comments.
func StripComments(text string) string {
	text = lineCommentRegex.ReplaceAllString(text, "")
	return blockCommentRegex.ReplaceAllString(text, "")
}

// Parse returns every table defined in text along with the relationships
// implied by ref constraints. Tables are unpositioned.
//
// A table redefined later in the document is ignored, as is a column whose
// name repeats case-insensitively within its table.
func Parse(text string) (*nvschema.Schema, error) {
	p := &parser{
		text:   StripComments(text),
		schema: nvschema.New(),
	}
	p.parse()
	if len(p.schema.Tables) == 0 {
		return p.schema, ErrNoTables
	}
	return p.schema, nil
}

type parser struct {
	text   string
	schema *nvschema.Schema
}

func (p *parser) parse() {
	pos := 0
	for pos < len(p.text) {
		loc := tableHeadRegex.FindStringSubmatchIndex(p.text[pos:])
		if loc == nil {
			return
		}
		name := p.text[pos+loc[2] : pos+loc[3]]
		attrs := ""
		if loc[4] >= 0 {
			attrs = p.text[pos+loc[4] : pos+loc[5]]
		}
		bodyStart := pos + loc[1]
		bodyEnd, ok := matchBrace(p.text, bodyStart)
		if !ok {
			// Unterminated. Nothing after this point can be a table body.
			return
		}
		pos = bodyEnd + 1

		if p.schema.Table(name) != nil {
			continue
		}
		p.parseTable(name, attrs, p.text[bodyStart:bodyEnd])
	}
}

// matchBrace returns the index of the } closing the block whose body starts
// at start.
func matchBrace(s string, start int) (int, bool) {
	depth := 1
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return -1, false
}

func (p *parser) parseTable(name, attrs, body string) {
	t := &nvschema.Table{
		Name:    name,
		Columns: []*nvschema.Column{},
	}
	if m := iconAttrRegex.FindStringSubmatch(attrs); m != nil {
		t.Icon = m[1]
	}
	if m := colorAttrRegex.FindStringSubmatch(attrs); m != nil {
		t.Color = m[1]
	}

	inIndexes := false
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if inIndexes {
			if strings.HasPrefix(line, "}") {
				inIndexes = false
				continue
			}
			if idx := parseIndexLine(line); idx != nil {
				t.Indexes = append(t.Indexes, idx)
			}
			continue
		}

		if m := noteLineRegex.FindStringSubmatch(line); m != nil {
			t.Note = m[1]
			continue
		}
		if m := inlineIndexRegex.FindStringSubmatch(line); m != nil {
			for _, tuple := range indexTupleRegex.FindAllStringSubmatch(m[2], -1) {
				if idx := splitIndexColumns(tuple[1]); idx != nil {
					t.Indexes = append(t.Indexes, idx)
				}
			}
			continue
		}
		if indexOpenRegex.MatchString(line) {
			inIndexes = true
			continue
		}

		m := columnRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if t.HasColumnFold(m[1]) {
			continue
		}
		p.addColumn(t, m[1], m[2], m[3])
	}

	p.schema.Tables = append(p.schema.Tables, t)
}

func (p *parser) addColumn(t *nvschema.Table, name, typ, rest string) {
	cons := ParseConstraints(rest)
	c := &nvschema.Column{
		Name:      name,
		Type:      NormalizeType(typ),
		PK:        cons.PK,
		Increment: cons.Increment,
		NotNull:   cons.NotNull,
		Unique:    cons.Unique,
		Default:   cons.Default,
		Note:      cons.Note,
	}
	if cons.Ref != nil {
		c.FK = true
		c.RefTable = cons.Ref.Table
		c.RefColumn = cons.Ref.Column
		p.schema.Relationships = append(p.schema.Relationships, &nvschema.Relationship{
			FromTable:  t.Name,
			FromColumn: name,
			ToTable:    cons.Ref.Table,
			ToColumn:   cons.Ref.Column,
		})
	}
	t.Columns = append(t.Columns, c)
}

// parseIndexLine reads one entry of a multi-line index block: either a
// parenthesized column tuple or a bare column name, each optionally followed
// by settings in brackets.
func parseIndexLine(line string) []string {
	if m := indexTupleRegex.FindStringSubmatch(line); m != nil {
		return splitIndexColumns(m[1])
	}
	if m := indexBareRegex.FindStringSubmatch(line); m != nil {
		return []string{m[1]}
	}
	return nil
}

func splitIndexColumns(s string) []string {
	var cols []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			cols = append(cols, part)
		}
	}
	return cols
}
