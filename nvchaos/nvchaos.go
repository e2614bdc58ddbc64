// Package nvchaos generates random schemas by driving nvoracle the way a user
// would: adding tables, connecting them, styling, renaming and deleting.
package nvchaos

import (
	"fmt"
	mathrand "math/rand"

	"oss.terrastruct.com/navani/nvformat"
	"oss.terrastruct.com/navani/nvoracle"
	"oss.terrastruct.com/navani/nvschema"
	"oss.terrastruct.com/navani/nvstate"
)

var nouns = []string{
	"users", "accounts", "orders", "items", "products", "invoices", "payments",
	"posts", "comments", "tags", "sessions", "teams", "projects", "tasks",
	"events", "venues", "tickets", "files", "folders", "audits",
}

var attrs = []string{
	"name", "email", "title", "body", "status", "total", "price", "slug",
	"created_at", "updated_at", "deleted_at", "count", "score", "active",
	"path", "size", "kind", "rank",
}

var types = []string{
	"int", "varchar", "varchar(255)", "text", "bool", "timestamp", "date",
	"decimal(10,2)", "float", "json", "uuid", "blob",
}

// GenDSL returns the DSL of a schema built in at most maxi steps from seed.
func GenDSL(seed int64, maxi int) (string, error) {
	st, err := Gen(seed, maxi)
	if err != nil {
		return "", err
	}
	return nvformat.Format(st.Schema, nil), nil
}

// Gen builds a schema in at most maxi steps from seed. The same seed always
// yields the same schema.
func Gen(seed int64, maxi int) (*nvstate.State, error) {
	gs := &genState{
		rand: mathrand.New(mathrand.NewSource(seed)),
		st:   nvstate.New(),
	}
	if err := gs.gen(maxi); err != nil {
		return nil, err
	}
	return gs.st, nil
}

type genState struct {
	rand *mathrand.Rand
	st   *nvstate.State
}

func (gs *genState) gen(maxi int) error {
	if maxi < 1 {
		maxi = 1
	}
	maxi = gs.rand.Intn(maxi) + 1

	// Every schema has at least one table.
	if err := gs.table(); err != nil {
		return err
	}
	for i := 1; i < maxi; i++ {
		var err error
		switch gs.roll(35, 40, 10, 10, 5) {
		case 0:
			err = gs.table()
		case 1:
			err = gs.relationship()
		case 2:
			err = gs.style()
		case 3:
			err = gs.rename()
		case 4:
			err = gs.delete()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (gs *genState) table() error {
	name := gs.st.Schema.UniqueTableName(gs.pick(nouns))
	pkType := "int"
	if gs.roll(80, 20) == 1 {
		pkType = "uuid"
	}
	cols := []nvoracle.ColumnSpec{{Name: "id", Type: pkType, PK: true}}
	seen := map[string]bool{"id": true}
	for n := gs.rand.Intn(5); n > 0; n-- {
		attr := gs.pick(attrs)
		if seen[attr] {
			continue
		}
		seen[attr] = true
		cols = append(cols, nvoracle.ColumnSpec{Name: attr, Type: gs.pick(types)})
	}
	_, err := nvoracle.CreateTable(gs.st, nvoracle.TableSpec{
		Name:    name,
		Columns: cols,
	})
	return err
}

func (gs *genState) relationship() error {
	tables := gs.st.Schema.Tables
	if len(tables) < 2 {
		return nil
	}
	from := tables[gs.rand.Intn(len(tables))].Name
	to := tables[gs.rand.Intn(len(tables))].Name
	if from == to || gs.connected(from, to) {
		return nil
	}
	kind := nvstate.ManyToOne
	if gs.roll(75, 25) == 1 {
		kind = nvstate.OneToOne
	}
	_, err := nvoracle.CreateRelationship(gs.st, from, to, nvoracle.RelationshipSpec{
		Kind:     kind,
		Required: gs.roll(50, 50) == 0,
	})
	return err
}

func (gs *genState) connected(from, to string) bool {
	for _, r := range gs.st.Schema.Relationships {
		if r.FromTable == from && r.ToTable == to {
			return true
		}
	}
	return false
}

func (gs *genState) style() error {
	t := gs.randTable()
	return nvoracle.SetTableStyle(gs.st, t.Name, gs.pick(nvschema.Icons), gs.pick(nvschema.Colors))
}

func (gs *genState) rename() error {
	t := gs.randTable()
	newName := gs.st.Schema.UniqueTableName(gs.pick(nouns))
	return nvoracle.RenameTable(gs.st, t.Name, newName)
}

func (gs *genState) delete() error {
	if len(gs.st.Schema.Tables) < 2 {
		return nil
	}
	t := gs.randTable()
	if err := nvoracle.DeleteTable(gs.st, t.Name); err != nil {
		return fmt.Errorf("chaos delete: %w", err)
	}
	return nil
}

func (gs *genState) randTable() *nvschema.Table {
	tables := gs.st.Schema.Tables
	return tables[gs.rand.Intn(len(tables))]
}

func (gs *genState) pick(from []string) string {
	return from[gs.rand.Intn(len(from))]
}

// roll returns the index of the weight the roll landed in.
func (gs *genState) roll(weights ...int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	n := gs.rand.Intn(total)
	for i, w := range weights {
		if n < w {
			return i
		}
		n -= w
	}
	return len(weights) - 1
}
