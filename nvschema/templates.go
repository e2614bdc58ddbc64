package nvschema

import "sort"

// SampleDSL is the document a new session starts with.
const SampleDSL = `// Blog Database Schema

Table users {
  id int [pk, increment]
  name varchar(100) [not null]
  email varchar(150) [unique, not null]
}

Table posts {
  id int [pk, increment]
  user_id int [ref: > users.id]
  title varchar(200) [not null]
  content text
  created_at datetime
}

Table comments {
  id int [pk, increment]
  post_id int [ref: > posts.id]
  user_id int [ref: > users.id]
  body text [not null]
  created_at datetime
}
`

func pk() *Column {
	return &Column{Name: "id", Type: "int", PK: true, Increment: true, NotNull: true}
}

func ref(name, table string) *Column {
	return &Column{Name: name, Type: "int", FK: true, RefTable: table, RefColumn: "id", NotNull: true}
}

var templates = map[string]*Table{
	"users": {
		Name: "users",
		Icon: "fa-users",
		Columns: []*Column{
			pk(),
			{Name: "username", Type: "varchar(50)", NotNull: true},
			{Name: "email", Type: "varchar(100)", Unique: true},
			{Name: "password", Type: "varchar(255)", NotNull: true},
			{Name: "created_at", Type: "datetime"},
		},
	},
	"posts": {
		Name: "posts",
		Icon: "fa-file-alt",
		Columns: []*Column{
			pk(),
			ref("user_id", "users"),
			{Name: "title", Type: "varchar(200)", NotNull: true},
			{Name: "content", Type: "text"},
			{Name: "published", Type: "bool", Default: "false"},
			{Name: "created_at", Type: "datetime"},
		},
	},
	"orders": {
		Name: "orders",
		Icon: "fa-shopping-cart",
		Columns: []*Column{
			pk(),
			ref("user_id", "users"),
			{Name: "total", Type: "decimal(10,2)", NotNull: true},
			{Name: "status", Type: "varchar(20)", Default: "'pending'"},
			{Name: "created_at", Type: "datetime"},
		},
	},
	"products": {
		Name: "products",
		Icon: "fa-box",
		Columns: []*Column{
			pk(),
			{Name: "name", Type: "varchar(100)", NotNull: true},
			{Name: "description", Type: "text"},
			{Name: "price", Type: "decimal(10,2)", NotNull: true},
			{Name: "stock", Type: "int", Default: "0"},
			{Name: "created_at", Type: "datetime"},
		},
	},
}

// Template returns a fresh copy of the named table template, or nil.
func Template(name string) *Table {
	return templates[name].Copy()
}

func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for n := range templates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
