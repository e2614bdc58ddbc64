package main

import (
	"fmt"

	"oss.terrastruct.com/navani/lib/xmain"
	"oss.terrastruct.com/navani/nvconfig"
)

func help(ms *xmain.State) {
	fmt.Fprintf(ms.Stdout, `Usage:
  %[1]s [--watch] [--theme=light] file.dbml [file.svg | file.png]

%[1]s lays out and renders file.dbml to file.svg
Use - to have %[1]s read from stdin or write to stdout.

Flags:
%[2]s

Subcommands:
  %[1]s fmt [--check] file.dbml... - Rewrite files in canonical form
  %[1]s sql [--color] file.dbml [out.sql] - Print the CREATE TABLE statements of a file
  %[1]s validate file.dbml... - Report inconsistent tables and dangling references
  %[1]s share [--open] file.dbml - Print a share link for a file
  %[1]s share link [file.dbml] - Write the schema carried by a share link
  %[1]s library save file.dbml - Save a file to the schema library
  %[1]s library list - List saved schemas
  %[1]s library load id|name [file.dbml] - Write a saved schema
  %[1]s library rm id... - Delete saved schemas
  %[1]s export file.dbml [dir] - Write a JSON snapshot of a laid out schema
  %[1]s templates [name [file.dbml]] - List table templates, print one or add one to a file
  %[1]s doc [reference.html | reference.md] - Write the schema language reference
  %[1]s version - Print the version

Configuration is read from %[3]s in the working directory when present.
`, ms.Name, ms.Opts.Help(), nvconfig.FileName)
}
