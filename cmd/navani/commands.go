package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"oss.terrastruct.com/diff"
	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/navani/lib/xbrowser"
	"oss.terrastruct.com/navani/lib/xmain"
	"oss.terrastruct.com/navani/nvconfig"
	"oss.terrastruct.com/navani/nvdoc"
	"oss.terrastruct.com/navani/nvexport"
	"oss.terrastruct.com/navani/nvformat"
	"oss.terrastruct.com/navani/nvlibrary"
	"oss.terrastruct.com/navani/nvoracle"
	"oss.terrastruct.com/navani/nvparser"
	"oss.terrastruct.com/navani/nvschema"
	"oss.terrastruct.com/navani/nvshare"
	"oss.terrastruct.com/navani/nvsql"
	"oss.terrastruct.com/navani/nvstate"
)

func fmtCmd(ctx context.Context, ms *xmain.State, cfg *nvconfig.Config, f *flags, args []string) (err error) {
	defer xdefer.Errorf(&err, "failed to fmt")

	if len(args) == 0 {
		return xmain.UsageErrorf("fmt must be passed at least one file to be formatted")
	}

	var unformatted []string
	for _, inputPath := range args {
		input, err := ms.ReadPath(inputPath)
		if err != nil {
			return err
		}

		s, err := nvparser.Parse(string(input))
		if err != nil {
			return fmt.Errorf("%s: %w", inputPath, err)
		}

		output := []byte(nvformat.Format(s, cfg.FormatOptions()))
		if bytes.Equal(output, input) {
			continue
		}
		if !*f.check {
			if err := ms.WritePath(inputPath, output); err != nil {
				return err
			}
			continue
		}
		ds, err := diff.Strings(string(input), string(output))
		if err != nil {
			return err
		}
		ms.Log.Warn.Printf("%s is not formatted:\n%s", inputPath, ds)
		unformatted = append(unformatted, inputPath)
	}
	if len(unformatted) > 0 {
		return xmain.ExitErrorf(1, "%d file(s) need formatting", len(unformatted))
	}
	return nil
}

func sqlCmd(ctx context.Context, ms *xmain.State, f *flags, args []string) (err error) {
	defer xdefer.Errorf(&err, "failed to generate sql")

	if len(args) > 2 {
		return xmain.UsageErrorf("sql accepts an input file and an optional output file")
	}
	inputPath := "-"
	if len(args) > 0 {
		inputPath = args[0]
	}
	s, err := parseFile(ms, inputPath)
	if err != nil {
		return err
	}

	sql := nvsql.Generate(s)
	if len(args) == 2 {
		return ms.WritePath(args[1], []byte(sql))
	}
	if *f.color {
		return nvsql.Highlight(ms.Stdout, sql, nvsql.FormatTerminal, nvsql.DefaultStyle)
	}
	_, err = ms.Stdout.Write([]byte(sql))
	return err
}

// validateCmd checks the model built from a file. References to missing
// tables are legal in the language but almost always typos, so they fail
// validation here.
func validateCmd(ctx context.Context, ms *xmain.State, args []string) error {
	if len(args) == 0 {
		return xmain.UsageErrorf("validate must be passed at least one file")
	}

	failed := 0
	for _, inputPath := range args {
		s, err := parseFile(ms, inputPath)
		if err != nil {
			ms.Log.Error.Printf("%s: %v", inputPath, err)
			failed++
			continue
		}
		var problems []string
		if err := s.Validate(); err != nil {
			problems = append(problems, err.Error())
		}
		for _, r := range s.Relationships {
			if _, _, _, _, ok := s.Resolve(r); !ok {
				problems = append(problems, fmt.Sprintf("%s references a missing table or column", r))
			}
		}
		if len(problems) > 0 {
			ms.Log.Error.Printf("%s:\n%s", inputPath, strings.Join(problems, "\n"))
			failed++
			continue
		}
		ms.Log.Success.Printf("%s: %d tables, %d relationships", inputPath, len(s.Tables), len(s.Relationships))
	}
	if failed > 0 {
		return xmain.ExitErrorf(1, "%d file(s) failed validation", failed)
	}
	return nil
}

// shareCmd prints the share link of a file. Given a link or fragment instead
// it writes the DSL it carries.
func shareCmd(ctx context.Context, ms *xmain.State, cfg *nvconfig.Config, f *flags, args []string) (err error) {
	defer xdefer.Errorf(&err, "failed to share")

	if len(args) == 0 || len(args) > 2 {
		return xmain.UsageErrorf("share must be passed a file or a share link")
	}

	if isShareLink(args[0]) {
		p, ok := nvshare.Decode(args[0])
		if !ok {
			return xmain.UsageErrorf("%q is not a share link", args[0])
		}
		st := nvstate.New()
		if err := nvshare.Apply(st, p); err != nil {
			return err
		}
		out := []byte(nvformat.Format(st.Schema, cfg.FormatOptions()))
		outputPath := "-"
		if len(args) == 2 {
			outputPath = args[1]
		}
		if err := ms.WritePath(outputPath, out); err != nil {
			return err
		}
		if outputPath != "-" {
			ms.Log.Success.Printf("wrote %q to %v", st.Name, outputPath)
		}
		return nil
	}
	if len(args) == 2 {
		return xmain.UsageErrorf("share accepts a single file")
	}

	st, dsl, err := loadState(ms, f, args[0])
	if err != nil {
		return err
	}
	u, err := nvshare.URL(cfg.Share.BaseURL, nvshare.FromState(st, dsl))
	if err != nil {
		return err
	}
	fmt.Fprintln(ms.Stdout, u)
	if *f.open {
		return xbrowser.OpenURL(ctx, ms.Env, u)
	}
	return nil
}

func isShareLink(s string) bool {
	return strings.Contains(s, "#") || strings.HasPrefix(s, "schema=") || strings.HasPrefix(s, "dsl=")
}

func libraryCmd(ctx context.Context, ms *xmain.State, cfg *nvconfig.Config, f *flags, args []string) (err error) {
	if len(args) == 0 {
		return xmain.UsageErrorf("library must be passed one of save, list, load or rm")
	}
	path, err := cfg.LibraryPath()
	if err != nil {
		return err
	}
	lib := nvlibrary.Open(ms.Fs, path)

	sub, args := args[0], args[1:]
	switch sub {
	case "save":
		if len(args) != 1 {
			return xmain.UsageErrorf("library save must be passed one file")
		}
		st, dsl, err := loadState(ms, f, args[0])
		if err != nil {
			return err
		}
		r, err := lib.Save(ctx, st, dsl)
		if err != nil {
			return err
		}
		ms.Log.Success.Printf("saved %q as %s to %s", r.Name, r.ID, lib.Path())
		return nil
	case "list", "ls":
		records, err := lib.List(ctx)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			ms.Log.Info.Printf("no saved schemas in %s", lib.Path())
			return nil
		}
		now := time.Now()
		for _, r := range records {
			fmt.Fprintf(ms.Stdout, "%s\t%-24s\t%3d tables\t%s\n", r.ID, r.Name, r.TableCount, nvlibrary.TimeAgo(now, r.SavedTime()))
		}
		return nil
	case "load":
		if len(args) == 0 || len(args) > 2 {
			return xmain.UsageErrorf("library load must be passed an id or name and an optional output file")
		}
		st := nvstate.New()
		r, err := lib.Load(ctx, st, args[0])
		if errors.Is(err, nvlibrary.ErrNotFound) {
			return xmain.ExitErrorf(1, "no saved schema with id or name %q", args[0])
		}
		if err != nil {
			return err
		}
		outputPath := "-"
		if len(args) == 2 {
			outputPath = args[1]
		}
		if err := ms.WritePath(outputPath, []byte(nvformat.Format(st.Schema, cfg.FormatOptions()))); err != nil {
			return err
		}
		if outputPath != "-" {
			ms.Log.Success.Printf("loaded %q to %v", r.Name, outputPath)
		}
		return nil
	case "rm", "delete":
		if len(args) == 0 {
			return xmain.UsageErrorf("library rm must be passed at least one id")
		}
		for _, id := range args {
			if err := lib.Delete(ctx, id); err != nil {
				return err
			}
		}
		return nil
	}
	return xmain.UsageErrorf("unknown library command %q", sub)
}

func exportCmd(ctx context.Context, ms *xmain.State, cfg *nvconfig.Config, f *flags, args []string) (err error) {
	defer xdefer.Errorf(&err, "failed to export")

	if len(args) == 0 || len(args) > 2 {
		return xmain.UsageErrorf("export must be passed a file and an optional directory")
	}
	dir := "."
	if len(args) == 2 {
		dir = args[1]
	}

	input, err := ms.ReadPath(args[0])
	if err != nil {
		return err
	}
	name := *f.name
	if name == "" {
		name = stem(args[0])
	}
	d, err := newRenderer(cfg).compile(ctx, string(input), name)
	if err != nil {
		return err
	}
	s, err := nvexport.New(d.State, time.Now(), cfg.FormatOptions())
	if err != nil {
		return err
	}
	path, err := nvexport.Write(ctx, ms.Fs, dir, s)
	if err != nil {
		return err
	}
	ms.Log.Success.Printf("exported %q to %v", s.Name, path)
	return nil
}

// templatesCmd lists the table templates, prints one or appends one to a
// file.
func templatesCmd(ctx context.Context, ms *xmain.State, cfg *nvconfig.Config, args []string) (err error) {
	if len(args) == 0 {
		for _, name := range nvschema.TemplateNames() {
			fmt.Fprintln(ms.Stdout, name)
		}
		return nil
	}
	if len(args) > 2 {
		return xmain.UsageErrorf("templates accepts a template name and an optional file")
	}
	name := args[0]
	t := nvschema.Template(name)
	if t == nil {
		return xmain.UsageErrorf("unknown template %q, expected one of %s", name, strings.Join(nvschema.TemplateNames(), ", "))
	}

	if len(args) == 1 {
		s := nvschema.New()
		s.Tables = append(s.Tables, t)
		_, err := ms.Stdout.Write([]byte(nvformat.Format(s, cfg.FormatOptions())))
		return err
	}

	defer xdefer.Errorf(&err, "failed to add template %s", name)
	inputPath := args[1]
	input, err := ms.ReadPath(inputPath)
	if err != nil {
		return err
	}
	st := nvstate.New()
	if strings.TrimSpace(string(input)) != "" {
		if err := nvoracle.ApplyParse(st, string(input)); err != nil {
			return err
		}
	}
	added, err := nvoracle.AddTemplate(st, name)
	if err != nil {
		return err
	}
	if err := ms.WritePath(inputPath, []byte(nvformat.Format(st.Schema, cfg.FormatOptions()))); err != nil {
		return err
	}
	ms.Log.Success.Printf("added table %s to %v", added.Name, inputPath)
	return nil
}

func docCmd(ctx context.Context, ms *xmain.State, args []string) (err error) {
	defer xdefer.Errorf(&err, "failed to generate reference")

	if len(args) > 1 {
		return xmain.UsageErrorf("doc accepts an optional output file")
	}
	outputPath := "-"
	if len(args) == 1 {
		outputPath = args[0]
	}

	var out []byte
	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".html", ".htm":
		out, err = nvdoc.HTML()
		if err != nil {
			return err
		}
	default:
		m, err := nvdoc.Markdown()
		if err != nil {
			return err
		}
		out = []byte(m)
	}
	return ms.WritePath(outputPath, out)
}

func parseFile(ms *xmain.State, inputPath string) (*nvschema.Schema, error) {
	input, err := ms.ReadPath(inputPath)
	if err != nil {
		return nil, err
	}
	s, err := nvparser.Parse(string(input))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", inputPath, err)
	}
	return s, nil
}

// loadState parses a file into a new state named after --name or the file.
// dsl is the file's text.
func loadState(ms *xmain.State, f *flags, inputPath string) (_ *nvstate.State, dsl string, _ error) {
	input, err := ms.ReadPath(inputPath)
	if err != nil {
		return nil, "", err
	}
	st := nvstate.New()
	if *f.name != "" {
		st.Name = *f.name
	} else if n := stem(inputPath); n != "" {
		st.Name = n
	}
	if err := nvoracle.ApplyParse(st, string(input)); err != nil {
		return nil, "", fmt.Errorf("%s: %w", inputPath, err)
	}
	return st, string(input), nil
}
