package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/pflag"

	"oss.terrastruct.com/navani/lib/log"
	"oss.terrastruct.com/navani/lib/textmeasure"
	"oss.terrastruct.com/navani/lib/version"
	"oss.terrastruct.com/navani/lib/xmain"
	"oss.terrastruct.com/navani/nvconfig"
	"oss.terrastruct.com/navani/nvgeom"
	"oss.terrastruct.com/navani/nvlib"
	"oss.terrastruct.com/navani/nvparser"
	"oss.terrastruct.com/navani/nvrenderers/nvpng"
	"oss.terrastruct.com/navani/nvrenderers/nvsvg"
	"oss.terrastruct.com/navani/nvstate"
)

func main() {
	xmain.Main(run)
}

// flags are shared by every subcommand; pflag accepts them anywhere on the
// command line.
type flags struct {
	watch   *bool
	debug   *bool
	config  *string
	theme   *string
	pad     *int64
	scale   *float64
	host    *string
	port    *int64
	library *string
	name    *string
	check   *bool
	color   *bool
	open    *bool
	style   *bool
	version *bool
}

func registerFlags(ms *xmain.State) (*flags, error) {
	f := &flags{}
	var err error
	f.watch, err = ms.Opts.Bool("NAVANI_WATCH", "watch", "w", false, "watch for changes to input and live reload. The page is also an editor: drag tables, connect them and press Delete to remove them. Use $NAVANI_HOST and $NAVANI_PORT to choose the listening address (default localhost:0, a random free port).")
	if err != nil {
		return nil, err
	}
	f.debug, err = ms.Opts.Bool("NAVANI_DEBUG", "debug", "d", false, "print debug logs.")
	if err != nil {
		return nil, err
	}
	f.config = ms.Opts.String("NAVANI_CONFIG", "config", "c", nvconfig.FileName, "the configuration file. It is optional unless set explicitly.")
	f.theme = ms.Opts.String("", "theme", "t", "", "the color theme: light or dark.")
	f.pad, err = ms.Opts.Int64("NAVANI_PAD", "pad", "", -1, "pixels padded around the rendered diagram. (default 60)")
	if err != nil {
		return nil, err
	}
	f.scale, err = ms.Opts.Float64("NAVANI_SCALE", "scale", "", 0, "scale of the rendered output. (default 1)")
	if err != nil {
		return nil, err
	}
	f.host = ms.Opts.String("", "host", "", "", "watch server host.")
	f.port, err = ms.Opts.Int64("", "port", "", -1, "watch server port.")
	if err != nil {
		return nil, err
	}
	f.library = ms.Opts.String("", "library", "", "", "the saved schema library file.")
	f.name = ms.Opts.String("", "name", "n", "", "schema name for library save, share and export. Defaults to the input file name.")
	f.check, err = ms.Opts.Bool("", "check", "", false, "fmt: report files that are not formatted instead of rewriting them.")
	if err != nil {
		return nil, err
	}
	f.color, err = ms.Opts.Bool("", "color", "", false, "sql: syntax highlight the output.")
	if err != nil {
		return nil, err
	}
	f.open, err = ms.Opts.Bool("", "open", "o", false, "share: open the link in the browser.")
	if err != nil {
		return nil, err
	}
	f.style, err = ms.Opts.Bool("", "style", "", true, "fmt: keep icon and color table attributes.")
	if err != nil {
		return nil, err
	}
	f.version, err = ms.Opts.Bool("", "version", "v", false, "print the version.")
	if err != nil {
		return nil, err
	}
	return f, nil
}

func run(ctx context.Context, ms *xmain.State) (err error) {
	f, err := registerFlags(ms)
	if err != nil {
		return err
	}
	err = ms.Opts.Parse()
	if errors.Is(err, pflag.ErrHelp) {
		help(ms)
		return nil
	}
	if err != nil {
		return err
	}
	if *f.debug {
		ctx = log.Stderr(ctx, true)
	}

	cfg, err := loadConfig(ms, f)
	if err != nil {
		return err
	}

	args := ms.Opts.Args
	if *f.version {
		fmt.Fprintln(ms.Stdout, version.Version)
		return nil
	}
	if len(args) == 0 {
		help(ms)
		return nil
	}

	switch args[0] {
	case "help":
		help(ms)
		return nil
	case "version":
		fmt.Fprintln(ms.Stdout, version.Version)
		return nil
	case "fmt":
		return fmtCmd(ctx, ms, cfg, f, args[1:])
	case "sql":
		return sqlCmd(ctx, ms, f, args[1:])
	case "validate":
		return validateCmd(ctx, ms, args[1:])
	case "share":
		return shareCmd(ctx, ms, cfg, f, args[1:])
	case "library":
		return libraryCmd(ctx, ms, cfg, f, args[1:])
	case "export":
		return exportCmd(ctx, ms, cfg, f, args[1:])
	case "templates":
		return templatesCmd(ctx, ms, cfg, args[1:])
	case "doc":
		return docCmd(ctx, ms, args[1:])
	}

	if len(args) > 2 {
		return xmain.UsageErrorf("too many arguments passed")
	}
	inputPath := args[0]
	outputPath := ""
	if len(args) == 2 {
		outputPath = args[1]
	} else if inputPath == "-" {
		outputPath = "-"
	} else {
		outputPath = renameExt(inputPath, ".svg")
	}
	if err := checkOutputExt(outputPath); err != nil {
		return err
	}

	r := newRenderer(cfg)
	if *f.watch {
		if inputPath == "-" {
			return xmain.UsageErrorf("-w[atch] cannot be combined with reading input from stdin")
		}
		if outputPath == "-" {
			return xmain.UsageErrorf("-w[atch] cannot be combined with writing output to stdout")
		}
		w, err := newWatcher(ctx, ms, r, inputPath, outputPath)
		if err != nil {
			return err
		}
		return w.run()
	}

	ctx, cancel := log.WithTimeout(ctx, time.Minute*2)
	defer cancel()

	_, err = compile(ctx, ms, r, inputPath, outputPath)
	if err != nil {
		return err
	}
	ms.Log.Success.Printf("successfully compiled %v to %v", inputPath, outputPath)
	return nil
}

// loadConfig reads the config file, then applies the environment and the
// flags in that order.
func loadConfig(ms *xmain.State, f *flags) (*nvconfig.Config, error) {
	required := ms.Opts.Flags.Changed("config") || ms.Env.Getenv("NAVANI_CONFIG") != ""
	cfg, err := nvconfig.Load(ms.Fs, *f.config, required)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(ms.Env); err != nil {
		return nil, err
	}

	if *f.theme != "" {
		cfg.Style.Theme = *f.theme
	}
	if *f.pad >= 0 {
		cfg.Render.Pad = *f.pad
	}
	if *f.scale > 0 {
		cfg.Render.Scale = *f.scale
	}
	if *f.host != "" {
		cfg.Watch.Host = *f.host
	}
	if *f.port >= 0 {
		cfg.Watch.Port = int(*f.port)
	}
	if *f.library != "" {
		cfg.Library.Path = *f.library
	}
	if ms.Opts.Flags.Changed("style") {
		cfg.Style.IncludeStyle = *f.style
	}
	if err := cfg.Validate(); err != nil {
		return nil, xmain.UsageErrorf("%v", err)
	}
	return cfg, nil
}

// renderer turns compiled states into SVG or PNG according to the config.
type renderer struct {
	cfg *nvconfig.Config

	// mu guards ruler, which is not safe for concurrent use.
	mu    sync.Mutex
	ruler *textmeasure.Ruler
}

func newRenderer(cfg *nvconfig.Config) *renderer {
	return &renderer{cfg: cfg}
}

func (r *renderer) getRuler() (*textmeasure.Ruler, error) {
	if r.ruler == nil {
		ruler, err := textmeasure.NewRuler()
		if err != nil {
			return nil, err
		}
		r.ruler = ruler
	}
	return r.ruler, nil
}

// measurer returns a new Measurer for table widths, or nil when measuring is
// disabled.
func (r *renderer) measurer() (nvgeom.Measurer, error) {
	if !r.cfg.Render.Measure {
		return nil, nil
	}
	ruler, err := textmeasure.NewRuler()
	if err != nil {
		return nil, err
	}
	return ruler, nil
}

// compile lays out input into a diagram named name.
func (r *renderer) compile(ctx context.Context, input, name string) (*nvlib.Diagram, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	opts := &nvlib.CompileOptions{
		Layout: r.cfg.LayoutOptions(),
		Router: r.cfg.RouterOptions(),
		State:  nvstate.New(),
	}
	if name != "" {
		opts.State.Name = name
	}
	if r.cfg.Render.Measure {
		ruler, err := r.getRuler()
		if err != nil {
			return nil, err
		}
		opts.Ruler = ruler
	}
	return nvlib.Compile(ctx, input, opts)
}

// render draws st in the format implied by the extension of outputPath.
func (r *renderer) render(st *nvstate.State, outputPath string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.EqualFold(filepath.Ext(outputPath), ".png") {
		ruler, err := r.getRuler()
		if err != nil {
			return nil, err
		}
		return nvpng.Render(st, ruler, &nvpng.RenderOpts{
			Theme:  r.cfg.Theme(),
			Scale:  r.cfg.Render.Scale,
			Router: r.cfg.RouterOptions(),
		})
	}

	opts := &nvsvg.RenderOpts{
		Pad:    &r.cfg.Render.Pad,
		Theme:  r.cfg.Theme(),
		Router: r.cfg.RouterOptions(),
	}
	if r.cfg.Render.Scale != 1 {
		opts.Scale = &r.cfg.Render.Scale
	}
	if r.cfg.Render.Measure {
		ruler, err := r.getRuler()
		if err != nil {
			return nil, err
		}
		opts.Measurer = ruler
	}
	return nvsvg.Render(st, opts)
}

func compile(ctx context.Context, ms *xmain.State, r *renderer, inputPath, outputPath string) ([]byte, error) {
	input, err := ms.ReadPath(inputPath)
	if err != nil {
		return nil, err
	}

	d, err := r.compile(ctx, string(input), stem(inputPath))
	if err != nil {
		if errors.Is(err, nvparser.ErrNoTables) {
			return nil, xmain.ExitErrorf(1, "%s: no tables found", inputPath)
		}
		return nil, err
	}

	out, err := r.render(d.State, outputPath)
	if err != nil {
		return nil, err
	}
	err = ms.WritePath(outputPath, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func checkOutputExt(outputPath string) error {
	if outputPath == "-" {
		return nil
	}
	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".svg", ".png":
		return nil
	}
	return xmain.UsageErrorf("unsupported output format %q: expected .svg or .png", filepath.Ext(outputPath))
}

// newExt must include leading .
func renameExt(fp string, newExt string) string {
	ext := filepath.Ext(fp)
	if ext == "" {
		return fp + newExt
	}
	return strings.TrimSuffix(fp, ext) + newExt
}

// stem is the file name of fp without directory or extension. stdin has no
// name.
func stem(fp string) string {
	if fp == "-" || fp == "" {
		return ""
	}
	base := filepath.Base(fp)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
