package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"oss.terrastruct.com/navani/lib/env"
	"oss.terrastruct.com/navani/lib/xbrowser"
	"oss.terrastruct.com/navani/lib/xhttp"
	"oss.terrastruct.com/navani/lib/xmain"
	"oss.terrastruct.com/navani/nvschema"
)

//go:embed static
var staticFS embed.FS

type watcher struct {
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	devMode bool

	ms          *xmain.State
	r           *renderer
	sess        *session
	inputPath   string
	outputPath  string
	openBrowser bool

	compileCh chan struct{}

	fw               *fsnotify.Watcher
	l                net.Listener
	url              string
	staticFileServer http.Handler

	wsclientsMu sync.Mutex
	closing     bool
	wsclientsWG sync.WaitGroup
	wsclients   map[*wsclient]struct{}

	errMu sync.Mutex
	err   error

	resMu sync.Mutex
	res   *compileResult
}

func newWatcher(ctx context.Context, ms *xmain.State, r *renderer, inputPath, outputPath string) (*watcher, error) {
	// The session measures on its own goroutines so it gets its own ruler.
	m, err := r.measurer()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)

	w := &watcher{
		ctx:     ctx,
		cancel:  cancel,
		devMode: env.DevOnly(),

		ms:          ms,
		r:           r,
		sess:        newSession(r.cfg, m, stem(inputPath)),
		inputPath:   inputPath,
		outputPath:  outputPath,
		openBrowser: r.cfg.Watch.Browser,

		compileCh: make(chan struct{}, 1),
		wsclients: make(map[*wsclient]struct{}),
	}
	err = w.init()
	if err != nil {
		cancel()
		return nil, err
	}
	return w, nil
}

func (w *watcher) init() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fw = fw
	err = w.initStaticFileServer()
	if err != nil {
		return err
	}
	return w.listen()
}

func (w *watcher) initStaticFileServer() error {
	// Serve files directly in dev mode for fast iteration.
	if w.devMode {
		_, file, _, ok := runtime.Caller(0)
		if !ok {
			return errors.New("navani: runtime failed to provide path of watch.go")
		}

		staticFilesDir := filepath.Join(filepath.Dir(file), "./static")
		w.staticFileServer = http.FileServer(http.Dir(staticFilesDir))
		return nil
	}

	sfs, err := fs.Sub(staticFS, "static")
	if err != nil {
		return err
	}
	w.staticFileServer = http.FileServer(http.FS(sfs))
	return nil
}

func (w *watcher) run() error {
	defer w.close()

	w.goFunc(w.watchLoop)
	w.goFunc(w.compileLoop)
	w.goServe()

	w.wg.Wait()
	w.close()
	return w.err
}

func (w *watcher) close() {
	w.wsclientsMu.Lock()
	if w.closing {
		w.wsclientsMu.Unlock()
		return
	}
	w.closing = true
	w.wsclientsMu.Unlock()

	w.cancel()
	if w.fw != nil {
		err := w.fw.Close()
		w.setErr(err)
	}
	if w.l != nil {
		err := w.l.Close()
		if !errors.Is(err, net.ErrClosed) {
			w.setErr(err)
		}
	}

	w.wsclientsWG.Wait()
}

func (w *watcher) setErr(err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	w.errMu.Lock()
	if w.err == nil {
		w.err = err
	}
	w.errMu.Unlock()
}

func (w *watcher) goFunc(fn func(context.Context) error) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.cancel()

		err := fn(w.ctx)
		w.setErr(err)
	}()
}

// watchLoop requests a compile whenever the input file changes. Editors
// write in bursts so events are batched until 32ms pass without one. A 10s
// poll catches events fsnotify drops.
func (w *watcher) watchLoop(ctx context.Context) error {
	lastModified, err := w.ensureAddWatch(ctx)
	if err != nil {
		return err
	}
	w.requestCompile()

	eatBurstTimer := time.NewTimer(0)
	<-eatBurstTimer.C
	pollTicker := time.NewTicker(time.Second * 10)
	defer pollTicker.Stop()

	for {
		select {
		case <-pollTicker.C:
			mt, err := w.ensureAddWatch(ctx)
			if err != nil {
				return err
			}
			if !mt.Equal(lastModified) {
				lastModified = mt
				w.requestCompile()
			}
		case ev, ok := <-w.fw.Events:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			w.ms.Log.Debug.Printf("received file system event %v", ev)
			mt, err := w.ensureAddWatch(ctx)
			if err != nil {
				return err
			}
			if ev.Op == fsnotify.Chmod {
				if mt.Equal(lastModified) {
					// Benign Chmod.
					// See https://github.com/fsnotify/fsnotify/issues/15
					continue
				}
			}
			lastModified = mt
			eatBurstTimer.Reset(time.Millisecond * 32)
		case <-eatBurstTimer.C:
			w.requestCompile()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			w.ms.Log.Error.Printf("fsnotify error: %v", err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *watcher) requestCompile() {
	select {
	case w.compileCh <- struct{}{}:
	default:
	}
}

func (w *watcher) ensureAddWatch(ctx context.Context) (time.Time, error) {
	interval := time.Second
	tc := time.NewTimer(0)
	<-tc.C
	for {
		mt, err := w.addWatch()
		if err == nil {
			return mt, nil
		}
		w.ms.Log.Error.Printf("failed to watch inputPath %q: %v (retrying in %v)", w.inputPath, err, interval)

		tc.Reset(interval)
		select {
		case <-tc.C:
			if interval < time.Second*16 {
				interval *= 2
			}
		case <-ctx.Done():
			return time.Time{}, ctx.Err()
		}
	}
}

func (w *watcher) addWatch() (time.Time, error) {
	err := w.fw.Add(w.inputPath)
	if err != nil {
		return time.Time{}, err
	}
	d, err := w.ms.Fs.Stat(w.inputPath)
	if err != nil {
		return time.Time{}, err
	}
	return d.ModTime(), nil
}

func (w *watcher) compileLoop(ctx context.Context) error {
	firstCompile := true
	for {
		select {
		case <-w.compileCh:
		case <-ctx.Done():
			return ctx.Err()
		}

		w.compile(ctx, firstCompile)

		if firstCompile {
			firstCompile = false
			if w.openBrowser {
				err := xbrowser.OpenURL(ctx, w.ms.Env, w.url)
				if err != nil && !errors.Is(err, xbrowser.ErrDisabled) {
					w.ms.Log.Warn.Printf("failed to open browser to %v: %v", w.url, err)
				}
			}
		}
	}
}

// compile reloads the input file into the session and rewrites the output.
func (w *watcher) compile(ctx context.Context, first bool) {
	recompiledPrefix := ""
	if !first {
		recompiledPrefix = "re"
	}

	input, err := w.ms.ReadPath(w.inputPath)
	if err != nil {
		w.fail(fmt.Errorf("failed to %scompile: %w", recompiledPrefix, err))
		return
	}
	changed, err := w.sess.load(ctx, string(input))
	if err != nil {
		w.fail(fmt.Errorf("failed to %scompile: %w", recompiledPrefix, err))
		return
	}
	if !changed && !first {
		return
	}
	if first {
		w.ms.Log.Info.Printf("compiling %v...", w.inputPath)
	} else {
		w.ms.Log.Info.Printf("detected change in %v: recompiling...", w.inputPath)
	}
	if err := w.writeOutput(); err != nil {
		w.fail(fmt.Errorf("failed to %scompile: %w", recompiledPrefix, err))
		return
	}
	w.ms.Log.Success.Printf("successfully %scompiled %v to %v", recompiledPrefix, w.inputPath, w.outputPath)
	w.broadcast(w.sess.render())
}

func (w *watcher) fail(err error) {
	w.ms.Log.Error.Print(err)
	res := w.sess.render()
	res.Err = err.Error()
	w.broadcast(res)
}

func (w *watcher) writeOutput() error {
	b, err := w.r.render(w.sess.snapshot(), w.outputPath)
	if err != nil {
		return err
	}
	return w.ms.WritePath(w.outputPath, b)
}

// apply handles one message from a watch page and writes schema changes back
// to the input file.
func (w *watcher) apply(ctx context.Context, msg *message) {
	dsl, err := w.sess.handle(ctx, msg)
	if err != nil {
		w.ms.Log.Warn.Printf("%s: %v", msg.Type, err)
		res := w.sess.render()
		res.Err = err.Error()
		w.broadcast(res)
		return
	}
	if dsl != "" {
		if err := w.ms.WritePath(w.inputPath, []byte(dsl)); err != nil {
			w.ms.Log.Error.Printf("failed to write %v: %v", w.inputPath, err)
		} else if err := w.writeOutput(); err != nil {
			w.ms.Log.Error.Printf("failed to write %v: %v", w.outputPath, err)
		}
	}
	w.broadcast(w.sess.render())
}

func (w *watcher) listen() error {
	l, u, err := xhttp.Listen(w.r.cfg.Watch.Host, w.r.cfg.Watch.Port)
	if err != nil {
		return err
	}
	w.l = l
	w.url = u
	w.ms.Log.Success.Printf("listening on %v", w.url)
	return nil
}

func (w *watcher) handler() http.Handler {
	m := http.NewServeMux()
	m.Handle("/", xhttp.HandlerFuncAdapter{Log: w.ms.Log, Func: w.handleRoot})
	m.Handle("/static/", http.StripPrefix("/static", w.staticFileServer))
	m.Handle("/watch", xhttp.HandlerFuncAdapter{Log: w.ms.Log, Func: w.handleWatch})
	return xhttp.Log(w.ms.Log, xhttp.NoCache(m))
}

func (w *watcher) goServe() {
	s := xhttp.NewServer(w.ms.Log.Warn, w.handler())
	w.goFunc(func(ctx context.Context) error {
		return xhttp.Serve(ctx, time.Second*30, s, w.l)
	})
}

func (w *watcher) getRes() *compileResult {
	w.resMu.Lock()
	defer w.resMu.Unlock()
	return w.res
}

var rootTemplate = template.Must(template.New("root").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>{{.Title}}</title>
	<script src="./static/watch.js"></script>
	<link rel="stylesheet" href="./static/watch.css">
</head>
<body data-navani-dev-mode="{{.DevMode}}">
	<div id="navani-err" style="display: none"></div>
	<div id="navani-notice" style="display: none"></div>
	<div id="navani-toolbar">
		{{range .Templates}}<button data-template="{{.}}">+ {{.}}</button>{{end}}
	</div>
	<div id="navani-svg"></div>
	<form id="navani-editor" style="display: none">
		<label>Column <input name="name"></label>
		<label>References <input name="toColumn"></label>
		<label>Kind <select name="kind">
			<option value="many_to_one">many to one</option>
			<option value="one_to_one">one to one</option>
		</select></label>
		<label><input type="checkbox" name="required"> Required</label>
		<button type="submit">Save</button>
		<button type="button" data-cancel>Cancel</button>
	</form>
</body>
</html>
`))

func (w *watcher) handleRoot(hw http.ResponseWriter, r *http.Request) error {
	if r.URL.Path != "/" {
		return xhttp.Errorf(http.StatusNotFound, nil, "no page at %s", r.URL.Path)
	}
	hw.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := rootTemplate.Execute(hw, struct {
		Title     string
		DevMode   bool
		Templates []string
	}{
		Title:     w.inputPath,
		DevMode:   w.devMode,
		Templates: nvschema.TemplateNames(),
	})
	if err != nil {
		return fmt.Errorf("failed to render watch page: %w", err)
	}
	return nil
}

func (w *watcher) handleWatch(hw http.ResponseWriter, r *http.Request) error {
	w.wsclientsMu.Lock()
	if w.closing {
		w.wsclientsMu.Unlock()
		return xhttp.Errorf(http.StatusServiceUnavailable, "server shutting down...", "server shutting down...")
	}
	// Registered before the upgrade so close waits for the hijacked
	// connection.
	w.wsclientsWG.Add(1)
	w.wsclientsMu.Unlock()

	c, err := websocket.Accept(hw, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		w.wsclientsWG.Done()
		return err
	}

	go func() {
		defer w.wsclientsWG.Done()
		defer c.Close(websocket.StatusInternalError, "the sky is falling")

		ctx, cancel := context.WithTimeout(w.ctx, time.Hour)
		defer cancel()

		cl := &wsclient{
			w:         w,
			resultsCh: make(chan struct{}, 1),
			c:         c,
		}

		w.wsclientsMu.Lock()
		w.wsclients[cl] = struct{}{}
		w.wsclientsMu.Unlock()
		defer func() {
			w.wsclientsMu.Lock()
			delete(w.wsclients, cl)
			w.wsclientsMu.Unlock()
		}()

		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		go func() {
			defer cancel()
			_ = cl.readLoop(ctx)
		}()
		go wsHeartbeat(ctx, cl.c)
		_ = cl.writeLoop(ctx)
	}()
	return nil
}

type wsclient struct {
	w         *watcher
	resultsCh chan struct{}
	c         *websocket.Conn
}

func (cl *wsclient) readLoop(ctx context.Context) error {
	cl.c.SetReadLimit(1 << 16)
	for {
		var msg message
		err := wsjson.Read(ctx, cl.c, &msg)
		if err != nil {
			return err
		}
		cl.w.apply(ctx, &msg)
	}
}

func (cl *wsclient) writeLoop(ctx context.Context) error {
	for {
		res := cl.w.getRes()
		if res != nil {
			err := cl.write(ctx, res)
			if err != nil {
				return err
			}
		}

		select {
		case <-cl.resultsCh:
		case <-ctx.Done():
			cl.c.Close(websocket.StatusGoingAway, "server shutting down...")
			return ctx.Err()
		}
	}
}

func (cl *wsclient) write(ctx context.Context, res *compileResult) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*30)
	defer cancel()

	return wsjson.Write(ctx, cl.c, res)
}

func (w *watcher) broadcast(res *compileResult) {
	w.resMu.Lock()
	w.res = res
	w.resMu.Unlock()

	w.wsclientsMu.Lock()
	defer w.wsclientsMu.Unlock()
	clientsSuffix := ""
	if len(w.wsclients) != 1 {
		clientsSuffix = "s"
	}
	w.ms.Log.Debug.Printf("broadcasting update to %d client%s", len(w.wsclients), clientsSuffix)
	for cl := range w.wsclients {
		select {
		case cl.resultsCh <- struct{}{}:
		default:
		}
	}
}

func wsHeartbeat(ctx context.Context, c *websocket.Conn) {
	defer c.Close(websocket.StatusInternalError, "the sky is falling")

	t := time.NewTimer(0)
	<-t.C
	for {
		err := c.Ping(ctx)
		if err != nil {
			return
		}

		t.Reset(time.Second * 30)
		select {
		case <-t.C:
		case <-ctx.Done():
			return
		}
	}
}
