package xhttp

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"oss.terrastruct.com/cmdlog"
	"oss.terrastruct.com/xjson"
)

// Error carries the status code and JSON body a HandlerFunc failure is
// answered with. Resp defaults to the status text.
type Error struct {
	Code int
	Resp interface{}
	Err  error
}

var _ interface {
	Is(error) bool
	Unwrap() error
} = Error{}

func Errorf(code int, resp interface{}, msg string, v ...interface{}) error {
	return ErrorWrap(code, resp, fmt.Errorf(msg, v...))
}

func ErrorWrap(code int, resp interface{}, err error) error {
	if resp == nil {
		resp = http.StatusText(code)
	}
	return Error{code, resp, err}
}

func (e Error) Unwrap() error {
	return e.Err
}

func (e Error) Is(err error) bool {
	e2, ok := err.(Error)
	if !ok {
		return false
	}
	return e.Code == e2.Code && e.Resp == e2.Resp && errors.Is(e.Err, e2.Err)
}

func (e Error) Error() string {
	return fmt.Sprintf("http error with code %v and resp %#v: %v", e.Code, e.Resp, e.Err)
}

// HandlerFunc is an http.HandlerFunc that fails by returning an error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// HandlerFuncAdapter serves a HandlerFunc. A returned Error is logged at the
// level of its code and written as {"error": resp}. Any other error, or an
// Error whose code is not 4xx or 5xx, becomes a 500.
type HandlerFuncAdapter struct {
	Log  *cmdlog.Logger
	Func HandlerFunc
}

func (a HandlerFuncAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := a.Func(w, r)
	if err != nil {
		handleError(a.Log, w, err)
	}
}

func handleError(clog *cmdlog.Logger, w http.ResponseWriter, err error) {
	var herr Error
	if !errors.As(err, &herr) {
		herr = ErrorWrap(http.StatusInternalServerError, nil, err).(Error)
	}
	if herr.Code < 400 || herr.Code > 599 {
		clog.Error.Printf("unexpected non error http status code %d with resp: %#v", herr.Code, herr.Resp)
		herr.Code = http.StatusInternalServerError
		herr.Resp = http.StatusText(herr.Code)
	}
	if herr.Resp == nil {
		herr.Resp = http.StatusText(herr.Code)
	}
	statusLogger(clog, herr.Code).Printf("error handling http request: %v", err)

	ww, ok := w.(writtenResponseWriter)
	if !ok {
		clog.Warn.Printf("response writer does not implement Written, double write logs possible: %#v", w)
	} else if ww.Written() {
		// The handler failed mid response.
		return
	}
	JSON(w, herr.Code, map[string]interface{}{
		"error": herr.Resp,
	})
}

// statusLogger picks the level a response with code is logged at.
func statusLogger(clog *cmdlog.Logger, code int) *log.Logger {
	switch {
	case code < 300:
		return clog.Success
	case code < 400:
		return clog.Info
	case code < 500:
		return clog.Warn
	}
	return clog.Error
}

type writtenResponseWriter interface {
	Written() bool
}

// JSON writes v with code. A nil v writes the status text.
func JSON(w http.ResponseWriter, code int, v interface{}) {
	if v == nil {
		v = map[string]interface{}{
			"status": http.StatusText(code),
		}
	}

	b := []byte(xjson.MarshalIndent(v))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}
