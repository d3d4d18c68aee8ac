package httptestutil

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/http/httputil"
	"os"
)

// Dump writes requests and responses handled by the test server to w.
// It wraps and replaces the server's Handler, so should be called after
// the real Handler has been installed.
func Dump(ts *httptest.Server, w io.Writer) {
	ts.Config.Handler = DumpTo(ts.Config.Handler, w)
}

// DumpToStdout is Dump with os.Stdout.
func DumpToStdout(ts *httptest.Server) {
	Dump(ts, os.Stdout)
}

type logFunc func(a ...interface{})

func (f logFunc) Write(p []byte) (n int, err error) {
	f(string(p))
	return len(p), nil
}

// DumpToLog is Dump with a logging function, like testing.T.Log.
func DumpToLog(ts *httptest.Server, logf func(a ...interface{})) {
	Dump(ts, logFunc(logf))
}

// DumpTo returns handler wrapped so each request it serves, and the
// response it writes, are written to w in wire format.  Each goes out in a
// single Write.  A nil handler means http.DefaultServeMux.
func DumpTo(handler http.Handler, w io.Writer) http.Handler {
	if handler == nil {
		handler = http.DefaultServeMux
	}
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		writeDump(w, "request")(httputil.DumpRequest(r, true))

		var ex Exchange
		handler.ServeHTTP(capture(rw, &ex), r)
		if ex.StatusCode == 0 {
			ex.StatusCode = http.StatusOK
			ex.Header = rw.Header().Clone()
		}

		// rebuild the response from what the handler wrote
		resp := &http.Response{
			Proto:         r.Proto,
			ProtoMajor:    r.ProtoMajor,
			ProtoMinor:    r.ProtoMinor,
			StatusCode:    ex.StatusCode,
			Header:        ex.Header,
			Body:          ioutil.NopCloser(bytes.NewReader(ex.ResponseBody.Bytes())),
			ContentLength: int64(ex.ResponseBody.Len()),
		}
		writeDump(w, "response")(httputil.DumpResponse(resp, true))
	})
}

func writeDump(w io.Writer, what string) func([]byte, error) {
	return func(dump []byte, err error) {
		if err != nil {
			fmt.Fprintf(w, "error dumping %s: %v\n", what, err)
			return
		}
		w.Write(append(dump, "\r\n"...))
	}
}
