package httptestutil

import (
	"bytes"
	"io"
	"io/ioutil"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/tidwall/gjson"
)

// Exchange is one request handled by a test server, and the response the
// handler wrote.
type Exchange struct {
	Request     *http.Request
	RequestBody *bytes.Buffer

	StatusCode   int
	Header       http.Header
	ResponseBody *bytes.Buffer
}

// RequestPath looks up a gjson path in the request body, like "user.name".
func (e *Exchange) RequestPath(path string) gjson.Result {
	if e.RequestBody == nil {
		return gjson.Result{}
	}
	return gjson.GetBytes(e.RequestBody.Bytes(), path)
}

// ResponsePath looks up a gjson path in the response body.
func (e *Exchange) ResponsePath(path string) gjson.Result {
	if e.ResponseBody == nil {
		return gjson.Result{}
	}
	return gjson.GetBytes(e.ResponseBody.Bytes(), path)
}

// Inspector is server-side middleware which records each exchange into the
// buffered Exchanges channel.  Once the buffer is full, further exchanges
// are dropped rather than blocking the server.
//
// Read exchanges straight from the channel, or with NextExchange,
// LastExchange and Drain, none of which block.
type Inspector struct {
	Exchanges chan Exchange
}

// NewInspector creates an Inspector buffering up to size exchanges.  A size
// of 0 means 50.
func NewInspector(size int) *Inspector {
	if size == 0 {
		size = 50
	}
	return &Inspector{Exchanges: make(chan Exchange, size)}
}

// NextExchange returns the oldest buffered exchange, or nil if there is none.
func (i *Inspector) NextExchange() *Exchange {
	select {
	case e := <-i.Exchanges:
		return &e
	default:
		return nil
	}
}

// Drain returns every buffered exchange, oldest first, emptying the buffer.
func (i *Inspector) Drain() []*Exchange {
	var all []*Exchange
	for e := i.NextExchange(); e != nil; e = i.NextExchange() {
		all = append(all, e)
	}
	return all
}

// LastExchange returns the newest buffered exchange, or nil if there is none.
// The older ones are discarded.
func (i *Inspector) LastExchange() *Exchange {
	all := i.Drain()
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

// Clear discards all buffered exchanges.  Safe on a nil Inspector.
func (i *Inspector) Clear() {
	if i != nil {
		i.Drain()
	}
}

// Wrap returns next with the inspector in front of it.  A nil next means
// http.DefaultServeMux.
func (i *Inspector) Wrap(next http.Handler) http.Handler {
	if next == nil {
		next = http.DefaultServeMux
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ex := Exchange{Request: r}
		if r.Body != nil && r.Body != http.NoBody {
			b, err := ioutil.ReadAll(r.Body)
			r.Body.Close()
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			ex.RequestBody = bytes.NewBuffer(b)
			r.Body = ioutil.NopCloser(bytes.NewReader(b))
		}

		next.ServeHTTP(capture(w, &ex), r)
		if ex.StatusCode == 0 {
			// nothing written, net/http sends an empty 200
			ex.StatusCode = http.StatusOK
			ex.Header = w.Header().Clone()
		}

		select {
		case i.Exchanges <- ex:
		default:
		}
	})
}

// capture returns w wrapped so the status, headers and body the handler
// writes are recorded into ex.
func capture(w http.ResponseWriter, ex *Exchange) http.ResponseWriter {
	ex.ResponseBody = &bytes.Buffer{}
	wroteHeader := func(code int) {
		if ex.StatusCode == 0 {
			ex.StatusCode = code
			ex.Header = w.Header().Clone()
		}
	}

	return httpsnoop.Wrap(w, httpsnoop.Hooks{
		WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
			return func(code int) {
				wroteHeader(code)
				next(code)
			}
		},
		Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
			return func(b []byte) (int, error) {
				wroteHeader(http.StatusOK)
				ex.ResponseBody.Write(b)
				return next(b)
			}
		},
		ReadFrom: func(next httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
			return func(src io.Reader) (int64, error) {
				wroteHeader(http.StatusOK)
				return next(io.TeeReader(src, ex.ResponseBody))
			}
		},
	})
}
