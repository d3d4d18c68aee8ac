package fetchax

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"os"
	"time"
)

// Middleware can be used to wrap Doers with additional functionality:
//
//	loggingMiddleware := func(next Doer) Doer {
//	    return DoerFunc(func(req *http.Request) (*http.Response, error) {
//	        logRequest(req)
//	        return next.Do(req)
//	    })
//	}
//
// Middleware can be applied to a Client or a single call with the Use() option:
//
//	client, err := fetchax.Create(fetchax.Use(loggingMiddleware))
//
// Middleware itself is an Option, so it can also be applied directly:
//
//	resp, err := client.Get(ctx, "/todos", Middleware(loggingMiddleware))
//
// Unlike interceptors, middleware sees the raw exchange, including
// responses which are about to be rejected.  Client default middleware runs
// before per-call middleware.
type Middleware func(Doer) Doer

// Apply implements Option
func (m Middleware) Apply(c *Config) error {
	c.Middleware = append(c.Middleware, m)
	return nil
}

// Wrap applies a set of middleware to a Doer.  The returned Doer will invoke
// the middleware in the order of the arguments.
func Wrap(d Doer, m ...Middleware) Doer {
	for i := len(m) - 1; i > -1; i-- {
		d = m[i](d)
	}
	return d
}

// Dump writes each request and response to w, in wire format, bodies
// included.  Each one goes out in a single Write, so w can be a logger.
// Meant for debugging.
func Dump(w io.Writer) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			writeDump(w, "request")(httputil.DumpRequestOut(req, true))
			resp, err := next.Do(req)
			if resp != nil {
				writeDump(w, "response")(httputil.DumpResponse(resp, true))
			}
			return resp, err
		})
	}
}

func writeDump(w io.Writer, what string) func([]byte, error) {
	return func(dump []byte, err error) {
		if err != nil {
			fmt.Fprintf(w, "error dumping %s: %v\n", what, err)
			return
		}
		w.Write(append(dump, '\n'))
	}
}

// DumpToStdout dumps requests and responses to os.Stdout.
func DumpToStdout() Middleware {
	return Dump(os.Stdout)
}

type logFunc func(a ...interface{})

func (f logFunc) Write(p []byte) (n int, err error) {
	f(string(p))
	return len(p), nil
}

// DumpToLog dumps the request and response to a logging function.
// logf is compatible with fmt.Print(), testing.T.Log, or log.XXX()
// functions.
//
// Request and response will be logged separately.  Though logf
// takes a variadic arg, it will only be called with one string
// arg at a time.
func DumpToLog(logf func(a ...interface{})) Middleware {
	return Dump(logFunc(logf))
}

// LogExchanges logs one record per exchange to l: the method, the URL, the
// status (or the transport error), and how long the exchange took.  Transport
// errors are logged at Error level, everything else at Debug level.
func LogExchanges(l *slog.Logger) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.Do(req)
			attrs := []any{
				slog.String("method", req.Method),
				slog.String("url", req.URL.String()),
				slog.Duration("duration", time.Since(start)),
			}
			if err != nil {
				l.ErrorContext(req.Context(), "fetchax: request failed", append(attrs, slog.Any("error", err))...)
				return resp, err
			}
			l.DebugContext(req.Context(), "fetchax: request done", append(attrs, slog.Int("status", resp.StatusCode))...)
			return resp, err
		})
	}
}
