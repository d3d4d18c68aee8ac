package fetchax_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	. "github.com/gemalto/fetchax"
	"github.com/gemalto/fetchax/clientserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDump(t *testing.T) {
	cs := clientserver.New(nil)
	defer cs.Close()
	cs.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"color":"red"}`))
	})

	b := &bytes.Buffer{}

	resp, err := cs.Get(context.Background(), "/", Dump(b))
	require.NoError(t, err)

	t.Log(b)

	assert.Contains(t, b.String(), "GET / HTTP/1.1")
	assert.Contains(t, b.String(), "HTTP/1.1 200 OK")
	assert.Contains(t, b.String(), `{"color":"red"}`)

	// the body is still there to parse
	assert.Equal(t, map[string]interface{}{"color": "red"}, resp.Data)
}

func TestDumpToLog(t *testing.T) {
	cs := clientserver.New(nil)
	defer cs.Close()
	cs.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(204)
	})

	var lines []string
	_, err := cs.Delete(context.Background(), "/things/1", DumpToLog(func(a ...interface{}) {
		lines = append(lines, a[0].(string))
	}))
	require.NoError(t, err)

	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "DELETE /things/1 HTTP/1.1")
	assert.Contains(t, lines[1], "204 No Content")
}

func TestWrap_order(t *testing.T) {
	var calls []string
	mw := func(name string) Middleware {
		return func(next Doer) Doer {
			return DoerFunc(func(req *http.Request) (*http.Response, error) {
				calls = append(calls, name)
				return next.Do(req)
			})
		}
	}

	c := MustCreate(WithDoer(MockDoer(200)), Use(mw("default1"), mw("default2")))
	_, err := c.Get(context.Background(), "/", Use(mw("call")))
	require.NoError(t, err)

	assert.Equal(t, []string{"default1", "default2", "call"}, calls)
}

func TestMiddleware_seesRejectedResponses(t *testing.T) {
	var status int
	c := MustCreate(WithDoer(MockDoer(407, Data("boom!"))), Use(func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.Do(req)
			if resp != nil {
				status = resp.StatusCode
			}
			return resp, err
		})
	}))

	_, err := c.Get(context.Background(), "/")
	require.Error(t, err)
	assert.Equal(t, 407, status)
}

func TestLogExchanges(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c := MustCreate(BaseURL("http://a.io"), WithDoer(MockDoer(201)), Use(LogExchanges(l)))
	_, err := c.Post(context.Background(), "/things", map[string]string{"a": "b"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "method=POST")
	assert.Contains(t, out, "url=http://a.io/things")
	assert.Contains(t, out, "status=201")

	t.Run("transport error", func(t *testing.T) {
		buf.Reset()
		boom := errors.New("boom")
		c := MustCreate(FailingDoer(boom), Use(LogExchanges(l)))

		_, err := c.Get(context.Background(), "/")
		assert.Same(t, boom, err)
		assert.True(t, strings.Contains(buf.String(), "level=ERROR"))
		assert.Contains(t, buf.String(), "error=boom")
	})
}
