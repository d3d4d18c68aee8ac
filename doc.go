/*
Package fetchax is an HTTP client modeled on the axios request pipeline.  It
layers configuration merging, interceptor chains, URL composition, body
serialization and response parsing over an ordinary http.Client.

Examples:

	resp, err := fetchax.Get(ctx, "https://jsonplaceholder.typicode.com/todos/1")
	if err != nil { return err }

	fmt.Println(resp.Status, resp.Data)

	client := fetchax.MustCreate(
	    fetchax.BaseURL("https://api.example.com/v1/"),
	    fetchax.BearerAuth(token),
	)

	var todo Todo
	resp, err := client.Post(ctx, "/todos", newTodo, fetchax.Into(&todo))

A Client holds a default Config, built from the Options passed to Create.
Each verb method takes per-call Options, which build a second Config.  The
two are merged into the resolved Config for the call:

  - the presets come first: Content-Type: application/json, ThrowError true,
    ResponseType json
  - then the Client's defaults
  - then the call's Options

Later layers win.  Headers are merged key by key, using the canonical form
of each key, so "content-type" overrides "Content-Type".  Interceptors and
middleware from both layers are kept, defaults first.

Interceptors

Request interceptors see the resolved *Config before anything is composed,
and may return a different one.  They can rewrite the URL, headers, params
or body:

	fetchax.RequestInterceptor(func(ctx context.Context, cfg *fetchax.Config) (*fetchax.Config, error) {
	    cfg = cfg.Clone()
	    cfg.Headers().Set("X-Request-Id", newID())
	    return cfg, nil
	})

Response interceptors see the *http.Response of a successful exchange before
it is parsed.  Rejected interceptors see the error of a rejected one, and
return the error the call should fail with.  Each chain runs its steps in
sequence, each step receiving the previous step's output.  An error from a
request or response interceptor aborts the call.

Errors

When ThrowError resolves true, a response with a status of 300 or more
fails the call with a *StatusError, which carries the status and the parsed
response:

	_, err := client.Get(ctx, "/missing")
	if se, ok := fetchax.AsStatusError(err); ok {
	    fmt.Println(se.StatusCode, se.Response.Data)
	}

Transport errors, like a refused connection or a cancelled context, are
returned as the Doer returned them.

Bodies

The data argument of Post, Put and Patch is sent as is when it already is a
body (string, []byte, io.Reader, *Blob, url.Values, *FormData), and marshaled
with the Config's Marshaler otherwise.  JSON is the default.

Response bodies are decoded according to the resolved ResponseType: see
Response.  A body which fails to decode is logged and returned raw, rather
than failing the call.

Middleware

Middleware wraps the Doer a request is sent with.  It sees every exchange,
including the ones about to be rejected:

	client := fetchax.MustCreate(fetchax.Use(fetchax.LogExchanges(slog.Default())))

Dump, DumpToStdout and DumpToLog write out whole exchanges, for debugging.
The metrics package has middleware recording Prometheus metrics.
*/
package fetchax
