package fetchax_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/gemalto/fetchax"
)

func Example() {
	ts := httptest.NewServer(fetchax.MockHandler(200,
		fetchax.Data(map[string]interface{}{"userId": 1, "id": 1, "title": "x", "completed": false}),
	))
	defer ts.Close()

	client := fetchax.MustCreate(
		fetchax.BaseURL(ts.URL),
		fetchax.WithResponseType(fetchax.ResponseTypeJSON),
	)

	resp, err := client.Get(context.Background(), "/todos/1")
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(resp.Status, resp.StatusText)
	fmt.Println(resp.Path("title").String())

	// Output:
	// 200 OK
	// x
}

func ExampleAs() {
	type Todo struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	}

	doer := fetchax.MockDoer(200, fetchax.Data(Todo{ID: 1, Title: "x"}))

	resp, _ := fetchax.MustCreate(doer).Get(context.Background(), "/todos/1")

	todo, err := fetchax.As[Todo](resp)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%+v\n", todo)

	// Output: {ID:1 Title:x}
}

func ExampleInto() {
	type Todo struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	}

	doer := fetchax.MockDoer(200, fetchax.Data(Todo{ID: 1, Title: "x"}))

	var todo Todo
	fetchax.MustCreate(doer).Get(context.Background(), "/todos/1", fetchax.Into(&todo))

	fmt.Println(todo.Title)

	// Output: x
}

func ExampleStatusError() {
	doer := fetchax.MockDoer(404, fetchax.Data(map[string]string{"message": "no such todo"}))
	client := fetchax.MustCreate(doer, fetchax.ThrowError(true))

	_, err := client.Get(context.Background(), "/missing")

	if se, ok := fetchax.AsStatusError(err); ok {
		fmt.Println(se.StatusCode)
		fmt.Println(se.Response.Path("message").String())
	}

	// ThrowError(false) lets the response through
	resp, _ := client.Get(context.Background(), "/missing", fetchax.ThrowError(false))
	fmt.Println(resp.Status)

	// Output:
	// 404
	// no such todo
	// 404
}

func ExampleResponseRejectedInterceptor() {
	type APIError struct {
		Status  int
		Message string
	}

	client := fetchax.MustCreate(
		fetchax.MockDoer(500, fetchax.Data(map[string]string{"message": "boom"})),
		fetchax.ResponseRejectedInterceptor(func(_ context.Context, err error) error {
			se, ok := fetchax.AsStatusError(err)
			if !ok {
				return err
			}
			return fmt.Errorf("%+v", APIError{
				Status:  se.StatusCode,
				Message: se.Response.Path("message").String(),
			})
		}),
	)

	_, err := client.Get(context.Background(), "/")
	fmt.Println(err)

	// Output: {Status:500 Message:boom}
}

func ExampleRequestInterceptor() {
	client := fetchax.MustCreate(
		fetchax.BaseURL("https://api.example.com/v1"),
		fetchax.RequestInterceptor(func(_ context.Context, cfg *fetchax.Config) (*fetchax.Config, error) {
			cfg = cfg.Clone()
			cfg.Headers().Set("X-Tenant", "acme")
			return cfg, nil
		}),
	)

	req, _ := client.Request(context.Background(), http.MethodGet, "/todos", fetchax.QueryParam("page", "2"))

	fmt.Println(req.URL)
	fmt.Println(req.Header.Get("X-Tenant"))

	// Output:
	// https://api.example.com/v1/todos?page=2
	// acme
}
