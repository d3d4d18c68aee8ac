package fetchax

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendStep(s string) Interceptor[[]string] {
	return func(_ context.Context, v []string) ([]string, error) {
		return append(v, s), nil
	}
}

func TestChain(t *testing.T) {
	ctx := context.Background()

	t.Run("order", func(t *testing.T) {
		out, err := Chain(appendStep("a"), appendStep("b"), appendStep("c"))(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, out)
	})

	t.Run("output feeds input", func(t *testing.T) {
		r1Out := &Config{URL: "/from-r1"}
		var r2In *Config

		r1 := func(_ context.Context, c *Config) (*Config, error) {
			return r1Out, nil
		}
		r2 := func(_ context.Context, c *Config) (*Config, error) {
			r2In = c
			return &Config{URL: "/from-r2"}, nil
		}

		out, err := Chain[*Config](r1, r2)(ctx, &Config{})
		require.NoError(t, err)
		assert.Same(t, r1Out, r2In)
		assert.Equal(t, "/from-r2", out.URL)
	})

	t.Run("nils", func(t *testing.T) {
		assert.Nil(t, Chain[int]())
		assert.Nil(t, Chain[int](nil, nil))

		out, err := Chain[[]string](nil, appendStep("a"), nil)(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, out)
	})

	t.Run("error stops the chain", func(t *testing.T) {
		boom := errors.New("boom")
		var ranAfter bool
		_, err := Chain[[]string](
			appendStep("a"),
			func(_ context.Context, v []string) ([]string, error) { return nil, boom },
			func(_ context.Context, v []string) ([]string, error) {
				ranAfter = true
				return v, nil
			},
		)(ctx, nil)
		assert.Same(t, boom, err)
		assert.False(t, ranAfter)
	})

	t.Run("context is passed", func(t *testing.T) {
		type key struct{}
		ctx := context.WithValue(context.Background(), key{}, "v")
		var seen interface{}
		_, err := Chain[int](func(ctx context.Context, v int) (int, error) {
			seen = ctx.Value(key{})
			return v, nil
		})(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "v", seen)
	})
}

func TestChainRejected(t *testing.T) {
	ctx := context.Background()
	orig := errors.New("orig")

	t.Run("replace", func(t *testing.T) {
		x := errors.New("x")
		out := ChainRejected(func(_ context.Context, err error) error { return x })(ctx, orig)
		assert.Same(t, x, out)
	})

	t.Run("later sees earlier substitution", func(t *testing.T) {
		first := errors.New("first")
		var seen error
		out := ChainRejected(
			func(_ context.Context, err error) error { return first },
			func(_ context.Context, err error) error {
				seen = err
				return nil
			},
		)(ctx, orig)
		assert.Same(t, first, seen)
		// nil keeps the previous error
		assert.Same(t, first, out)
	})

	t.Run("nils", func(t *testing.T) {
		assert.Nil(t, ChainRejected())
		assert.Nil(t, ChainRejected(nil))
	})
}
