package fetchax

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type todo struct {
	Title string `xml:"title" json:"title" url:"title"`
	Order int    `xml:"order" json:"order" url:"order"`
}

func TestJSONMarshaler_Marshal(t *testing.T) {
	m := JSONMarshaler{}

	d, ct, err := m.Marshal(todo{"a <b> & c", 3})
	require.NoError(t, err)
	assert.Equal(t, "application/json; charset=UTF-8", ct)
	assert.Equal(t, `{"title":"a <b> & c","order":3}`, string(d))

	m.Indent = true
	d, _, err = m.Marshal(map[string]int{"order": 3})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"order\": 3\n}", string(d))

	_, _, err = m.Marshal(func() {})
	require.Error(t, err)
}

func TestJSONMarshaler_Unmarshal(t *testing.T) {
	m := JSONMarshaler{}

	var v todo
	require.NoError(t, m.Unmarshal([]byte(`{"title":"wash","order":1}`), "", &v))
	assert.Equal(t, todo{"wash", 1}, v)

	require.Error(t, m.Unmarshal([]byte(`{"title":`), "", &v))
}

func TestXMLMarshaler(t *testing.T) {
	m := XMLMarshaler{}

	b, ct, err := m.Marshal(todo{"wash", 30})
	require.NoError(t, err)
	assert.Equal(t, "application/xml; charset=UTF-8", ct)
	assert.Equal(t, `<todo><title>wash</title><order>30</order></todo>`, string(b))

	m.Indent = true
	b, _, err = m.Marshal(todo{"wash", 30})
	require.NoError(t, err)
	assert.Equal(t, "<todo>\n  <title>wash</title>\n  <order>30</order>\n</todo>", string(b))

	var v todo
	require.NoError(t, m.Unmarshal(b, "", &v))
	assert.Equal(t, todo{"wash", 30}, v)
}

func TestMultiUnmarshaler_Unmarshal(t *testing.T) {
	m := MultiUnmarshaler{}

	tests := []struct {
		contentType string
		body        string
	}{
		{"application/xml", `<todo><title>wash</title><order>30</order></todo>`},
		{"text/xml; charset=utf-8", `<todo><title>wash</title><order>30</order></todo>`},
		{"application/atom+xml", `<todo><title>wash</title><order>30</order></todo>`},
		{"application/json", `{"title":"wash","order":30}`},
		{"Application/JSON; charset=UTF-8", `{"title":"wash","order":30}`},
		{"application/problem+json", `{"title":"wash","order":30}`},
	}
	for _, tc := range tests {
		t.Run(tc.contentType, func(t *testing.T) {
			var v todo
			require.NoError(t, m.Unmarshal([]byte(tc.body), tc.contentType, &v))
			assert.Equal(t, todo{"wash", 30}, v)
		})
	}

	for _, ct := range []string{"", "text/plain", "application/jsonp"} {
		t.Run("unsupported "+ct, func(t *testing.T) {
			err := m.Unmarshal([]byte(`{"title":"wash"}`), ct, &todo{})
			require.Error(t, err)
		})
	}
}

func TestFormMarshaler_Marshal(t *testing.T) {
	tests := []struct {
		name   string
		input  interface{}
		output string
	}{
		{"struct", todo{"wash", 30}, "order=30&title=wash"},
		{"multi map", map[string][]string{"title": {"wash", "dry"}, "order": {"4"}}, "order=4&title=wash&title=dry"},
		{"values", url.Values{"title": {"wash"}}, "title=wash"},
		{"map", map[string]string{"title": "a b", "order": "4"}, "order=4&title=a+b"},
		{"nil", nil, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, ct, err := (&FormMarshaler{}).Marshal(tc.input)
			require.NoError(t, err)
			assert.Equal(t, "application/x-www-form-urlencoded; charset=UTF-8", ct)
			assert.Equal(t, tc.output, string(d))
		})
	}

	_, _, err := (&FormMarshaler{}).Marshal(42)
	require.Error(t, err)
}

func TestMarshalerOptions(t *testing.T) {
	cfg := &Config{}

	mf := MarshalFunc(func(interface{}) ([]byte, string, error) {
		return []byte("x"), "text/x", nil
	})
	uf := UnmarshalFunc(func([]byte, string, interface{}) error { return nil })
	require.NoError(t, cfg.Apply(mf, uf))

	b, ct, err := cfg.Marshaler.Marshal(nil)
	require.NoError(t, err)
	assert.Equal(t, "x", string(b))
	assert.Equal(t, "text/x", ct)
	assert.NotNil(t, cfg.Unmarshaler)

	require.NoError(t, cfg.Apply(&XMLMarshaler{}, &MultiUnmarshaler{}))
	assert.IsType(t, &XMLMarshaler{}, cfg.Marshaler)
	assert.IsType(t, &MultiUnmarshaler{}, cfg.Unmarshaler)

	require.NoError(t, cfg.Apply(&FormMarshaler{}))
	assert.IsType(t, &FormMarshaler{}, cfg.Marshaler)
	require.NoError(t, cfg.Apply(&JSONMarshaler{}))
	assert.IsType(t, &JSONMarshaler{}, cfg.Marshaler)
}
