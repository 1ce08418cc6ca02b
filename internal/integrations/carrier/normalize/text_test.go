package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestText_Unmarshal(t *testing.T) {
	var v struct {
		A Text `json:"a"`
		B Text `json:"b"`
		C Text `json:"c"`
		D Text `json:"d"`
		E Text `json:"e"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":" hi ","b":42,"c":{"x":1},"d":null,"e":[1]}`), &v))
	require.Equal(t, "hi", v.A.String())
	require.Equal(t, "42", v.B.String())
	require.Equal(t, "", v.C.String())
	require.Equal(t, "", v.D.String())
	require.Equal(t, "", v.E.String())
}

func TestDecodeAndShapes(t *testing.T) {
	var m map[string]any
	require.False(t, Decode(nil, &m))
	require.False(t, Decode([]byte("nope"), &m))
	require.True(t, Decode([]byte(`{"a":1}`), &m))

	require.True(t, IsArray([]byte(" [1]")))
	require.False(t, IsArray([]byte(`{}`)))
	require.True(t, IsObject([]byte(` {"a":1}`)))
	require.False(t, IsObject([]byte(`"s"`)))
}

func TestPayload(t *testing.T) {
	p := Payload([]byte("{ \"a\" : 1 }"))
	require.NotNil(t, p)
	require.Equal(t, `{"a":1}`, *p)
	require.Nil(t, Payload([]byte("not json")))
	require.Nil(t, Payload(nil))
}
