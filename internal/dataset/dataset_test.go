package dataset

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datarepublican/charitygraph/internal/graph"
)

func TestLoad_JSON(t *testing.T) {
	ds, err := Load("testdata/sample.json")
	require.NoError(t, err)
	require.Len(t, ds.Nodes, 2)
	require.Len(t, ds.Links, 1)

	assert.Equal(t, graph.High, ds.Nodes[0].Category)
	assert.Equal(t, "14-1782466", ds.Nodes[1].EIN, "bare digits are dashed")
	assert.Equal(t, 10134716.0, ds.Links[0].Value)
}

func TestLoad_YAMLMatchesJSON(t *testing.T) {
	j, err := Load("testdata/sample.json")
	require.NoError(t, err)
	y, err := Load("testdata/sample.yaml")
	require.NoError(t, err)

	sj, err := j.Snapshot()
	require.NoError(t, err)
	sy, err := y.Snapshot()
	require.NoError(t, err, "a missing type is derived")
	assert.Equal(t, sj.Records(), sy.Records())
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := Load("testdata/sample.csv")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestDecode_ValidationErrors(t *testing.T) {
	in := `{"nodes":[{"id":"","name":"X","taxpayerFunds":-1,"type":"huge"}],"links":[{"source":"a","value":1}]}`
	_, err := Decode(strings.NewReader(in), JSON)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "nodes[0].id is required")
	assert.Contains(t, msg, "nodes[0].taxpayerFunds must not be negative")
	assert.Contains(t, msg, "nodes[0].type must be one of")
	assert.Contains(t, msg, "links[0].target is required")
}

func TestDecode_UnknownField(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"nodes":[],"edges":[]}`), JSON)
	assert.Error(t, err)
}

func TestDecode_BadEIN(t *testing.T) {
	in := "nodes:\n  - id: a\n    name: A\n    ein: 12-34\n"
	_, err := Decode(strings.NewReader(in), YAML)
	assert.True(t, errors.Is(err, ErrInvalidEIN))
	assert.Contains(t, err.Error(), `nodes[0] (a): "12-34"`)
}

func TestDecode_EmptyYAML(t *testing.T) {
	ds, err := Decode(strings.NewReader(""), YAML)
	require.NoError(t, err)
	assert.Empty(t, ds.Nodes)
}

func TestNormalizeEIN(t *testing.T) {
	tests := []struct {
		in, want string
		ok       bool
	}{
		{"22-2604963", "22-2604963", true},
		{"222604963", "22-2604963", true},
		{" 14-1782466 ", "14-1782466", true},
		{"", "", true},
		{"2-22604963", "", false},
		{"22-260496", "", false},
		{"22-26O4963", "", false},
		{"1234567890", "", false},
	}
	for _, tt := range tests {
		got, err := NormalizeEIN(tt.in)
		if tt.ok {
			assert.NoError(t, err, tt.in)
			assert.Equal(t, tt.want, got, tt.in)
		} else {
			assert.ErrorIs(t, err, ErrInvalidEIN, tt.in)
		}
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	ds, err := Load("testdata/sample.yaml")
	require.NoError(t, err)

	for _, f := range []Format{JSON, YAML} {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, ds, f))
		back, err := Decode(&buf, f)
		require.NoError(t, err, f)
		assert.Equal(t, ds, back, f)
	}
}
