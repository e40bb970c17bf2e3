package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// timeouts has the shape of the listener timeout settings.
type timeouts struct {
	ChunkTimeout  Duration `json:"chunk_timeout" yaml:"chunk_timeout" toml:"chunk_timeout"`
	StreamTimeout Duration `json:"stream_timeout" yaml:"stream_timeout" toml:"stream_timeout"`
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{input: "300ms", expected: 300 * time.Millisecond},
		{input: "1s", expected: time.Second},
		{input: "1m", expected: time.Minute},
		{input: "1m30s", expected: 90 * time.Second},
		{input: "0s"},
		{input: "60", wantErr: true},
		{input: "1 minute", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				require.ErrorContains(t, err, "invalid duration")
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, d.Duration)
		})
	}
}

func TestDuration_ConfigFormats(t *testing.T) {
	want := timeouts{
		ChunkTimeout:  NewDuration(time.Second),
		StreamTimeout: NewDuration(time.Minute),
	}

	tests := []struct {
		name   string
		decode func(*timeouts) error
	}{
		{
			name: "yaml",
			decode: func(out *timeouts) error {
				return yaml.Unmarshal([]byte("chunk_timeout: 1s\nstream_timeout: 1m\n"), out)
			},
		},
		{
			name: "json",
			decode: func(out *timeouts) error {
				return json.Unmarshal([]byte(`{"chunk_timeout":"1s","stream_timeout":"1m"}`), out)
			},
		},
		{
			name: "toml",
			decode: func(out *timeouts) error {
				_, err := toml.Decode("chunk_timeout = \"1s\"\nstream_timeout = \"1m\"\n", out)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got timeouts
			require.NoError(t, tt.decode(&got))
			require.Equal(t, want, got)
		})
	}
}

func TestDuration_InvalidInConfig(t *testing.T) {
	var got timeouts
	err := yaml.Unmarshal([]byte("stream_timeout: 60\n"), &got)
	require.ErrorContains(t, err, `invalid duration "60"`)

	err = json.Unmarshal([]byte(`{"chunk_timeout":"soon"}`), &got)
	require.ErrorContains(t, err, `invalid duration "soon"`)
}

func TestDuration_MarshalRoundTrip(t *testing.T) {
	in := timeouts{
		ChunkTimeout:  NewDuration(250 * time.Millisecond),
		StreamTimeout: NewDuration(90 * time.Second),
	}

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	require.JSONEq(t, `{"chunk_timeout":"250ms","stream_timeout":"1m30s"}`, string(raw))

	out, err := yaml.Marshal(in)
	require.NoError(t, err)
	require.Contains(t, string(out), "stream_timeout: 1m30s")
}

func TestDuration_JSONSchema(t *testing.T) {
	schema := jsonschema.Reflect(&timeouts{})

	prop, ok := schema.Definitions["timeouts"].Properties.Get("stream_timeout")
	require.True(t, ok)
	require.Equal(t, "#/$defs/Duration", prop.Ref)

	def := schema.Definitions["Duration"]
	require.NotNil(t, def)
	require.Equal(t, "string", def.Type)
	require.Contains(t, def.Examples, "1m")
}
