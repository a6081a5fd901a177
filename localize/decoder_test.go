package localize

import (
	"bytes"
	"compress/zlib"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Failed to compress payload: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zlib writer: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeOccupancyRawJSON(t *testing.T) {
	payload := []byte(`{"width":2,"height":2,"data":[0,100,-1,0]}`)

	p, err := DecodeOccupancy(payload)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Width)
	assert.Equal(t, 2, p.Height)
	assert.Equal(t, []int8{0, 100, -1, 0}, p.Data)
}

func TestDecodeOccupancyZlib(t *testing.T) {
	raw := []byte(`{"width":3,"height":1,"data":[0,0,100]}`)

	p, err := DecodeOccupancy(deflate(t, raw))
	require.NoError(t, err)
	assert.Equal(t, 3, p.Width)
	assert.Equal(t, []int8{0, 0, 100}, p.Data)
}

func TestDecodeOccupancyErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"empty", nil},
		{"garbage", []byte{0xde, 0xad, 0xbe, 0xef}},
		{"malformed JSON", []byte(`{"width":2,`)},
		{"zero dimensions", []byte(`{"width":0,"height":2,"data":[]}`)},
		{"negative dimensions", []byte(`{"width":2,"height":-1,"data":[]}`)},
		{"length mismatch", []byte(`{"width":2,"height":2,"data":[0,0,0]}`)},
		{"compressed garbage body", deflate(t, []byte("not json"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeOccupancy(tt.payload)
			assert.Error(t, err)
		})
	}
}

func TestDecodeScan(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Scan
		wantErr bool
	}{
		{
			name:    "bare array",
			payload: `[1, 2, 3, 4]`,
			want:    Scan{1, 2, 3, 4},
		},
		{
			name:    "object envelope",
			payload: `{"ranges": [0.5, 1.5, 2.0, 0]}`,
			want:    Scan{0.5, 1.5, 2.0, 0},
		},
		{
			name:    "too few ranges",
			payload: `[1, 2, 3]`,
			wantErr: true,
		},
		{
			name:    "too many ranges",
			payload: `[1, 2, 3, 4, 5]`,
			wantErr: true,
		},
		{
			name:    "negative range",
			payload: `[1, -2, 3, 4]`,
			wantErr: true,
		},
		{
			name:    "empty payload",
			payload: ``,
			wantErr: true,
		},
		{
			name:    "not JSON",
			payload: `one two three four`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scan, err := DecodeScan([]byte(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, scan)
		})
	}
}

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
		wantErr bool
	}{
		{"bare symbol", `N`, "N", false},
		{"bare symbol with whitespace", "  E\n", "E", false},
		{"JSON string", `"W"`, "W", false},
		{"object envelope", `{"direction": "S"}`, "S", false},
		{"object missing direction", `{"dir": "S"}`, "", true},
		{"empty payload", ``, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			symbol, err := DecodeCommand([]byte(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, symbol)
		})
	}
}
