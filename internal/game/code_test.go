package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCode(t *testing.T) {
	tests := []struct {
		in      string
		want    Code
		wantErr error
	}{
		{"1234", Code{1, 2, 3, 4}, nil},
		{" 6611\n", Code{6, 6, 1, 1}, nil},
		{"123", Code{}, ErrCodeLength},
		{"12345", Code{}, ErrCodeLength},
		{"", Code{}, ErrCodeLength},
		{"7777", Code{}, ErrCodeSymbol},
		{"0123", Code{}, ErrCodeSymbol},
		{"eggs", Code{}, ErrCodeSymbol},
		{"-123", Code{}, ErrCodeSymbol},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCode(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, got.Validate())
		})
	}
}

func TestCodeString(t *testing.T) {
	assert.Equal(t, "3412", Code{3, 4, 1, 2}.String())
}

func TestCodeJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Answer Code `json:"answer"`
	}{MustParseCode("5151")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer":"5151"}`, string(b))

	var v struct {
		Answer Code `json:"answer"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"answer":"2626"}`), &v))
	assert.Equal(t, Code{2, 6, 2, 6}, v.Answer)

	assert.Error(t, json.Unmarshal([]byte(`{"answer":"2929"}`), &v))
}

func TestMustParseCodePanics(t *testing.T) {
	assert.Panics(t, func() { MustParseCode("99") })
}
