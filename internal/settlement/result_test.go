package settlement

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResult(t *testing.T) {
	tests := []struct {
		in       string
		expected Result
	}{
		{"win", Win},
		{"WIN", Win},
		{" Won ", Win},
		{"loss", Loss},
		{"Lost", Loss},
		{"push", Push},
		{"void", Void},
		{"cancelled", Void},
		{"pending", Pending},
		{"", Pending},
		{"half-win", Pending},
		{"p", Pending},
		{"P", Pending},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseResult(tt.in))
		})
	}
}

func TestResultString(t *testing.T) {
	for _, r := range []Result{Pending, Win, Loss, Push, Void} {
		assert.Equal(t, r, ParseResult(r.String()))
	}
	assert.Equal(t, "pending", Result(99).String())
}

func TestResultSettled(t *testing.T) {
	assert.True(t, Win.Settled())
	assert.True(t, Loss.Settled())
	assert.False(t, Pending.Settled())
	assert.False(t, Push.Settled())
	assert.False(t, Void.Settled())
}

func TestResultJSON(t *testing.T) {
	var body struct {
		Result Result `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"result":"Loss"}`), &body))
	assert.Equal(t, Loss, body.Result)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":"loss"}`, string(out))
}
