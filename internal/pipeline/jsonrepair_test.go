package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelArray_Direct(t *testing.T) {
	items, step, err := ParseModelArray(`[{"sentiment": "positive"}, {"sentiment": "negative"}]`)

	require.NoError(t, err)
	assert.Equal(t, ParseDirect, step)
	require.Len(t, items, 2)
	assert.Equal(t, "positive", items[0]["sentiment"])
}

func TestParseModelArray_CodeFence(t *testing.T) {
	raw := "```json\n[{\"sentiment\": \"neutral\"}]\n```"

	items, step, err := ParseModelArray(raw)

	require.NoError(t, err)
	assert.Equal(t, ParseDirect, step)
	require.Len(t, items, 1)
}

func TestParseModelArray_TrailingComma(t *testing.T) {
	items, step, err := ParseModelArray(`[{"sentiment": "positive"},]`)

	require.NoError(t, err)
	assert.Equal(t, ParseRepair, step)
	require.Len(t, items, 1)
}

func TestParseModelArray_Truncated(t *testing.T) {
	// Mid-element truncation, as when the model hits its token limit.
	raw := `[{"sentiment": "positive", "insights": "good"}, {"sentiment": "nega`

	items, step, err := ParseModelArray(raw)

	require.NoError(t, err)
	assert.Equal(t, ParseRepair, step)
	require.Len(t, items, 1)
	assert.Equal(t, "positive", items[0]["sentiment"])
}

func TestParseModelArray_ProseWrapped(t *testing.T) {
	raw := `Here is the analysis you asked for:

[{"sentiment": "negative", "insights": "complaint"}]

Let me know if you need anything else.`

	items, step, err := ParseModelArray(raw)

	require.NoError(t, err)
	assert.Equal(t, ParseExtract, step)
	require.Len(t, items, 1)
	assert.Equal(t, "negative", items[0]["sentiment"])
}

func TestParseModelArray_Unrecoverable(t *testing.T) {
	_, _, err := ParseModelArray("I could not analyze these mentions, sorry.")
	assert.Error(t, err)
}

func TestRepairJSON_BalancesBrackets(t *testing.T) {
	repaired := repairJSON(`[{"a": {"b": 1}`)
	items, err := parseArray(repaired)

	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestTruncateToLastElement(t *testing.T) {
	out, ok := truncateToLastElement(`[{"a": 1}, {"b": 2}, {"c"`)

	require.True(t, ok)
	assert.Equal(t, `[{"a": 1}, {"b": 2}]`, out)
}

func TestTruncateToLastElement_NoCompleteElement(t *testing.T) {
	_, ok := truncateToLastElement(`[{"a": `)
	assert.False(t, ok)
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"No fence", `[1]`, `[1]`},
		{"Fence with language", "```json\n[1]\n```", "[1]"},
		{"Fence without language", "```\n[1]\n```", "[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripCodeFences(tt.in))
		})
	}
}
