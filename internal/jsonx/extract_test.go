package jsonx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomSenseAi/internal/fault"
)

type sample struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func TestExtract_FencedPayload(t *testing.T) {
	raw := "Here is the layout you asked for:\n```json\n{\"name\": \"living room\", \"items\": [\"sofa\", \"rug\"]}\n```\nLet me know if you need more."

	var out sample
	require.NoError(t, Extract(raw, &out))
	assert.Equal(t, "living room", out.Name)
	assert.Equal(t, []string{"sofa", "rug"}, out.Items)
}

func TestExtract_TrailingCommas(t *testing.T) {
	raw := `{"name": "studio", "items": ["desk", "lamp",], }`

	var out sample
	require.NoError(t, Extract(raw, &out))
	assert.Equal(t, "studio", out.Name)
	assert.Equal(t, []string{"desk", "lamp"}, out.Items)
}

func TestExtract_SurroundingProse(t *testing.T) {
	raw := `Sure! The analysis is {"name": "loft", "items": []} and that's all.`

	var out sample
	require.NoError(t, Extract(raw, &out))
	assert.Equal(t, "loft", out.Name)
}

func TestExtract_RepairPass(t *testing.T) {
	// Unquoted keys survive only through the repair retry.
	raw := `{name: "den", items: ["shelf"]}`

	var out sample
	require.NoError(t, Extract(raw, &out))
	assert.Equal(t, "den", out.Name)
	assert.Equal(t, []string{"shelf"}, out.Items)
}

func TestExtract_Garbage(t *testing.T) {
	var out sample
	err := Extract("I could not find anything in the image.", &out)
	require.Error(t, err)

	var parseErr *fault.UnparsableError
	require.True(t, errors.As(err, &parseErr))
	assert.NotEmpty(t, parseErr.Payload)
}

func TestSanitize_OutermostObject(t *testing.T) {
	raw := "noise before { \"a\": { \"b\": 1 } } noise after"
	assert.Equal(t, `{ "a": { "b": 1 } }`, Sanitize(raw))
}
