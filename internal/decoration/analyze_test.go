package decoration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomSenseAi/internal/llm"
)

type scriptedModel struct {
	reply string
	err   error
	calls int
}

func (m *scriptedModel) Complete(_ context.Context, _ llm.Request) (string, error) {
	m.calls++
	return m.reply, m.err
}

const diffReply = `Comparing the two images, the following was added:
- 2 pumpkin lanterns on the side table
- Stretchy spider web draped over the bookshelf
- A string light garland along the ceiling`

func TestAnalyze_ParsesItemsFromProse(t *testing.T) {
	analyzer := NewAnalyzer(&scriptedModel{reply: diffReply}, nil)

	result, err := analyzer.Analyze(context.Background(), "aGVsbG8=", "d29ybGQ=", "halloween")
	require.NoError(t, err)

	require.NotEmpty(t, result.Products)
	assert.Equal(t, "halloween", result.OverallTheme)
	assert.Equal(t, []string{"black", "orange", "white", "gray"}, result.ColorScheme)

	categories := make(map[string]bool)
	for _, p := range result.Products {
		categories[p.Category] = true
		assert.NotEmpty(t, p.SearchTerms)
	}
	assert.True(t, categories["pumpkins"])
	assert.True(t, categories["webbing"])
}

func TestAnalyze_QuantityExtraction(t *testing.T) {
	analyzer := NewAnalyzer(&scriptedModel{reply: "- 12 bat cutout decorations for the wall"}, nil)

	result, err := analyzer.Analyze(context.Background(), "a", "b", "halloween")
	require.NoError(t, err)

	require.Len(t, result.Products, 1)
	assert.Equal(t, 12, result.Products[0].Quantity)
	assert.Equal(t, "bats", result.Products[0].Category)
	assert.Equal(t, 12, result.EstimatedTotalItems)
}

func TestAnalyze_DefaultListWhenNothingRecognized(t *testing.T) {
	analyzer := NewAnalyzer(&scriptedModel{reply: "The images look fairly similar to me."}, nil)

	result, err := analyzer.Analyze(context.Background(), "a", "b", "christmas")
	require.NoError(t, err)

	require.Len(t, result.Products, 5)
	assert.Equal(t, "christmas Spider Web Decoration", result.Products[0].Name)
	assert.Equal(t, []string{"varies"}, result.ColorScheme)
	assert.Equal(t, 28, result.EstimatedTotalItems)
}

func TestAnalyze_FallbackModel(t *testing.T) {
	primary := &scriptedModel{err: errors.New("provider down")}
	fallback := &scriptedModel{reply: "- garland across the mantel"}
	analyzer := NewAnalyzer(primary, fallback)

	result, err := analyzer.Analyze(context.Background(), "a", "b", "halloween")
	require.NoError(t, err)

	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "garland", result.Products[0].Category)
}

func TestAnalyze_BothModelsDown(t *testing.T) {
	primary := &scriptedModel{err: errors.New("primary down")}
	fallback := &scriptedModel{err: errors.New("fallback down")}
	analyzer := NewAnalyzer(primary, fallback)

	_, err := analyzer.Analyze(context.Background(), "a", "b", "halloween")
	require.Error(t, err)
}

func TestAnalyze_NotConfigured(t *testing.T) {
	analyzer := NewAnalyzer(nil, nil)
	assert.False(t, analyzer.Configured())

	_, err := analyzer.Analyze(context.Background(), "a", "b", "halloween")
	require.Error(t, err)
}

func TestSplitImageData(t *testing.T) {
	mime, data := splitImageData("data:image/jpeg;base64,Zm9v")
	assert.Equal(t, "image/jpeg", mime)
	assert.Equal(t, "Zm9v", data)

	mime, data = splitImageData("Zm9v")
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, "Zm9v", data)
}
