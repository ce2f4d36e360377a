package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```", `[1,2]`},
		{"inline fence", "```{\"a\":1}```", `{"a":1}`},
		{"whitespace", "  \n{\"a\":1}\n ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}

func TestCleanJSONObject(t *testing.T) {
	assert.Equal(t, `{"industry":"Software"}`, CleanJSONObject("Here you go:\n```json\n{\"industry\":\"Software\"}\n```"))
	assert.Equal(t, `{"a":{"b":1}}`, CleanJSONObject(`prefix {"a":{"b":1}} suffix`))
	assert.Empty(t, CleanJSONObject("I don't know this company."))
	assert.Empty(t, CleanJSONObject("} backwards {"))
}

func TestCleanJSONArray(t *testing.T) {
	assert.Equal(t, `[{"index":1}]`, CleanJSONArray("```json\n[{\"index\":1}]\n```"))
	assert.Equal(t, `[]`, CleanJSONArray("Result: []"))
	assert.Empty(t, CleanJSONArray(`{"index":1}`))
}

func TestNew_UnconfiguredReturnsNil(t *testing.T) {
	g, err := New(context.Background(), ProviderConfig{Provider: ProviderAnthropic})
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestNew_SelectsProvider(t *testing.T) {
	g, err := New(context.Background(), ProviderConfig{Provider: "anthropic", APIKey: "k", Model: "claude-haiku-4-5-20251001"})
	require.NoError(t, err)
	assert.IsType(t, &Anthropic{}, g)

	g, err = New(context.Background(), ProviderConfig{Provider: "OpenAI", APIKey: "k", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, g)

	_, err = New(context.Background(), ProviderConfig{Provider: "cohere", APIKey: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}
