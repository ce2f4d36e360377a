package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "acme corp", NormalizeKey("  Acme Corp\t"))
	assert.Equal(t, "", NormalizeKey("   "))
	assert.Equal(t, NormalizeKey("GLOBEX"), NormalizeKey("globex "))
}

func TestClassificationResult_Stage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		prov Provenance
		want int
	}{
		{"deterministic", Deterministic{Rule: "company_suffix"}, 0},
		{"search grounded", SearchGrounded{URL: "https://x"}, 1},
		{"model batch", ModelBatch{Label: "company"}, 2},
		{"fail open", FailOpen{}, 3},
		{"missing", nil, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ClassificationResult{Provenance: tt.prov}.Stage())
		})
	}
}

func TestClassificationResult_ProfileURL(t *testing.T) {
	t.Parallel()

	company := ClassificationResult{
		Type:       ClassificationCompany,
		Provenance: SearchGrounded{URL: "https://www.linkedin.com/company/acme", Similarity: 1},
	}
	assert.Equal(t, "https://www.linkedin.com/company/acme", company.ProfileURL())

	personal := ClassificationResult{
		Type:       ClassificationSkip,
		Provenance: SearchGrounded{URL: "https://www.linkedin.com/in/jane"},
	}
	assert.Empty(t, personal.ProfileURL())

	assert.Empty(t, ClassificationResult{Type: ClassificationCompany, Provenance: FailOpen{}}.ProfileURL())
}

func TestClassificationResult_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	results := []ClassificationResult{
		{Type: ClassificationSkip, Reason: "numeric-only name", Provenance: Deterministic{Rule: "numeric"}},
		{Type: ClassificationCompany, Reason: "profile match", Provenance: SearchGrounded{URL: "https://www.linkedin.com/company/acme", Similarity: 0.75}},
		{Type: ClassificationEnclosed, Reason: "model", Provenance: ModelBatch{Label: "enclosed", Confidence: 0.9}},
		{Type: ClassificationCompany, Reason: "fail-open default", Provenance: FailOpen{}, LowConfidence: true},
	}
	for _, want := range results {
		raw, err := json.Marshal(want)
		require.NoError(t, err)

		var got ClassificationResult
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, want, got)
	}
}

func TestClassificationResult_MarshalShape(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(ClassificationResult{
		Type:       ClassificationCompany,
		Reason:     "profile match",
		Provenance: SearchGrounded{URL: "https://www.linkedin.com/company/acme", Similarity: 1},
	})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "company", m["type"])
	assert.Equal(t, float64(1), m["stage"])
	assert.Equal(t, "https://www.linkedin.com/company/acme", m["profileUrl"])
	prov, ok := m["provenance"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "search_grounded", prov["kind"])
	assert.NotContains(t, m, "lowConfidence")
}

func TestClassificationResult_UnmarshalStageOnly(t *testing.T) {
	t.Parallel()

	var r ClassificationResult
	require.NoError(t, json.Unmarshal([]byte(`{"type":"company","reason":"legacy","stage":1,"profileUrl":"https://www.linkedin.com/company/acme"}`), &r))
	assert.Equal(t, 1, r.Stage())
	assert.Equal(t, "https://www.linkedin.com/company/acme", r.ProfileURL())

	require.NoError(t, json.Unmarshal([]byte(`{"type":"skip","stage":0}`), &r))
	assert.Equal(t, Deterministic{}, r.Provenance)
}

func TestClassificationResult_UnmarshalErrors(t *testing.T) {
	t.Parallel()

	var r ClassificationResult
	assert.Error(t, json.Unmarshal([]byte(`{"type":"company","provenance":{"kind":"psychic"}}`), &r))
	assert.Error(t, json.Unmarshal([]byte(`{"type":`), &r))
}
