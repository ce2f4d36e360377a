package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/search"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, req llm.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// stubSearch answers by company name found in the query.
type stubSearch struct {
	mu     sync.Mutex
	byName map[string][]search.Result
	fail   map[string]bool
	calls  int
}

func (s *stubSearch) Search(_ context.Context, query string, _ search.Options) ([]search.Result, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	for name, res := range s.byName {
		if strings.Contains(query, `"`+name+`"`) {
			return res, nil
		}
	}
	for name := range s.fail {
		if strings.Contains(query, `"`+name+`"`) {
			return nil, errors.New("search unavailable")
		}
	}
	return nil, nil
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.SearchPacer = nil
	opts.BatchPacer = nil
	opts.DualSearch = false
	return opts
}

func inputs(names ...string) []model.ClassificationInput {
	out := make([]model.ClassificationInput, len(names))
	for i, n := range names {
		out[i] = model.ClassificationInput{CompanyName: n, FirstName: "Jane", LastName: "Doe", Position: "CTO"}
	}
	return out
}

func TestClassify_OneResultPerNormalizedName(t *testing.T) {
	c := New(nil, search.DefaultStrategy(), nil, testOptions())
	res := c.Classify(context.Background(), inputs("Acme", " acme ", "ACME", "Globex Inc", "", "   "), nil)

	require.Len(t, res, 3)
	assert.Contains(t, res, "acme")
	assert.Contains(t, res, "globex inc")
	assert.Contains(t, res, "")
	for key, r := range res {
		assert.Contains(t, []int{0, 1, 2, 3}, r.Stage(), key)
	}
	assert.Equal(t, model.ClassificationSkip, res[""].Type)
	assert.Equal(t, 0, res[""].Stage())
}

func TestClassify_FailOpenWithoutProviders(t *testing.T) {
	c := New(nil, search.DefaultStrategy(), nil, testOptions())
	res := c.Classify(context.Background(), inputs("Blue Harbor"), nil)

	r := res["blue harbor"]
	assert.Equal(t, model.ClassificationCompany, r.Type)
	assert.Equal(t, 3, r.Stage())
	assert.True(t, r.LowConfidence)
	assert.Equal(t, FailOpenReason, r.Reason)
}

func TestClassify_SuffixIgnoresProviders(t *testing.T) {
	gen := &mockGenerator{}
	s := &stubSearch{}
	c := New(s, search.DefaultStrategy(), gen, testOptions())

	res := c.Classify(context.Background(), inputs("Acme Ventures"), nil)
	assert.Equal(t, model.ClassificationCompany, res["acme ventures"].Type)
	assert.Equal(t, 0, res["acme ventures"].Stage())
	assert.Equal(t, 0, s.calls)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestClassify_NoSearchRoutesToModel(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return strings.Contains(req.Prompt, `1. Company: "Blue Harbor"`)
	})).Return(`[{"index":1,"type":"company","confidence":0.9}]`, nil).Once()

	c := New(nil, search.DefaultStrategy(), gen, testOptions())
	res := c.Classify(context.Background(), inputs("Blue Harbor"), nil)

	r := res["blue harbor"]
	assert.Equal(t, model.ClassificationCompany, r.Type)
	assert.Equal(t, 2, r.Stage())
	assert.Equal(t, model.ModelBatch{Label: "company", Confidence: 0.9}, r.Provenance)
	assert.Zero(t, res.Stats().ByStage[1])
	gen.AssertExpectations(t)
}

func TestClassify_GroundedResolution(t *testing.T) {
	s := &stubSearch{byName: map[string][]search.Result{
		"Blue Harbor": {{Title: "Blue Harbor | LinkedIn", URL: "https://www.linkedin.com/company/blue-harbor", Score: 0.9}},
		"Sam Smith":   {{Title: "Sam Smith - Engineer", URL: "https://www.linkedin.com/in/samsmith", Score: 0.8}},
	}}
	c := New(s, search.DefaultStrategy(), nil, testOptions())
	res := c.Classify(context.Background(), inputs("Blue Harbor", "Sam Smith"), nil)

	bh := res["blue harbor"]
	assert.Equal(t, model.ClassificationCompany, bh.Type)
	assert.Equal(t, 1, bh.Stage())
	assert.Equal(t, "https://www.linkedin.com/company/blue-harbor", bh.ProfileURL())

	ss := res["sam smith"]
	assert.Equal(t, model.ClassificationSkip, ss.Type)
	assert.Equal(t, 1, ss.Stage())
	assert.Empty(t, ss.ProfileURL())
}

func TestClassify_SearchErrorStillReachesModel(t *testing.T) {
	s := &stubSearch{
		byName: map[string][]search.Result{
			"Globex": {{Title: "Globex | LinkedIn", URL: "https://www.linkedin.com/company/globex", Score: 0.9}},
		},
		fail: map[string]bool{"Blue Harbor": true},
	}
	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return strings.Contains(req.Prompt, "Blue Harbor") && !strings.Contains(req.Prompt, "Globex")
	})).Return("```json\n[{\"index\":1,\"type\":\"non_company\",\"confidence\":0.95}]\n```", nil).Once()

	c := New(s, search.DefaultStrategy(), gen, testOptions())
	res := c.Classify(context.Background(), inputs("Blue Harbor", "Globex"), nil)

	assert.Equal(t, 1, res["globex"].Stage())
	assert.Equal(t, model.ClassificationSkip, res["blue harbor"].Type)
	assert.Equal(t, 2, res["blue harbor"].Stage())
	assert.Equal(t, 2, s.calls)
	gen.AssertExpectations(t)
}

func TestClassify_BatchFailureFallsThrough(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("overloaded"))

	c := New(nil, search.DefaultStrategy(), gen, testOptions())
	res := c.Classify(context.Background(), inputs("Blue Harbor", "Red Oak"), nil)

	for _, key := range []string{"blue harbor", "red oak"} {
		assert.Equal(t, 3, res[key].Stage())
		assert.True(t, res[key].LowConfidence)
	}
}

func TestClassify_BatchesAndProgress(t *testing.T) {
	names := make([]string, 20)
	for i := range names {
		names[i] = fmt.Sprintf("Harbor %d North", i)
	}
	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).
		Return(`[{"index":1,"type":"company","confidence":0.8},{"index":2,"type":"company","confidence":0.5}]`, nil)

	var calls [][2]int
	c := New(nil, search.DefaultStrategy(), gen, testOptions())
	res := c.Classify(context.Background(), inputs(names...), func(cur, total int) {
		calls = append(calls, [2]int{cur, total})
	})

	gen.AssertNumberOfCalls(t, "Generate", 2)
	stats := res.Stats()
	assert.Equal(t, 20, stats.Total)
	assert.Equal(t, 2, stats.ByStage[2])
	assert.Equal(t, 18, stats.ByStage[3])
	assert.Equal(t, 18, stats.LowConfidence)

	// 20 stage 0 reports followed by 20 stage 2 reports.
	require.Len(t, calls, 40)
	assert.Equal(t, [2]int{20, 20}, calls[19])
	assert.Equal(t, [2]int{15, 20}, calls[34])
	assert.Equal(t, [2]int{20, 20}, calls[39])
}

func TestClassify_CallsAreIndependent(t *testing.T) {
	c := New(nil, search.DefaultStrategy(), nil, testOptions())
	first := c.Classify(context.Background(), inputs("Acme Inc"), nil)
	second := c.Classify(context.Background(), inputs("Globex"), nil)

	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
	assert.NotContains(t, second, "acme inc")
}

func TestParseBatchResponse(t *testing.T) {
	text := "Here you go:\n```json\n[" +
		`{"index":1,"type":"personal_name","confidence":0.9},` +
		`{"index":2,"type":"enclosed","confidence":0.7},` +
		`{"index":3,"type":"company","confidence":0.69},` +
		`{"index":4,"type":"banana","confidence":0.99},` +
		`{"index":9,"type":"company","confidence":0.99},` +
		`{"index":1,"type":"company","confidence":0.99}` +
		"]\n```"
	got := parseBatchResponse(text, 5, 0.7)

	require.Len(t, got, 2)
	assert.Equal(t, model.ClassificationSkip, got[0].Type)
	assert.Equal(t, model.ModelBatch{Label: "personal_name", Confidence: 0.9}, got[0].Provenance)
	assert.Equal(t, model.ClassificationEnclosed, got[1].Type)
	assert.NotContains(t, got, 2)
	assert.NotContains(t, got, 3)

	assert.Empty(t, parseBatchResponse("not json", 3, 0.7))
	assert.Empty(t, parseBatchResponse(`[{"index":"one"}]`, 3, 0.7))
}

func TestParseBatchResponse_SkipsMalformedEntries(t *testing.T) {
	text := `[` +
		`{"index":"3","type":"company","confidence":0.9},` +
		`{"index":3.5,"type":"company","confidence":0.9},` +
		`{"index":1,"type":"company","confidence":0.95},` +
		`{"index":2,"type":"enclosed","confidence":"high"},` +
		`{"index":2,"type":"non_company","confidence":0.8}` +
		`]`
	got := parseBatchResponse(text, 3, 0.7)

	require.Len(t, got, 2)
	assert.Equal(t, model.ClassificationCompany, got[0].Type)
	assert.Equal(t, model.ClassificationSkip, got[1].Type)
	assert.NotContains(t, got, 2)
}

func TestResolverDecide(t *testing.T) {
	r := NewResolver(&stubSearch{}, search.DefaultStrategy(), testOptions())
	company := search.Result{Title: "Acme Corp | LinkedIn", URL: "https://www.linkedin.com/company/acme", Score: 0.9}
	lowSim := search.Result{Title: "Acme Holdings International | LinkedIn", URL: "https://www.linkedin.com/company/acme-hi", Score: 0.9}
	person := search.Result{Title: "John Acme", URL: "https://www.linkedin.com/in/johnacme", Score: 0.9}
	other := search.Result{Title: "Acme Corp", URL: "https://acme.com", Score: 0.9}

	got, ok := r.decide("Acme Corp", []search.Result{other, company})
	require.True(t, ok)
	assert.Equal(t, model.ClassificationCompany, got.Type)
	assert.Equal(t, model.SearchGrounded{URL: company.URL, Similarity: 1}, got.Provenance)

	_, ok = r.decide("Acme Corp", []search.Result{lowSim})
	assert.False(t, ok)

	_, ok = r.decide("Acme Corp", []search.Result{lowSim, person})
	assert.False(t, ok)

	got, ok = r.decide("Acme Corp", []search.Result{person})
	require.True(t, ok)
	assert.Equal(t, model.ClassificationSkip, got.Type)

	_, ok = r.decide("Acme Corp", []search.Result{other})
	assert.False(t, ok)

	school := search.Result{Title: "Stanford University | LinkedIn", URL: "https://www.linkedin.com/school/stanford-university", Score: 0.9}
	alum := search.Result{Title: "J Smith", URL: "https://www.linkedin.com/in/jsmith", Score: 0.9}
	got, ok = r.decide("Stanford University", []search.Result{school, alum})
	require.True(t, ok)
	assert.Equal(t, model.ClassificationCompany, got.Type)
	assert.Equal(t, 1, got.Stage())
	assert.Equal(t, school.URL, got.ProfileURL())

	showcase := search.Result{Title: "Acme Cloud | LinkedIn", URL: "https://www.linkedin.com/showcase/acme-cloud", Score: 0.9}
	got, ok = r.decide("Acme Cloud", []search.Result{alum, showcase})
	require.True(t, ok)
	assert.Equal(t, model.ClassificationCompany, got.Type)

	mixedCase := NewResolver(&stubSearch{}, search.Strategy{ProfileDomain: "LinkedIn.com"}, testOptions())
	got, ok = mixedCase.decide("Acme Corp", []search.Result{company})
	require.True(t, ok)
	assert.Equal(t, model.ClassificationCompany, got.Type)

	_, ok = r.decide("Acme Corp", nil)
	assert.False(t, ok)
}

func TestResolver_FiltersLowRelevance(t *testing.T) {
	s := &stubSearch{byName: map[string][]search.Result{
		"Acme Corp": {{Title: "Acme Corp | LinkedIn", URL: "https://www.linkedin.com/company/acme", Score: 0.3}},
	}}
	r := NewResolver(s, search.DefaultStrategy(), testOptions())
	_, ok := r.Resolve(context.Background(), model.ClassificationInput{CompanyName: "Acme Corp"})
	assert.False(t, ok)
}

func TestResolver_DualSearch(t *testing.T) {
	s := &stubSearch{byName: map[string][]search.Result{
		"Acme Corp": {{Title: "Acme Corp | LinkedIn", URL: "https://www.linkedin.com/company/acme", Score: 0.9}},
	}}
	opts := testOptions()
	opts.DualSearch = true
	r := NewResolver(s, search.DefaultStrategy(), opts)
	got, ok := r.Resolve(context.Background(), model.ClassificationInput{CompanyName: "Acme Corp"})
	require.True(t, ok)
	assert.Equal(t, 1, got.Stage())
	assert.Equal(t, 2, s.calls)
}
