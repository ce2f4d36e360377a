package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/classify"
	"github.com/sells-group/prospect-cli/internal/icp"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/search"
)

type mockEnricher struct {
	mock.Mock
}

func (m *mockEnricher) Enrich(ctx context.Context, companyName, knownProfileURL, industryHint string) *model.EnrichmentResult {
	args := m.Called(ctx, companyName, knownProfileURL, industryHint)
	res, _ := args.Get(0).(*model.EnrichmentResult)
	return res
}

func newTestServer(t *testing.T, enricher Enricher) *httptest.Server {
	t.Helper()
	opts := classify.DefaultOptions()
	opts.SearchPacer = nil
	opts.BatchPacer = nil
	srv := New(
		classify.New(nil, search.DefaultStrategy(), nil, opts),
		enricher,
		icp.New(nil, icp.DefaultOptions()),
		Options{DefaultSettings: icp.DefaultSettings(), MaxInputs: 3},
	)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestClassify(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := post(t, ts.URL+"/v1/classify", `{"inputs":[
		{"companyName":"Acme Inc","firstName":"Jane","lastName":"Doe"},
		{"companyName":"Stealth Startup"},
		{"companyName":"Globex"}
	]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out ClassifyResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Results, 3)

	assert.Equal(t, model.ClassificationCompany, out.Results["acme inc"].Type)
	assert.Equal(t, 0, out.Results["acme inc"].Stage())
	assert.Equal(t, model.ClassificationEnclosed, out.Results["stealth startup"].Type)

	globex := out.Results["globex"]
	assert.Equal(t, model.ClassificationCompany, globex.Type)
	assert.Equal(t, 3, globex.Stage())
	assert.True(t, globex.LowConfidence)

	assert.Equal(t, 3, out.Stats.Total)
	assert.Equal(t, 1, out.Stats.ByStage[3])
}

func TestClassify_TooManyInputs(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := post(t, ts.URL+"/v1/classify", `{"inputs":[{},{},{},{}]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMalformedBodies(t *testing.T) {
	ts := newTestServer(t, &mockEnricher{})

	for _, path := range []string{"/v1/classify", "/v1/enrich", "/v1/score"} {
		t.Run(path, func(t *testing.T) {
			resp := post(t, ts.URL+path, `{"inputs":`)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Contains(t, body["error"], "invalid request body")
		})
	}
}

func TestEnrich(t *testing.T) {
	enricher := &mockEnricher{}
	enricher.On("Enrich", mock.Anything, "Acme Corp", "https://www.linkedin.com/company/acme", "").
		Return(&model.EnrichmentResult{
			Data:   model.CompanyEnrichmentData{Industry: "Software"},
			Source: model.SourceGrounded,
		})
	ts := newTestServer(t, enricher)

	resp := post(t, ts.URL+"/v1/enrich", `{"companyName":"Acme Corp","profileUrl":"https://www.linkedin.com/company/acme"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out EnrichResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotNil(t, out.Result)
	assert.Equal(t, "Software", out.Result.Data.Industry)
	assert.Equal(t, model.SourceGrounded, out.Result.Source)
	enricher.AssertExpectations(t)
}

func TestEnrich_NoData(t *testing.T) {
	enricher := &mockEnricher{}
	enricher.On("Enrich", mock.Anything, "Nobody LLC", "", "").Return(nil)
	ts := newTestServer(t, enricher)

	resp := post(t, ts.URL+"/v1/enrich", `{"companyName":"Nobody LLC"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.Equal(t, "null", string(raw["result"]))
}

func TestEnrich_MissingName(t *testing.T) {
	ts := newTestServer(t, &mockEnricher{})

	resp := post(t, ts.URL+"/v1/enrich", `{"companyName":"  "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEnrich_NotConfigured(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := post(t, ts.URL+"/v1/enrich", `{"companyName":"Acme"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestScore(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := post(t, ts.URL+"/v1/score", `{
		"enrichment":{"industry":"Computer Software"},
		"settings":{"targetIndustries":["software"]},
		"label":"Acme"
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out ScoreResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, model.IcpVeryHigh, out.Score)
	assert.Equal(t, "Acme", out.Breakdown.Label)
	assert.InDelta(t, 1.0, out.Breakdown.Composite, 1e-9)
	assert.Equal(t, float64(icp.DefaultQuantitativeWeightPercent), out.Breakdown.QuantitativeWeightPercent)
	assert.False(t, out.Breakdown.HasQualitative)
}

func TestScore_DefaultSettingsAreNeutral(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := post(t, ts.URL+"/v1/score", `{"enrichment":{"industry":"Retail"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out ScoreResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Breakdown.QuantitativeNeutral)
	assert.Equal(t, model.IcpHigh, out.Score)
}

func TestCORSPreflight(t *testing.T) {
	srv := New(nil, nil, nil, Options{AllowedOrigins: []string{"https://app.example.com"}})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/v1/score", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}
