// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/evidence-review/internal/httputil"
	"github.com/pdiddy/evidence-review/internal/pubmed"
	"github.com/pdiddy/evidence-review/internal/summarize"
	"github.com/pdiddy/evidence-review/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

const twoArticleXML = `<PubmedArticleSet>
<PubmedArticle><MedlineCitation><PMID>111</PMID><Article>
  <ArticleTitle>T1</ArticleTitle>
  <Abstract><AbstractText>First abstract.</AbstractText></Abstract>
</Article></MedlineCitation>
<PubmedData><ArticleIdList><ArticleId IdType="doi">10.1000/xyz</ArticleId></ArticleIdList></PubmedData>
</PubmedArticle>
<PubmedArticle><MedlineCitation><PMID>222</PMID><Article>
  <Abstract><AbstractText>Second abstract.</AbstractText></Abstract>
</Article></MedlineCitation></PubmedArticle>
</PubmedArticleSet>`

// fakeClient is a scripted LiteratureClient.
type fakeClient struct {
	ids         []string
	body        string
	searchErrs  []error // returned in order, then nil
	fetchErr    error
	searchCalls atomic.Int32
	fetchCalls  atomic.Int32
	gotQuery    string
	gotLimit    int
}

func (f *fakeClient) Search(_ context.Context, q string, limit int) ([]string, error) {
	n := int(f.searchCalls.Add(1))
	f.gotQuery, f.gotLimit = q, limit
	if n <= len(f.searchErrs) {
		return nil, f.searchErrs[n-1]
	}
	return f.ids, nil
}

func (f *fakeClient) Fetch(_ context.Context, ids []string) ([]byte, error) {
	f.fetchCalls.Add(1)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return []byte(f.body), nil
}

// fakeSummarizer records the abstracts it was asked to summarize.
type fakeSummarizer struct {
	mu   sync.Mutex
	seen []string
	out  string
}

func (f *fakeSummarizer) Summarize(_ context.Context, abstract string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, abstract)
	if f.out != "" {
		return f.out
	}
	return "syn: " + abstract
}

func emptyPICO() types.ResearchQuestion {
	q := types.DefaultQuestion()
	q.Population, q.Intervention, q.Comparison, q.Outcome = "", "", "", ""
	return q
}

// --- End-to-end scenarios ---

func TestRunEmptyPICOSkipsSearch(t *testing.T) {
	fc := &fakeClient{ids: []string{"1"}}
	p := New(types.DefaultPipelineConfig(), WithClient(fc))

	res, err := p.Run(context.Background(), emptyPICO())
	require.NoError(t, err)

	assert.Equal(t, "", res.Query)
	assert.Equal(t, int32(0), fc.searchCalls.Load())
	assert.Empty(t, res.Report.Articles)
	assert.NotEmpty(t, res.Report.PromptText)
	assert.Equal(t, StatePromptOnly, res.State)
	assert.NotEmpty(t, res.Notices)
}

func TestRunTwoArticlesSecondWithoutTitle(t *testing.T) {
	fc := &fakeClient{ids: []string{"111", "222"}, body: twoArticleXML}
	p := New(types.DefaultPipelineConfig(), WithClient(fc))

	res, err := p.Run(context.Background(), types.DefaultQuestion())
	require.NoError(t, err)

	require.Len(t, res.Report.Articles, 2)
	assert.Equal(t, "T1", res.Report.Articles[0].Title)
	assert.Equal(t, types.NoTitle, res.Report.Articles[1].Title)
	assert.Equal(t, StatePromptWithArticles, res.State)
	assert.Equal(t, int32(1), fc.fetchCalls.Load())
	assert.Equal(t, types.DefaultMaxResults, fc.gotLimit)
	assert.Contains(t, fc.gotQuery, "(SGLT2 inhibitors)")
}

func TestRunSkipsSummarizerForMissingAbstract(t *testing.T) {
	body := `<PubmedArticleSet>
<PubmedArticle><MedlineCitation><PMID>1</PMID><Article><ArticleTitle>With</ArticleTitle>
<Abstract><AbstractText>Has text.</AbstractText></Abstract></Article></MedlineCitation></PubmedArticle>
<PubmedArticle><MedlineCitation><PMID>2</PMID><Article><ArticleTitle>Without</ArticleTitle>
</Article></MedlineCitation></PubmedArticle>
</PubmedArticleSet>`
	fc := &fakeClient{ids: []string{"1", "2"}, body: body}
	fs := &fakeSummarizer{}
	p := New(types.DefaultPipelineConfig(), WithClient(fc), WithSummarizer(fs))

	res, err := p.Run(context.Background(), types.DefaultQuestion())
	require.NoError(t, err)
	require.Len(t, res.Report.Articles, 2)

	assert.Equal(t, []string{"Has text."}, fs.seen)
	require.NotNil(t, res.Report.Articles[0].Synopsis)
	assert.Equal(t, "syn: Has text.", *res.Report.Articles[0].Synopsis)
	assert.Equal(t, types.NoAbstract, res.Report.Articles[1].Abstract)
	assert.Nil(t, res.Report.Articles[1].Synopsis)
	assert.Empty(t, res.Notices)
}

// --- Degradation ---

func TestRunSearchFailureDegradesToPrompt(t *testing.T) {
	fc := &fakeClient{searchErrs: []error{&pubmed.RetrievalError{Endpoint: "esearch.fcgi", StatusCode: http.StatusUnauthorized}}}
	p := New(types.DefaultPipelineConfig(), WithClient(fc))

	res, err := p.Run(context.Background(), types.DefaultQuestion())
	require.NoError(t, err)

	assert.Equal(t, StatePromptOnly, res.State)
	assert.Empty(t, res.Report.Articles)
	assert.NotEmpty(t, res.Report.PromptText)
	require.Len(t, res.Notices, 1)
	assert.Contains(t, res.Notices[0], "Literature search failed")
	assert.Contains(t, res.Notices[0], "HTTP 401")
	assert.Equal(t, int32(0), fc.fetchCalls.Load())
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestRunNoticesOmitAPIKey(t *testing.T) {
	const key = "SUPERSECRETKEY123"

	tests := []struct {
		name string
		rt   roundTripFunc
		want string
	}{
		{"transport error", func(r *http.Request) (*http.Response, error) {
			return nil, context.DeadlineExceeded
		}, "esearch.fcgi could not be reached"},
		{"http status", func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusBadGateway,
				Body:       io.NopCloser(strings.NewReader("bad gateway for " + r.URL.String())),
				Header:     make(http.Header),
				Request:    r,
			}, nil
		}, "esearch.fcgi returned HTTP 502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := types.DefaultPipelineConfig()
			cfg.Literature.APIKey = key
			client := pubmed.NewClient(cfg.Literature, nil).WithHTTPClient(&http.Client{Transport: tt.rt})
			p := New(cfg, WithClient(client))

			res, err := p.Run(context.Background(), types.DefaultQuestion())
			require.NoError(t, err)
			require.Len(t, res.Notices, 1)
			assert.Contains(t, res.Notices[0], tt.want)
			for _, n := range res.Notices {
				assert.NotContains(t, n, key)
				assert.NotContains(t, n, "api_key")
			}
		})
	}
}

func TestRunFetchFailureDegradesToPrompt(t *testing.T) {
	fc := &fakeClient{ids: []string{"1"}, fetchErr: &pubmed.RetrievalError{Endpoint: "efetch.fcgi", StatusCode: 500}}
	p := New(types.DefaultPipelineConfig(), WithClient(fc))

	res, err := p.Run(context.Background(), types.DefaultQuestion())
	require.NoError(t, err)
	assert.Equal(t, StatePromptOnly, res.State)
	require.Len(t, res.Notices, 1)
	assert.Contains(t, res.Notices[0], "Fetching article details failed")
}

func TestRunParseErrorDegradesToPrompt(t *testing.T) {
	fc := &fakeClient{ids: []string{"1"}, body: "<PubmedArticleSet><PubmedArticle>"}
	p := New(types.DefaultPipelineConfig(), WithClient(fc))

	res, err := p.Run(context.Background(), types.DefaultQuestion())
	require.NoError(t, err)
	assert.Equal(t, StatePromptOnly, res.State)
	assert.NotEmpty(t, res.Report.PromptText)
	require.Len(t, res.Notices, 1)
	assert.Contains(t, res.Notices[0], "could not be read")
}

func TestRunZeroHits(t *testing.T) {
	fc := &fakeClient{}
	p := New(types.DefaultPipelineConfig(), WithClient(fc))

	res, err := p.Run(context.Background(), types.DefaultQuestion())
	require.NoError(t, err)
	assert.Equal(t, StatePromptOnly, res.State)
	assert.Equal(t, int32(0), fc.fetchCalls.Load())
	assert.Equal(t, []string{"No articles matched the query."}, res.Notices)
}

func TestRunWithoutClientIsPromptOnly(t *testing.T) {
	p := New(types.DefaultPipelineConfig())

	res, err := p.Run(context.Background(), types.DefaultQuestion())
	require.NoError(t, err)
	assert.Equal(t, StatePromptOnly, res.State)
	assert.NotEmpty(t, res.Query)
	assert.Empty(t, res.Notices)
	assert.NotEmpty(t, res.RunID)
}

func TestRunReportsSummaryFailures(t *testing.T) {
	fc := &fakeClient{ids: []string{"111", "222"}, body: twoArticleXML}
	fs := &fakeSummarizer{out: summarize.FailureMessage}
	p := New(types.DefaultPipelineConfig(), WithClient(fc), WithSummarizer(fs))

	res, err := p.Run(context.Background(), types.DefaultQuestion())
	require.NoError(t, err)
	assert.Equal(t, StatePromptWithArticles, res.State)
	assert.Equal(t, []string{"2 of 2 summaries could not be generated."}, res.Notices)
}

// --- Retry ---

func TestRunRetriesTransientSearchFailure(t *testing.T) {
	fc := &fakeClient{
		ids:        []string{"111", "222"},
		body:       twoArticleXML,
		searchErrs: []error{&pubmed.RetrievalError{Endpoint: "esearch.fcgi", StatusCode: http.StatusServiceUnavailable}},
	}
	cfg := types.DefaultPipelineConfig()
	cfg.Retry.MaxAttempts = 3
	cfg.Retry.BaseDelay = time.Millisecond
	p := New(cfg, WithClient(fc))

	res, err := p.Run(context.Background(), types.DefaultQuestion())
	require.NoError(t, err)
	assert.Equal(t, int32(2), fc.searchCalls.Load())
	assert.Len(t, res.Report.Articles, 2)
	assert.Empty(t, res.Notices)
}

func TestRunDoesNotRetryByDefault(t *testing.T) {
	fc := &fakeClient{searchErrs: []error{&pubmed.RetrievalError{Endpoint: "esearch.fcgi", StatusCode: http.StatusServiceUnavailable}}}
	p := New(types.DefaultPipelineConfig(), WithClient(fc))

	_, err := p.Run(context.Background(), types.DefaultQuestion())
	require.NoError(t, err)
	assert.Equal(t, int32(1), fc.searchCalls.Load())
}

// --- Errors ---

func TestRunInvalidQuestion(t *testing.T) {
	q := types.DefaultQuestion()
	q.YearLimit = 0

	_, err := New(types.DefaultPipelineConfig()).Run(context.Background(), q)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidYearLimit))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fc := &fakeClient{searchErrs: []error{&pubmed.RetrievalError{Endpoint: "esearch.fcgi", Err: context.Canceled}}}
	_, err := New(types.DefaultPipelineConfig(), WithClient(fc)).Run(ctx, types.DefaultQuestion())
	assert.ErrorIs(t, err, context.Canceled)
}

// --- Ordering and export ---

func TestRunKeepsFetchOrder(t *testing.T) {
	// The middle element has no PMID; it must stay between its neighbours.
	body := `<PubmedArticleSet>
<PubmedArticle><MedlineCitation><PMID>111</PMID><Article><ArticleTitle>A</ArticleTitle></Article></MedlineCitation></PubmedArticle>
<PubmedArticle><MedlineCitation><Article><ArticleTitle>B</ArticleTitle></Article></MedlineCitation></PubmedArticle>
<PubmedArticle><MedlineCitation><PMID>333</PMID><Article><ArticleTitle>C</ArticleTitle></Article></MedlineCitation></PubmedArticle>
</PubmedArticleSet>`
	fc := &fakeClient{ids: []string{"111", "222", "333"}, body: body}

	res, err := New(types.DefaultPipelineConfig(), WithClient(fc)).Run(context.Background(), types.DefaultQuestion())
	require.NoError(t, err)

	var titles []string
	for _, a := range res.Report.Articles {
		titles = append(titles, a.Title)
	}
	assert.Equal(t, []string{"A", "B", "C"}, titles)
}

func TestResultExport(t *testing.T) {
	fc := &fakeClient{ids: []string{"111", "222"}, body: twoArticleXML}
	res, err := New(types.DefaultPipelineConfig(), WithClient(fc)).Run(context.Background(), types.DefaultQuestion())
	require.NoError(t, err)

	b, err := res.Export()
	require.NoError(t, err)
	assert.Equal(t, StateExportReady, res.State)

	doc, err := docx.Parse(bytes.NewReader(b), int64(len(b)))
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Document.Body.Items)
}

func TestFromConfig(t *testing.T) {
	cfg := types.DefaultPipelineConfig()
	cfg.Summarizer.Backend = types.SummarizerNone
	p, err := FromConfig(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, p.client)
	assert.Nil(t, p.summarizer)

	cfg.Literature.Enabled = false
	cfg.Summarizer.Backend = types.SummarizerHuggingFace
	p, err = FromConfig(cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, p.client)
	assert.NotNil(t, p.summarizer)

	cfg.Summarizer.Backend = "nope"
	_, err = FromConfig(cfg, nil)
	assert.Error(t, err)
}
