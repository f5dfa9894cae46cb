package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/search_chat/app/search_chat/pkg/config"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/search"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/words"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Paris</title><style>body { color: red; }</style></head>
<body>
  <script>var tracking = "should not appear";</script>
  <h1>Paris</h1>
  <p>Paris is the   capital
  of France.</p>
  <noscript>enable javascript</noscript>
  <svg><text>logo</text></svg>
  <template><p>hidden template</p></template>
  <iframe src="https://ads.example"></iframe>
  <!-- a comment -->
  <ul><li>Population: 2.1 million</li></ul>
</body>
</html>`

func newTestFetcher(t *testing.T, cfg config.FetchConfig) *Fetcher {
	t.Helper()
	f, err := New(cfg)
	require.NoError(t, err)
	return f
}

func TestFetch_HeadersAndNoCookies(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		assert.Equal(t, "no-cache", r.Header.Get("Pragma"))
		assert.Empty(t, r.Header.Get("Cookie"))

		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	f := newTestFetcher(t, config.FetchConfig{UserAgent: "test-agent/1.0"})
	for i := 0; i < 2; i++ {
		_, err := f.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
}

func TestFetch_TextExtraction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	got, err := newTestFetcher(t, config.FetchConfig{}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Paris Paris is the capital of France. Population: 2.1 million", got)
	for _, hidden := range []string{"tracking", "color", "javascript", "logo", "hidden template", "comment"} {
		assert.NotContains(t, got, hidden)
	}
}

func TestFetch_TruncatesToMaxWords(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body><p>")
	for i := 0; i < 1500; i++ {
		fmt.Fprintf(&sb, "word%d ", i)
	}
	sb.WriteString("</p></body></html>")
	page := sb.String()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	got, err := newTestFetcher(t, config.FetchConfig{}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, MaxExcerptWords, words.Count(got))
	assert.True(t, strings.HasPrefix(got, "word0 word1 "))
	assert.True(t, strings.HasSuffix(got, "word999"))
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestFetcher(t, config.FetchConfig{}).Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrFetch)
}

func TestFetch_EmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><head><script>x()</script></head><body></body></html>"))
	}))
	defer srv.Close()

	got, err := newTestFetcher(t, config.FetchConfig{}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetch_Readability(t *testing.T) {
	article := `<html><head><title>Go 1.22 released</title></head><body>
<nav><a href="/">Home</a> <a href="/blog">Blog</a></nav>
<article>
<h1>Go 1.22 released</h1>
<p>The Go team is happy to announce the release of Go 1.22, which you can get by visiting the download page.
This release includes changes to for loops, where each iteration now creates new variables,
and support for range over integers. The standard library gains an enhanced routing pattern matcher.</p>
<p>Tooling improvements include better vet checks and profile-guided optimization that now devirtualizes
a larger share of calls, yielding two to fourteen percent improvements in typical programs.</p>
</article>
<footer>Copyright notice</footer>
</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(article))
	}))
	defer srv.Close()

	got, err := newTestFetcher(t, config.FetchConfig{Extractor: "readability"}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, got, "range over integers")
	assert.NotContains(t, got, "\n")
}

func TestNew_UnknownExtractor(t *testing.T) {
	_, err := New(config.FetchConfig{Extractor: "magic"})
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestFetchAll_PlaceholderOnFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<p>fine page</p>"))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	results := []search.Result{
		{Title: "Broken", URL: srv.URL + "/broken", Snippet: "snippet one"},
		{Title: "OK", URL: srv.URL + "/ok", Snippet: "snippet two"},
	}

	got, err := newTestFetcher(t, config.FetchConfig{}).FetchAll(context.Background(), results)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Broken", got[0].Title)
	assert.Equal(t, srv.URL+"/broken", got[0].Link)
	assert.Empty(t, got[0].Excerpt)
	assert.Equal(t, "fine page", got[1].Excerpt)
	assert.NotContains(t, got.Serialize(), "snippet")
}

func TestFetchAll_StrictFailsTurn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := newTestFetcher(t, config.FetchConfig{Strict: true})
	_, err := f.FetchAll(context.Background(), []search.Result{{Title: "x", URL: srv.URL}})
	assert.ErrorIs(t, err, ErrFetch)
}

func TestFetchAll_PreservesOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "<p>page %s</p>", strings.TrimPrefix(r.URL.Path, "/"))
	}))
	defer srv.Close()

	var results []search.Result
	for _, p := range []string{"c", "a", "b"} {
		results = append(results, search.Result{Title: p, URL: srv.URL + "/" + p})
	}

	got, err := newTestFetcher(t, config.FetchConfig{}).FetchAll(context.Background(), results)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"page c", "page a", "page b"}, []string{got[0].Excerpt, got[1].Excerpt, got[2].Excerpt})
}
