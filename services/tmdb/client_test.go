package tmdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reelfeed/internal/fetch"
	"reelfeed/services/tmdb"
)

func newStubServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(apiKey, baseURL string) *tmdb.Client {
	fetcher := fetch.NewClient(fetch.Config{Attempts: 1, RetryDelay: time.Millisecond})
	return tmdb.NewClientWithBaseURL(apiKey, baseURL, fetcher)
}

func TestPopularParsesListResponse(t *testing.T) {
	server := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/popular" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Errorf("expected api key on request, got %q", r.URL.Query().Get("api_key"))
		}
		w.Write([]byte(`{"page":1,"results":[{"id":42,"title":"Test Movie","vote_average":7.4,"release_date":"2020-05-01","genre_ids":[18,35]}]}`))
	})

	movies, err := newTestClient("test-key", server.URL).Popular(context.Background(), 1)
	if err != nil {
		t.Fatalf("popular returned error: %v", err)
	}
	if len(movies) != 1 {
		t.Fatalf("expected one movie, got %d", len(movies))
	}
	if movies[0].ID != 42 || movies[0].Title != "Test Movie" {
		t.Fatalf("unexpected movie decoded: %+v", movies[0])
	}
	if movies[0].Year() != 2020 {
		t.Fatalf("expected year 2020, got %d", movies[0].Year())
	}
}

func TestMissingCredentialShortCircuits(t *testing.T) {
	called := false
	server := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := newTestClient("", server.URL).Popular(context.Background(), 1)
	if !errors.Is(err, tmdb.ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}
	if called {
		t.Fatalf("expected no network call without a credential")
	}
}

func TestMalformedPayloadIsDataError(t *testing.T) {
	server := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": "not a list"`))
	})

	_, err := newTestClient("test-key", server.URL).Trending(context.Background(), "week")
	if !errors.Is(err, tmdb.ErrBadPayload) {
		t.Fatalf("expected ErrBadPayload, got %v", err)
	}
}

func TestTrendingDefaultsToWeekWindow(t *testing.T) {
	var gotPath string
	server := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"results":[]}`))
	})

	if _, err := newTestClient("test-key", server.URL).Trending(context.Background(), "fortnight"); err != nil {
		t.Fatalf("trending returned error: %v", err)
	}
	if gotPath != "/trending/movie/week" {
		t.Fatalf("expected week window, got path %q", gotPath)
	}
}

func TestSimilarUsesMovieID(t *testing.T) {
	var gotPath string
	server := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"results":[{"id":7,"title":"Similar"}]}`))
	})

	movies, err := newTestClient("test-key", server.URL).Similar(context.Background(), 550)
	if err != nil {
		t.Fatalf("similar returned error: %v", err)
	}
	if gotPath != "/movie/550/similar" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if len(movies) != 1 || movies[0].Title != "Similar" {
		t.Fatalf("unexpected movies: %+v", movies)
	}
}

func TestGenreNamesJoinsKnownIDs(t *testing.T) {
	got := tmdb.GenreNames([]int{18, 35, 999999})
	if got != "Drama, Comedy" {
		t.Fatalf("expected \"Drama, Comedy\", got %q", got)
	}
}

func TestPosterURL(t *testing.T) {
	if got := tmdb.PosterURL(""); got != "" {
		t.Fatalf("expected empty poster URL, got %q", got)
	}
	if got := tmdb.PosterURL("/abc.jpg"); got != "https://image.tmdb.org/t/p/w500/abc.jpg" {
		t.Fatalf("unexpected poster URL %q", got)
	}
}
