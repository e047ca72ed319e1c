package remote

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestScannerPaginates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		switch page {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/user/repos?page=2>; rel="next", <http://%s/user/repos?page=2>; rel="last"`, r.Host, r.Host))
			fmt.Fprint(w, `[{"name":"alpha","owner":{"login":"octocat"},"private":false},{"name":"beta","owner":{"login":"octocat"},"private":true}]`)
		case "2":
			fmt.Fprint(w, `[{"name":"gamma","owner":{"login":"octocat"},"description":"third"}]`)
		default:
			t.Errorf("unexpected page %q", page)
		}
	})

	client, _ := newTestClient(t, mux)
	scanner := NewScanner(client, 2, 0)

	repos, err := scanner.Repositories(context.Background())
	if err != nil {
		t.Fatalf("Repositories failed: %v", err)
	}

	if len(repos) != 3 {
		t.Fatalf("expected 3 repositories, got %d", len(repos))
	}
	if repos[0].Name != "alpha" || repos[0].Owner != "octocat" {
		t.Errorf("unexpected first repo: %+v", repos[0])
	}
	if !repos[1].Private {
		t.Error("expected beta to be private")
	}
	if repos[2].Description != "third" {
		t.Errorf("unexpected description: %q", repos[2].Description)
	}
}

func TestScannerPartialResultsOnRateLimit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		if page == "" || page == "1" {
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/user/repos?page=2>; rel="next"`, r.Host))
			fmt.Fprint(w, `[{"name":"alpha","owner":{"login":"octocat"}}]`)
			return
		}
		// Second page: rate limited.
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", fmt.Sprint(time.Now().Add(time.Hour).Unix()))
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"API rate limit exceeded"}`)
	})

	client, _ := newTestClient(t, mux)
	scanner := NewScanner(client, 1, 0)

	repos, err := scanner.Repositories(context.Background())
	if err != nil {
		t.Fatalf("expected partial results without error, got: %v", err)
	}
	if len(repos) != 1 || repos[0].Name != "alpha" {
		t.Errorf("expected the first page's repos, got %+v", repos)
	}
}

func TestScannerContextCancellation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	client, _ := newTestClient(t, mux)
	// Long delay forces the limiter to block; cancellation must win.
	scanner := NewScanner(client, 1, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := scanner.Repositories(ctx); err == nil {
		t.Error("expected an error from a cancelled context")
	}
}
