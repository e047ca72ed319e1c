package remote

import (
	"context"
	"errors"
	"time"

	"github.com/google/go-github/v84/github"
	"golang.org/x/time/rate"
)

// Repository is one entry of an account scan.
type Repository struct {
	Owner       string
	Name        string
	Description string
	Private     bool
	UpdatedAt   time.Time
}

// Scanner walks the authenticated account's repositories page by page with
// sequential pacing between requests. It is decoupled from the agent
// orchestrator: scans never go through the approval gate.
type Scanner struct {
	gh       *github.Client
	limiter  *rate.Limiter
	pageSize int
}

// NewScanner creates a scanner over the same client the adapter uses.
// requestDelay is the minimum spacing between page fetches.
func NewScanner(client *Client, pageSize int, requestDelay time.Duration) *Scanner {
	if pageSize <= 0 {
		pageSize = 50
	}
	limit := rate.Inf
	if requestDelay > 0 {
		limit = rate.Every(requestDelay)
	}
	return &Scanner{
		gh:       client.GitHub(),
		limiter:  rate.NewLimiter(limit, 1),
		pageSize: pageSize,
	}
}

// Repositories lists the account's repositories. When GitHub signals a rate
// limit mid-scan, the repositories collected so far are returned with a nil
// error rather than discarding partial progress.
func (s *Scanner) Repositories(ctx context.Context) ([]Repository, error) {
	var repos []Repository

	opts := &github.RepositoryListByAuthenticatedUserOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: s.pageSize},
	}

	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return repos, err
		}

		page, resp, err := s.gh.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			if isRateLimit(err) {
				remoteLog.Warn("rate limited after %d repositories, returning partial results", len(repos))
				return repos, nil
			}
			return repos, mapError(err, "")
		}

		for _, r := range page {
			repos = append(repos, Repository{
				Owner:       r.GetOwner().GetLogin(),
				Name:        r.GetName(),
				Description: r.GetDescription(),
				Private:     r.GetPrivate(),
				UpdatedAt:   r.GetUpdatedAt().Time,
			})
		}

		if resp == nil || resp.NextPage == 0 {
			return repos, nil
		}
		opts.Page = resp.NextPage
	}
}

func isRateLimit(err error) bool {
	var rle *github.RateLimitError
	var arle *github.AbuseRateLimitError
	return errors.As(err, &rle) || errors.As(err, &arle)
}
