package remote

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/go-github/v84/github"
	"golang.org/x/oauth2"

	hperrors "github.com/hubpilot/hubpilot/internal/errors"
	"github.com/hubpilot/hubpilot/internal/logger"
)

var remoteLog = logger.WithPrefix("REMOTE")

// File is a remote file together with its version token. The SHA is the
// precondition for writes and deletes: it goes stale the instant any write
// under the same path succeeds.
type File struct {
	Path     string
	Content  string
	SHA      string
	IsBinary bool
}

// Entry is one item of a directory listing.
type Entry struct {
	Name string
	Path string
	Type string // "file" or "dir"
	Size int
}

// Node is the result of GetContent: exactly one of File or Entries is set.
type Node struct {
	File    *File
	Entries []Entry
}

// IsDir reports whether the node is a directory listing.
func (n *Node) IsDir() bool {
	return n.File == nil
}

// API is the surface of the hosting provider the core consumes. The
// concrete implementation is Client; tests substitute an in-memory fake.
type API interface {
	GetContent(ctx context.Context, owner, repo, path string) (*Node, error)
	PutContent(ctx context.Context, owner, repo, path, content, sha, message string) (newSHA string, err error)
	DeleteContent(ctx context.Context, owner, repo, path, sha, message string) error
}

// Client is a thin, stateless façade over the GitHub contents API.
type Client struct {
	gh *github.Client
}

// NewClient creates a client authenticated with the given token.
func NewClient(ctx context.Context, token string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Client{gh: github.NewClient(oauth2.NewClient(ctx, ts))}
}

// NewClientWithGitHub wraps an existing go-github client (used by tests and
// by the scanner, which shares the underlying client).
func NewClientWithGitHub(gh *github.Client) *Client {
	return &Client{gh: gh}
}

// GitHub exposes the underlying client for collaborators such as Scanner.
func (c *Client) GitHub() *github.Client {
	return c.gh
}

// GetContent fetches a file or directory listing at path.
func (c *Client) GetContent(ctx context.Context, owner, repo, path string) (*Node, error) {
	remoteLog.Debug("GetContent %s/%s/%s", owner, repo, path)

	fileContent, dirContent, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return nil, mapError(err, path)
	}

	if fileContent != nil {
		f := &File{
			Path: fileContent.GetPath(),
			SHA:  fileContent.GetSHA(),
		}
		content, decErr := fileContent.GetContent()
		if decErr != nil || !isText(content) {
			f.IsBinary = true
		} else {
			f.Content = content
		}
		return &Node{File: f}, nil
	}

	entries := make([]Entry, 0, len(dirContent))
	for _, item := range dirContent {
		entries = append(entries, Entry{
			Name: item.GetName(),
			Path: item.GetPath(),
			Type: item.GetType(),
			Size: item.GetSize(),
		})
	}
	return &Node{Entries: entries}, nil
}

// PutContent writes the full content of a file. An empty sha creates the
// file; a non-empty sha updates it, failing with a conflict when stale.
func (c *Client) PutContent(ctx context.Context, owner, repo, path, content, sha, message string) (string, error) {
	remoteLog.Debug("PutContent %s/%s/%s (sha=%q)", owner, repo, path, sha)

	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		Content: []byte(content),
	}

	var resp *github.RepositoryContentResponse
	var err error
	if sha == "" {
		resp, _, err = c.gh.Repositories.CreateFile(ctx, owner, repo, path, opts)
	} else {
		opts.SHA = github.Ptr(sha)
		resp, _, err = c.gh.Repositories.UpdateFile(ctx, owner, repo, path, opts)
	}
	if err != nil {
		return "", mapError(err, path)
	}

	return resp.Content.GetSHA(), nil
}

// DeleteContent deletes a file. The sha is required: resolve it with a read
// first when it is not already known.
func (c *Client) DeleteContent(ctx context.Context, owner, repo, path, sha, message string) error {
	remoteLog.Debug("DeleteContent %s/%s/%s (sha=%q)", owner, repo, path, sha)

	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		SHA:     github.Ptr(sha),
	}

	if _, _, err := c.gh.Repositories.DeleteFile(ctx, owner, repo, path, opts); err != nil {
		return mapError(err, path)
	}
	return nil
}

// mapError translates go-github failures into the core error taxonomy.
func mapError(err error, path string) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusNotFound:
			return hperrors.RemoteNotFound(path)
		case http.StatusConflict:
			return hperrors.RemoteConflict(path)
		case http.StatusUnauthorized:
			return hperrors.RemoteAuth()
		case http.StatusForbidden:
			return hperrors.RemoteForbidden()
		case http.StatusUnprocessableEntity:
			// GitHub reports a stale SHA on PUT as 422 with a sha message.
			if strings.Contains(strings.ToLower(ghErr.Message), "sha") {
				return hperrors.RemoteConflict(path)
			}
		}
	}
	return hperrors.RemoteFailed(err)
}

// isText reports whether decoded content looks like text rather than a
// binary blob.
func isText(content string) bool {
	if !utf8.ValidString(content) {
		return false
	}
	return !strings.ContainsRune(content, '\x00')
}
