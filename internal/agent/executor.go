package agent

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	hperrors "github.com/hubpilot/hubpilot/internal/errors"
	"github.com/hubpilot/hubpilot/internal/logger"
	"github.com/hubpilot/hubpilot/internal/remote"
	"github.com/hubpilot/hubpilot/internal/tools"
	"github.com/hubpilot/hubpilot/internal/workspace"
)

var execLog = logger.WithPrefix("EXEC")

// Result is the outcome of one tool execution. Execute never returns an
// error: every failure is encoded into Text so it can be threaded back into
// the conversation as data the engine can recover from.
type Result struct {
	Text    string
	IsError bool
	Mutated bool
}

// Executor maps approved tool invocations onto remote repository calls. It
// is the only caller of mutating remote operations, and the owner of the
// mutation counter external observers use to invalidate cached views.
type Executor struct {
	remote       remote.API
	mutations    atomic.Uint64
	lastMutation atomic.Int64 // unix nanos of the latest successful mutation
}

// NewExecutor creates an executor over the given remote API.
func NewExecutor(api remote.API) *Executor {
	return &Executor{remote: api}
}

// Mutations returns the monotonic mutation counter. It advances exactly once
// per successful mutating call and never on failure or read-only tools.
func (e *Executor) Mutations() uint64 {
	return e.mutations.Load()
}

// LastMutationAt returns when the counter last advanced (zero time if never).
func (e *Executor) LastMutationAt() time.Time {
	nanos := e.lastMutation.Load()
	if nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanos)
}

func (e *Executor) recordMutation() {
	e.mutations.Add(1)
	e.lastMutation.Store(time.Now().UnixNano())
}

// Execute runs one invocation against the remote repository.
func (e *Executor) Execute(ctx context.Context, inv ToolInvocation, state workspace.State) Result {
	execLog.Debug("executing %s %v", inv.Name, inv.Args)

	switch inv.Name {
	case tools.ListFiles:
		return e.listFiles(ctx, inv.Args, state)
	case tools.ReadFile:
		return e.readFile(ctx, inv.Args, state)
	case tools.CreateOrUpdateFile:
		return e.createOrUpdateFile(ctx, inv.Args, state)
	case tools.ReplaceInFile:
		return e.replaceInFile(ctx, inv.Args, state)
	case tools.DeleteFile:
		return e.deleteFile(ctx, inv.Args, state)
	default:
		return fail(fmt.Errorf("unknown tool: %q", inv.Name))
	}
}

// fail encodes an error into a Result.
func fail(err error) Result {
	return Result{Text: "Error: " + hperrors.GetUserMessage(err), IsError: true}
}

// resolveTarget applies the shared inference rule: explicit args win,
// otherwise the open repository fills in owner and repo. Unresolved targets
// fail before any remote call is attempted.
func resolveTarget(args map[string]any, state workspace.State) (owner, repo string, err error) {
	owner = stringArg(args, "owner")
	if owner == "" {
		owner = state.Repository.Owner
	}
	repo = stringArg(args, "repo")
	if repo == "" {
		repo = state.Repository.Name
	}
	if owner == "" || repo == "" {
		return "", "", hperrors.ToolResolution("owner/repo")
	}
	return owner, repo, nil
}

// resolvePath infers the path argument: explicit arg, then the current
// browsing path, then the repository root.
func resolvePath(args map[string]any, state workspace.State) string {
	if path, ok := args["path"]; ok {
		if s, ok := path.(string); ok {
			return s
		}
	}
	if state.Path != "" {
		return state.Path
	}
	return ""
}

func stringArg(args map[string]any, name string) string {
	if v, ok := args[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// requireArg extracts a required string argument.
func requireArg(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok {
		return "", fmt.Errorf("missing required argument: %s", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %s must be a string", name)
	}
	return s, nil
}

func (e *Executor) listFiles(ctx context.Context, args map[string]any, state workspace.State) Result {
	owner, repo, err := resolveTarget(args, state)
	if err != nil {
		return fail(err)
	}
	path := resolvePath(args, state)

	node, err := e.remote.GetContent(ctx, owner, repo, path)
	if err != nil {
		return fail(err)
	}

	if !node.IsDir() {
		return Result{Text: fmt.Sprintf("[file] %s", node.File.Path)}
	}
	if len(node.Entries) == 0 {
		return Result{Text: "(empty directory)"}
	}

	var b strings.Builder
	for _, entry := range node.Entries {
		if entry.Type == "dir" {
			fmt.Fprintf(&b, "[dir]  %s\n", entry.Path)
		} else {
			fmt.Fprintf(&b, "[file] %s (%d bytes)\n", entry.Path, entry.Size)
		}
	}
	return Result{Text: strings.TrimRight(b.String(), "\n")}
}

func (e *Executor) readFile(ctx context.Context, args map[string]any, state workspace.State) Result {
	owner, repo, err := resolveTarget(args, state)
	if err != nil {
		return fail(err)
	}
	path, err := requireArg(args, "path")
	if err != nil {
		return fail(err)
	}

	file, res := e.fetchFile(ctx, owner, repo, path)
	if file == nil {
		return res
	}
	if file.Content == "" {
		return Result{Text: "(empty file)"}
	}
	return Result{Text: file.Content}
}

func (e *Executor) createOrUpdateFile(ctx context.Context, args map[string]any, state workspace.State) Result {
	owner, repo, err := resolveTarget(args, state)
	if err != nil {
		return fail(err)
	}
	path, err := requireArg(args, "path")
	if err != nil {
		return fail(err)
	}
	content, err := requireArg(args, "content")
	if err != nil {
		return fail(err)
	}
	message, err := requireArg(args, "message")
	if err != nil {
		return fail(err)
	}

	// Read first to discover an existing version token: absence means
	// create, presence means update with that token.
	sha := ""
	node, err := e.remote.GetContent(ctx, owner, repo, path)
	switch {
	case err == nil:
		if node.IsDir() {
			return fail(fmt.Errorf("%s is a directory", path))
		}
		sha = node.File.SHA
	case hperrors.HasCode(err, hperrors.CodeRemoteNotFound):
		// Create path.
	default:
		return fail(err)
	}

	newSHA, err := e.remote.PutContent(ctx, owner, repo, path, content, sha, message)
	if err != nil {
		return fail(err)
	}
	e.recordMutation()

	if sha == "" {
		return Result{Text: fmt.Sprintf("Created %s (version %s)", path, newSHA), Mutated: true}
	}
	return Result{Text: fmt.Sprintf("Updated %s (version %s)", path, newSHA), Mutated: true}
}

func (e *Executor) replaceInFile(ctx context.Context, args map[string]any, state workspace.State) Result {
	owner, repo, err := resolveTarget(args, state)
	if err != nil {
		return fail(err)
	}
	path, err := requireArg(args, "path")
	if err != nil {
		return fail(err)
	}
	search, err := requireArg(args, "search")
	if err != nil {
		return fail(err)
	}
	replace, err := requireArg(args, "replace")
	if err != nil {
		return fail(err)
	}
	message, err := requireArg(args, "message")
	if err != nil {
		return fail(err)
	}

	file, res := e.fetchFile(ctx, owner, repo, path)
	if file == nil {
		return res
	}

	// Exact substring match only. A fuzzy match could corrupt unrelated
	// code, so a miss fails fast before anything is written.
	count := strings.Count(file.Content, search)
	if count == 0 {
		return fail(hperrors.PatchMismatch(path))
	}

	updated := strings.ReplaceAll(file.Content, search, replace)
	newSHA, err := e.remote.PutContent(ctx, owner, repo, path, updated, file.SHA, message)
	if err != nil {
		return fail(err)
	}
	e.recordMutation()

	plural := ""
	if count != 1 {
		plural = "s"
	}
	return Result{Text: fmt.Sprintf("Replaced %d occurrence%s in %s (version %s)", count, plural, path, newSHA), Mutated: true}
}

func (e *Executor) deleteFile(ctx context.Context, args map[string]any, state workspace.State) Result {
	owner, repo, err := resolveTarget(args, state)
	if err != nil {
		return fail(err)
	}
	path, err := requireArg(args, "path")
	if err != nil {
		return fail(err)
	}
	message, err := requireArg(args, "message")
	if err != nil {
		return fail(err)
	}

	// Resolve the version token with a read; deleting needs the current one.
	// Binary files are deletable: only the token matters, not the content.
	file, res := e.fetchHandle(ctx, owner, repo, path)
	if file == nil {
		return res
	}

	if err := e.remote.DeleteContent(ctx, owner, repo, path, file.SHA, message); err != nil {
		return fail(err)
	}
	e.recordMutation()

	return Result{Text: fmt.Sprintf("Deleted %s", path), Mutated: true}
}

// fetchFile reads a path expecting a text file. On any problem it returns a
// nil file and the Result to hand back.
func (e *Executor) fetchFile(ctx context.Context, owner, repo, path string) (*remote.File, Result) {
	file, res := e.fetchHandle(ctx, owner, repo, path)
	if file == nil {
		return nil, res
	}
	if file.IsBinary {
		return nil, fail(fmt.Errorf("%s is a binary file", path))
	}
	return file, Result{}
}

// fetchHandle reads a path expecting a file of any kind, binary included.
func (e *Executor) fetchHandle(ctx context.Context, owner, repo, path string) (*remote.File, Result) {
	node, err := e.remote.GetContent(ctx, owner, repo, path)
	if err != nil {
		return nil, fail(err)
	}
	if node.IsDir() {
		return nil, fail(fmt.Errorf("%s is a directory", path))
	}
	return node.File, Result{}
}
