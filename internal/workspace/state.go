package workspace

// View identifies which surface of the client the user is looking at.
type View string

const (
	ViewRepositories View = "repositories"
	ViewCode         View = "code"
	ViewGists        View = "gists"
	ViewIssues       View = "issues"
	ViewChat         View = "chat"
)

// RepoRef identifies a repository on the hosting account.
type RepoRef struct {
	Owner string
	Name  string
}

// FullName returns "owner/name".
func (r RepoRef) FullName() string {
	return r.Owner + "/" + r.Name
}

// IsZero reports whether the reference is unset.
func (r RepoRef) IsZero() bool {
	return r.Owner == "" && r.Name == ""
}

// State is a snapshot of what the user currently has open. Presentation
// updates it on every navigation; the core only ever reads it, and only
// through Project.
type State struct {
	ActiveView  View
	Repository  RepoRef
	Path        string
	File        string
	FileContent string
	Selection   string
}

// Policy controls which parts of the workspace state are disclosed to the
// reasoning engine. User-toggleable, persisted across sessions.
type Policy struct {
	IncludeRepoMap     bool `yaml:"include_repo_map"`
	IncludeFileContent bool `yaml:"include_file_content"`
	IncludeSelection   bool `yaml:"include_selection"`
}

// DefaultPolicy discloses everything; the user narrows it from settings.
func DefaultPolicy() Policy {
	return Policy{
		IncludeRepoMap:     true,
		IncludeFileContent: true,
		IncludeSelection:   true,
	}
}
