package workspace

import (
	"fmt"
	"strings"
)

// Disclosed is the filtered subset of workspace state sent to the reasoning
// engine for one turn. Zero-valued fields were withheld by policy or are
// simply unset.
type Disclosed struct {
	ActiveView  View
	Repository  RepoRef
	Path        string
	File        string
	FileContent string
	Selection   string
}

// Project computes the disclosure of state under policy. Pure function: no
// side effects, deterministic for identical inputs. The active view is
// always included; every other field is gated by exactly one policy flag.
func Project(state State, policy Policy) Disclosed {
	d := Disclosed{ActiveView: state.ActiveView}

	if policy.IncludeRepoMap {
		d.Repository = state.Repository
		d.Path = state.Path
	}
	if policy.IncludeFileContent {
		d.File = state.File
		d.FileContent = state.FileContent
	}
	if policy.IncludeSelection {
		d.Selection = state.Selection
	}

	return d
}

// Render serializes the disclosure into the block embedded in the engine's
// system instructions. Withheld fields are omitted entirely rather than
// rendered empty, so the engine cannot distinguish "hidden" from "unset".
func (d Disclosed) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Active view: %s\n", d.ActiveView)

	if !d.Repository.IsZero() {
		fmt.Fprintf(&b, "Open repository: %s\n", d.Repository.FullName())
		if d.Path != "" {
			fmt.Fprintf(&b, "Current path: %s\n", d.Path)
		}
	}

	if d.File != "" {
		fmt.Fprintf(&b, "Open file: %s\n", d.File)
		if d.FileContent != "" {
			fmt.Fprintf(&b, "File content:\n```\n%s\n```\n", d.FileContent)
		}
	}

	if d.Selection != "" {
		fmt.Fprintf(&b, "Selected text:\n```\n%s\n```\n", d.Selection)
	}

	return b.String()
}
