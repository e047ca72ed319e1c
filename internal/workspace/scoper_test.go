package workspace

import (
	"reflect"
	"strings"
	"testing"
)

func sampleState() State {
	return State{
		ActiveView:  ViewCode,
		Repository:  RepoRef{Owner: "octocat", Name: "hello-world"},
		Path:        "src",
		File:        "src/main.go",
		FileContent: "package main",
		Selection:   "func main()",
	}
}

func TestProjectAllFlags(t *testing.T) {
	d := Project(sampleState(), DefaultPolicy())

	if d.ActiveView != ViewCode {
		t.Errorf("active view = %s, want %s", d.ActiveView, ViewCode)
	}
	if d.Repository.FullName() != "octocat/hello-world" {
		t.Errorf("repository = %s", d.Repository.FullName())
	}
	if d.Path != "src" || d.File != "src/main.go" || d.FileContent != "package main" || d.Selection != "func main()" {
		t.Errorf("unexpected projection: %+v", d)
	}
}

func TestProjectIsDeterministic(t *testing.T) {
	state := sampleState()
	policy := Policy{IncludeRepoMap: true, IncludeFileContent: false, IncludeSelection: true}

	first := Project(state, policy)
	second := Project(state, policy)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("projection not deterministic: %+v vs %+v", first, second)
	}
}

func TestProjectFlagIsolation(t *testing.T) {
	state := sampleState()
	full := Project(state, DefaultPolicy())

	tests := []struct {
		name   string
		policy Policy
		check  func(t *testing.T, d Disclosed)
	}{
		{
			name:   "repo map off",
			policy: Policy{IncludeRepoMap: false, IncludeFileContent: true, IncludeSelection: true},
			check: func(t *testing.T, d Disclosed) {
				if !d.Repository.IsZero() || d.Path != "" {
					t.Errorf("repo fields leaked: %+v", d)
				}
				if d.File != full.File || d.FileContent != full.FileContent || d.Selection != full.Selection {
					t.Errorf("unrelated fields changed: %+v", d)
				}
			},
		},
		{
			name:   "file content off",
			policy: Policy{IncludeRepoMap: true, IncludeFileContent: false, IncludeSelection: true},
			check: func(t *testing.T, d Disclosed) {
				if d.File != "" || d.FileContent != "" {
					t.Errorf("file fields leaked: %+v", d)
				}
				if d.Repository != full.Repository || d.Path != full.Path || d.Selection != full.Selection {
					t.Errorf("unrelated fields changed: %+v", d)
				}
			},
		},
		{
			name:   "selection off",
			policy: Policy{IncludeRepoMap: true, IncludeFileContent: true, IncludeSelection: false},
			check: func(t *testing.T, d Disclosed) {
				if d.Selection != "" {
					t.Errorf("selection leaked: %+v", d)
				}
				if d.Repository != full.Repository || d.File != full.File {
					t.Errorf("unrelated fields changed: %+v", d)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Project(state, tt.policy)
			if d.ActiveView != state.ActiveView {
				t.Error("active view must always be disclosed")
			}
			tt.check(t, d)
		})
	}
}

func TestRenderOmitsWithheldFields(t *testing.T) {
	d := Project(sampleState(), Policy{IncludeRepoMap: false, IncludeFileContent: false, IncludeSelection: false})
	out := d.Render()

	if !strings.Contains(out, "Active view: code") {
		t.Errorf("expected active view line, got: %s", out)
	}
	for _, forbidden := range []string{"octocat", "main.go", "package main", "Selected text"} {
		if strings.Contains(out, forbidden) {
			t.Errorf("withheld field rendered: %q in %s", forbidden, out)
		}
	}
}

func TestRenderFullDisclosure(t *testing.T) {
	out := Project(sampleState(), DefaultPolicy()).Render()

	for _, want := range []string{
		"Open repository: octocat/hello-world",
		"Current path: src",
		"Open file: src/main.go",
		"package main",
		"func main()",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in rendered disclosure:\n%s", want, out)
		}
	}
}
