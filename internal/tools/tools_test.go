package tools

import (
	"reflect"
	"testing"
)

func TestFixedSetIsStable(t *testing.T) {
	want := []string{ListFiles, ReadFile, CreateOrUpdateFile, ReplaceInFile, DeleteFile}

	var got []string
	for _, def := range FixedSet() {
		got = append(got, def.Name)
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("tool set = %v, want %v", got, want)
	}
}

func TestRequiredArguments(t *testing.T) {
	tests := []struct {
		tool     string
		required []string
	}{
		{ListFiles, nil},
		{ReadFile, []string{"path"}},
		{CreateOrUpdateFile, []string{"path", "content", "message"}},
		{ReplaceInFile, []string{"path", "search", "replace", "message"}},
		{DeleteFile, []string{"path", "message"}},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			def, ok := Get(tt.tool)
			if !ok {
				t.Fatalf("tool %s not found", tt.tool)
			}

			req, _ := def.InputSchema["required"].([]string)
			if !reflect.DeepEqual(req, tt.required) {
				t.Errorf("required = %v, want %v", req, tt.required)
			}
		})
	}
}

func TestOwnerRepoAlwaysOptional(t *testing.T) {
	for _, def := range FixedSet() {
		props, ok := def.InputSchema["properties"].(map[string]any)
		if !ok {
			t.Fatalf("%s has no properties", def.Name)
		}
		if _, ok := props["owner"]; !ok {
			t.Errorf("%s missing owner property", def.Name)
		}
		if _, ok := props["repo"]; !ok {
			t.Errorf("%s missing repo property", def.Name)
		}

		if req, ok := def.InputSchema["required"].([]string); ok {
			for _, r := range req {
				if r == "owner" || r == "repo" {
					t.Errorf("%s must not require %s", def.Name, r)
				}
			}
		}
	}
}

func TestIsMutating(t *testing.T) {
	tests := []struct {
		tool     string
		mutating bool
	}{
		{ListFiles, false},
		{ReadFile, false},
		{CreateOrUpdateFile, true},
		{ReplaceInFile, true},
		{DeleteFile, true},
		{"unknown_tool", true}, // unknown tools never bypass approval
	}

	for _, tt := range tests {
		if got := IsMutating(tt.tool); got != tt.mutating {
			t.Errorf("IsMutating(%s) = %v, want %v", tt.tool, got, tt.mutating)
		}
	}
}
