package tools

// Tool names form the wire contract with the reasoning engine. They must not
// change without re-declaring the schema.
const (
	ListFiles          = "list_files"
	ReadFile           = "read_file"
	CreateOrUpdateFile = "create_or_update_file"
	ReplaceInFile      = "replace_in_file"
	DeleteFile         = "delete_file"
)

// Definition declares one tool to the reasoning engine.
type Definition struct {
	Name        string
	Description string
	InputSchema map[string]any
	Mutating    bool // true when execution changes remote state
}

// ownerRepoProps are the optional arguments shared by every tool. When
// omitted, they are inferred from the open repository.
func ownerRepoProps() map[string]any {
	return map[string]any{
		"owner": map[string]any{
			"type":        "string",
			"description": "Repository owner. Optional: inferred from the open repository.",
		},
		"repo": map[string]any{
			"type":        "string",
			"description": "Repository name. Optional: inferred from the open repository.",
		},
	}
}

func withProps(extra map[string]any) map[string]any {
	props := ownerRepoProps()
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// FixedSet returns the stable tool schema declared to the reasoning engine
// for the whole session.
func FixedSet() []Definition {
	return []Definition{
		{
			Name:        ListFiles,
			Description: "List the files and directories at a path in a repository.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": withProps(map[string]any{
					"path": map[string]any{
						"type":        "string",
						"description": "Directory path to list. Optional: defaults to the current path, then the repository root.",
					},
				}),
			},
		},
		{
			Name:        ReadFile,
			Description: "Read the content of a file in a repository.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": withProps(map[string]any{
					"path": map[string]any{
						"type":        "string",
						"description": "File path to read.",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        CreateOrUpdateFile,
			Description: "Create a file, or overwrite it entirely if it already exists. Requires a commit message.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": withProps(map[string]any{
					"path": map[string]any{
						"type":        "string",
						"description": "File path to write.",
					},
					"content": map[string]any{
						"type":        "string",
						"description": "The complete new file content.",
					},
					"message": map[string]any{
						"type":        "string",
						"description": "Commit message for the change.",
					},
				}),
				"required": []string{"path", "content", "message"},
			},
			Mutating: true,
		},
		{
			Name:        ReplaceInFile,
			Description: "Replace text in a file. The search text must match the current file content exactly, including whitespace; every occurrence is replaced. Read the file first if unsure.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": withProps(map[string]any{
					"path": map[string]any{
						"type":        "string",
						"description": "File path to edit.",
					},
					"search": map[string]any{
						"type":        "string",
						"description": "Exact text to find. Not a regex.",
					},
					"replace": map[string]any{
						"type":        "string",
						"description": "Replacement text.",
					},
					"message": map[string]any{
						"type":        "string",
						"description": "Commit message for the change.",
					},
				}),
				"required": []string{"path", "search", "replace", "message"},
			},
			Mutating: true,
		},
		{
			Name:        DeleteFile,
			Description: "Delete a file from a repository. Requires a commit message.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": withProps(map[string]any{
					"path": map[string]any{
						"type":        "string",
						"description": "File path to delete.",
					},
					"message": map[string]any{
						"type":        "string",
						"description": "Commit message for the deletion.",
					},
				}),
				"required": []string{"path", "message"},
			},
			Mutating: true,
		},
	}
}

// Get returns the definition for a tool name.
func Get(name string) (Definition, bool) {
	for _, def := range FixedSet() {
		if def.Name == name {
			return def, true
		}
	}
	return Definition{}, false
}

// IsMutating reports whether a tool changes remote state. Unknown tools are
// treated as mutating so they are never auto-approved by mistake.
func IsMutating(name string) bool {
	def, ok := Get(name)
	if !ok {
		return true
	}
	return def.Mutating
}
