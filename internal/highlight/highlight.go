package highlight

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlighter renders source code with terminal colors. Disabled it is a
// pass-through, so callers never branch on color support themselves.
type Highlighter struct {
	enabled   bool
	formatter chroma.Formatter
	style     *chroma.Style
}

// New creates a Highlighter.
func New(enabled bool) *Highlighter {
	return &Highlighter{
		enabled:   enabled,
		formatter: formatters.Get("terminal256"),
		style:     styles.Get("monokai"),
	}
}

// ForPath highlights file content, picking the lexer from the filename.
// Used for remote file previews where only the path hints at the language.
func (h *Highlighter) ForPath(path, content string) string {
	if !h.enabled {
		return content
	}
	lexer := lexers.Match(path)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return h.render(lexer, content)
}

// Highlight highlights code in the named language.
func (h *Highlighter) Highlight(code, language string) string {
	if !h.enabled {
		return code
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return h.render(lexer, code)
}

func (h *Highlighter) render(lexer chroma.Lexer, code string) string {
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return code
	}
	return buf.String()
}

var codeBlockRegex = regexp.MustCompile("(?s)```(\\w*)\\n(.*?)```")

// MarkdownCodeBlocks highlights fenced code blocks inside assistant text,
// stripping the fence markers.
func (h *Highlighter) MarkdownCodeBlocks(text string) string {
	if !h.enabled {
		return text
	}

	return codeBlockRegex.ReplaceAllStringFunc(text, func(match string) string {
		parts := codeBlockRegex.FindStringSubmatch(match)
		if len(parts) != 3 {
			return match
		}
		code := strings.TrimSuffix(parts[2], "\n")
		return h.Highlight(code, parts[1])
	})
}
