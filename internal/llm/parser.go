package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Veraticus/finshare-ai/internal/common"
)

// cleanMarkdownWrapper strips a ```json fence and any prose around the
// outermost JSON object.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```JSON")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}

// DecodeJSON parses a model reply into v, tolerating markdown fences.
func DecodeJSON(content string, v any) error {
	cleaned := cleanMarkdownWrapper(content)
	if cleaned == "" {
		return fmt.Errorf("%w: empty reply", common.ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("%w: %w", common.ErrMalformedResponse, err)
	}
	return nil
}
