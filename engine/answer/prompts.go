package answer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tmc/langchaingo/prompts"
)

// Template names resolved under the prompt directory.
const (
	userTemplate   = "generate_response"
	systemTemplate = "system_prompt"
)

// PromptStore loads named templates from a directory and renders them as
// Go templates. Files are read on every call, so edits take effect
// without a restart.
type PromptStore struct {
	dir string
}

// NewPromptStore creates a store rooted at dir.
func NewPromptStore(dir string) *PromptStore {
	return &PromptStore{dir: dir}
}

// Render loads <name>.txt from the store directory and renders it with
// values. A missing file is reported as ErrTemplateNotFound.
func (p *PromptStore) Render(name string, values map[string]any) (string, error) {
	raw, err := os.ReadFile(filepath.Join(p.dir, name+".txt"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("answer: template %s: %w", name, ErrTemplateNotFound)
		}
		return "", fmt.Errorf("answer: read template %s: %w", name, err)
	}

	vars := make([]string, 0, len(values))
	for k := range values {
		vars = append(vars, k)
	}

	out, err := prompts.NewPromptTemplate(string(raw), vars).Format(values)
	if err != nil {
		return "", fmt.Errorf("answer: render template %s: %w", name, err)
	}
	return out, nil
}
