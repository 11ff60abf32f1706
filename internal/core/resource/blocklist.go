// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package resource

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/encre-app/encre/internal/platform/apperr"
)

// defaultBlockedTitles collide with routes of the authoring and reading apps.
var defaultBlockedTitles = []string{
	"create", "new", "edit", "settings", "admin", "dashboard", "api", "null", "undefined",
}

// Blocklist rejects titles equal to a blocked word, ignoring case and surrounding spaces.
type Blocklist struct {
	words map[string]struct{}
}

// blocklistFile is the YAML shape read by [LoadBlocklist].
type blocklistFile struct {
	Words []string `yaml:"words"`
}

// NewBlocklist builds a blocklist from the default words plus extra.
func NewBlocklist(extra ...string) *Blocklist {
	blocklist := &Blocklist{words: make(map[string]struct{})}
	for _, word := range append(append([]string{}, defaultBlockedTitles...), extra...) {
		if normalized := normalizeTitle(word); normalized != "" {
			blocklist.words[normalized] = struct{}{}
		}
	}
	return blocklist
}

// LoadBlocklist extends the default words with the YAML file at path.
// An empty path yields the defaults.
func LoadBlocklist(path string) (*Blocklist, error) {
	if path == "" {
		return NewBlocklist(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("resource: failed to read blocklist %s: %w", path, err)
	}

	var file blocklistFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("resource: failed to parse blocklist %s: %w", path, err)
	}

	return NewBlocklist(file.Words...), nil
}

// Check returns a title-scoped BAD_REQUEST when title is blocked.
func (blocklist *Blocklist) Check(title string) error {
	if _, blocked := blocklist.words[normalizeTitle(title)]; blocked {
		return apperr.BadRequestAt(fieldTitle, "Title contains blocked words. Please choose a different title.")
	}
	return nil
}

// Len returns the number of distinct blocked words.
func (blocklist *Blocklist) Len() int {
	return len(blocklist.words)
}

func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
