// Package prompt builds the system prompt that seeds a conversation session.
// Profiles come from built-in presets or from <name>.toml files in the
// configured prompt directories, where files override built-ins.
package prompt

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/longkey1/llmdesk/internal/llmdesk"
)

// Builder produces system prompts for profile ids.
type Builder struct {
	dirs []string
}

// Entry describes an available profile.
type Entry struct {
	Name        string
	Description string
	Dir         string // empty for built-in profiles
}

// NewBuilder creates a builder searching the given prompt directories.
// Later directories take precedence over earlier ones.
func NewBuilder(dirs []string) *Builder {
	return &Builder{dirs: dirs}
}

// Build returns the system prompt for profileID. customPrompt is embedded verbatim
// when non-empty; the search section is only included when webSearch is set.
// Unknown profile ids fall back to the default profile.
func (b *Builder) Build(profileID, customPrompt string, webSearch bool) (string, error) {
	profile, err := b.Lookup(profileID)
	if err != nil {
		return "", err
	}

	sections := []string{profile.Intro, profile.Format}
	if webSearch {
		sections = append(sections, profile.Search)
	}
	sections = append(sections, profile.Content)
	if customPrompt != "" {
		sections = append(sections, "User-provided context\n-----\n"+customPrompt+"\n-----")
	}
	sections = append(sections, profile.Output)

	var parts []string
	for _, s := range sections {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("profile '%s' produced an empty prompt", profileID)
	}

	return strings.Join(parts, "\n\n"), nil
}

// Lookup resolves a profile id to its definition.
func (b *Builder) Lookup(profileID string) (*Profile, error) {
	if profileID == "" {
		profileID = llmdesk.DefaultProfile
	}
	if !validID(profileID) {
		return nil, fmt.Errorf("invalid profile id '%s'", profileID)
	}

	if path, found := b.findFile(profileID); found {
		profile, err := LoadProfile(path)
		if err != nil {
			return nil, fmt.Errorf("error loading profile '%s': %w", profileID, err)
		}
		return profile, nil
	}

	if profile, ok := builtinProfiles[profileID]; ok {
		return &profile, nil
	}

	profile := builtinProfiles[llmdesk.DefaultProfile]
	return &profile, nil
}

// validID accepts the slash-separated names List reports, which always stay
// inside a prompt directory.
func validID(profileID string) bool {
	return fs.ValidPath(profileID) && !strings.Contains(profileID, `\`)
}

// findFile searches all directories; later occurrences win.
func (b *Builder) findFile(profileID string) (string, bool) {
	name := profileID
	if !strings.HasSuffix(name, ".toml") {
		name += ".toml"
	}

	var path string
	var found bool
	for _, dir := range b.dirs {
		candidate := filepath.Join(dir, filepath.FromSlash(name))
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
			found = true
		}
	}
	return path, found
}

// List returns built-in and file profiles sorted by name. A file profile
// shadows the built-in of the same name.
func (b *Builder) List() ([]Entry, error) {
	entries := make(map[string]Entry)
	for name, profile := range builtinProfiles {
		entries[name] = Entry{Name: name, Description: profile.Description}
	}

	for _, dir := range b.dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}

		matches, err := doublestar.Glob(os.DirFS(dir), "**/*.toml", doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("error scanning prompt directory %s: %w", dir, err)
		}
		for _, match := range matches {
			name := strings.TrimSuffix(match, ".toml")
			entry := Entry{Name: name, Dir: dir}
			if profile, err := LoadProfile(filepath.Join(dir, filepath.FromSlash(match))); err == nil {
				entry.Description = profile.Description
			}
			entries[name] = entry
		}
	}

	result := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}
