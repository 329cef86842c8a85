package prompt

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Profile represents the structure of a TOML profile file.
// Every field is a prompt section; empty sections are skipped when building.
type Profile struct {
	Description string `toml:"description,omitempty"`
	Intro       string `toml:"intro"`
	Format      string `toml:"format,omitempty"`
	Search      string `toml:"search,omitempty"` // included only when web search is enabled
	Content     string `toml:"content,omitempty"`
	Output      string `toml:"output,omitempty"`
}

// LoadProfile loads a profile file and returns its contents
func LoadProfile(filePath string) (*Profile, error) {
	var profile Profile
	if _, err := toml.DecodeFile(filePath, &profile); err != nil {
		return nil, fmt.Errorf("error decoding profile file: %v", err)
	}
	if profile.Intro == "" && profile.Content == "" {
		return nil, fmt.Errorf("profile file %s defines neither intro nor content", filePath)
	}
	return &profile, nil
}
