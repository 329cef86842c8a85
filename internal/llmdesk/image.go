package llmdesk

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// LoadImage reads an image file and returns it base64 encoded, the form the
// backend expects in Message.Images. Files that are not images are rejected.
func LoadImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%s is not an image (detected %s)", path, mtype.String())
	}

	return base64.StdEncoding.EncodeToString(data), nil
}
