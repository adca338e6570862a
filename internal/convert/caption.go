// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// Captioner describes an image in prose. Implementations usually call an LLM.
type Captioner interface {
	Caption(ctx context.Context, image []byte, mimeType string) (string, error)
}

// imageExts are the extensions that receive an LLM description.
var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// Captioning wraps a Converter and appends an LLM-generated description to
// the Markdown of image files. Other files pass straight through.
type Captioning struct {
	Next      Converter
	Captioner Captioner
}

// Convert converts path with the wrapped converter and, for images, adds a
// "# Description:" section. A failed caption fails the file, since the user
// asked for captions explicitly.
func (c *Captioning) Convert(ctx context.Context, path string) (string, error) {
	md, err := c.Next.Convert(ctx, path)
	if err != nil {
		return "", err
	}
	if !imageExts[Ext(path)] {
		return md, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading image %s: %w", path, err)
	}
	desc, err := c.Captioner.Caption(ctx, data, http.DetectContentType(data))
	if err != nil {
		return "", fmt.Errorf("captioning %s: %w", path, err)
	}
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return md, nil
	}
	return strings.TrimRight(md, "\n") + "\n\n# Description:\n" + desc + "\n", nil
}
