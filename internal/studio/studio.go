// internal/studio/studio.go
package studio

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/user/prakharai/internal/types"
	"github.com/user/prakharai/pkg/genai"
)

// ErrInputRequired is returned when a generation has neither a prompt nor a
// reference image. It never reaches the generation client.
var ErrInputRequired = errors.New("input required: description or reference image")

// fallbackPrompt labels an edit requested with no text instruction.
const fallbackPrompt = "Intelligent Redesign"

// Studio drives the image generation flow: validate, call the generation
// client, wrap the result in a gallery entry, persist.
type Studio struct {
	client  genai.Client
	gallery types.GalleryStore
}

// New creates a Studio.
func New(client genai.Client, gallery types.GalleryStore) *Studio {
	return &Studio{client: client, gallery: gallery}
}

// Generate creates (or edits, when a reference image is supplied) one image
// and commits it to the gallery. The prompt may be empty only with a
// reference image.
func (s *Studio) Generate(ctx context.Context, prompt string, ratio genai.AspectRatio, ref *types.Attachment) (*types.GeneratedImage, error) {
	if strings.TrimSpace(prompt) == "" && ref == nil {
		return nil, ErrInputRequired
	}

	req := genai.ImageRequest{
		Prompt:      prompt,
		AspectRatio: ratio,
	}
	if ref != nil {
		req.Reference = &genai.Blob{MIMEType: ref.MIMEType, Data: ref.Data}
	}

	url, err := s.client.GenerateImage(ctx, req)
	if err != nil {
		return nil, err
	}

	kind := types.ImageGeneration
	if ref != nil {
		kind = types.ImageEdit
	}
	label := prompt
	if label == "" {
		label = fallbackPrompt
	}

	img := &types.GeneratedImage{
		ID:        types.NewImageID(),
		URL:       url,
		Prompt:    label,
		Timestamp: time.Now(),
		Type:      kind,
	}
	if err := s.gallery.Add(img); err != nil {
		return nil, err
	}
	return img, nil
}
