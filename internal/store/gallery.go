// internal/store/gallery.go
package store

import (
	"sync"

	"github.com/user/prakharai/internal/types"
)

// GalleryStore holds generated images in memory, newest first, persisting
// the full collection on every mutation.
type GalleryStore struct {
	snaps  *Snapshots
	mu     sync.RWMutex
	images []*types.GeneratedImage
}

// NewGalleryStore loads the images snapshot, treating a missing or corrupt
// snapshot as an empty collection.
func NewGalleryStore(snaps *Snapshots) *GalleryStore {
	g := &GalleryStore{snaps: snaps}
	var saved []*types.GeneratedImage
	if snaps.Load(KeyImages, &saved) {
		g.images = saved
	}
	return g
}

// Add prepends the image and persists.
func (g *GalleryStore) Add(img *types.GeneratedImage) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.images = append([]*types.GeneratedImage{img}, g.images...)
	return g.snaps.Save(KeyImages, g.images)
}

// Remove filters out the image and persists. Removing an absent ID is a no-op.
func (g *GalleryStore) Remove(id types.ImageID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	kept := g.images[:0:0]
	for _, img := range g.images {
		if img.ID != id {
			kept = append(kept, img)
		}
	}
	if len(kept) == len(g.images) {
		return nil
	}
	g.images = kept
	return g.snaps.Save(KeyImages, g.images)
}

// List returns all images, newest first.
func (g *GalleryStore) List() []*types.GeneratedImage {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*types.GeneratedImage, len(g.images))
	copy(out, g.images)
	return out
}
