package imageprocessor

import (
	"path/filepath"
	"strings"
	"sync"
)

// ImageLoaderRegistry maintains a registry of image loaders
type ImageLoaderRegistry struct {
	loaders       map[string]ImageLoader
	defaultLoader ImageLoader
	mutex         sync.RWMutex
}

// NewImageLoaderRegistry creates a new image loader registry
func NewImageLoaderRegistry() *ImageLoaderRegistry {
	registry := &ImageLoaderRegistry{
		loaders: make(map[string]ImageLoader),
	}

	standardLoader := NewStandardImageLoader()
	registry.RegisterLoader(".jpg", standardLoader)
	registry.RegisterLoader(".jpeg", standardLoader)
	registry.RegisterLoader(".png", standardLoader)
	registry.RegisterLoader(".bmp", standardLoader)
	registry.RegisterLoader(".gif", standardLoader)
	registry.RegisterLoader(".webp", standardLoader)
	registry.defaultLoader = standardLoader

	tiffLoader := NewTiffImageLoader()
	registry.RegisterLoader(".tif", tiffLoader)
	registry.RegisterLoader(".tiff", tiffLoader)

	return registry
}

// RegisterLoader associates a file extension with a loader
func (r *ImageLoaderRegistry) RegisterLoader(ext string, loader ImageLoader) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.loaders[strings.ToLower(ext)] = loader
}

// LoaderFor returns the loader registered for the file's extension, or the
// default loader when no specialized one exists.
func (r *ImageLoaderRegistry) LoaderFor(path string) ImageLoader {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ext := strings.ToLower(filepath.Ext(path))
	if loader, ok := r.loaders[ext]; ok {
		return loader
	}
	return r.defaultLoader
}
