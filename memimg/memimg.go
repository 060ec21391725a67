package memimg

import (
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
)

var spriteExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// Store caches sprites scaled to one board cell, keyed by file name without
// extension ("standard", "bonus", "timed", "head", "body").
type Store struct {
	blockSize int

	mu        sync.RWMutex
	originals map[string]image.Image
	sprites   map[string]image.Image
	resized   map[sizedKey]image.Image
}

type sizedKey struct {
	name string
	size int
}

func NewStore(blockSize int) *Store {
	return &Store{
		blockSize: blockSize,
		originals: make(map[string]image.Image),
		sprites:   make(map[string]image.Image),
		resized:   make(map[sizedKey]image.Image),
	}
}

// Load reads every sprite in directory. A missing directory is not an error;
// the board falls back to flat colors.
func (s *Store) Load(directory string) error {
	if _, err := os.Stat(directory); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(directory, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSprite(path) {
			return nil
		}
		return s.loadFile(path)
	})
}

func (s *Store) loadFile(path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return err
	}
	scaled := imaging.Resize(img, s.blockSize, s.blockSize, imaging.Lanczos)

	name := spriteName(path)
	s.mu.Lock()
	s.originals[name] = img
	s.sprites[name] = scaled
	s.dropResized(name)
	s.mu.Unlock()
	return nil
}

// dropResized forgets every other size of name. Callers hold mu.
func (s *Store) dropResized(name string) {
	for key := range s.resized {
		if key.name == name {
			delete(s.resized, key)
		}
	}
}

// Get returns the scaled sprite registered under name.
func (s *Store) Get(name string) (image.Image, bool) {
	s.mu.RLock()
	img, exists := s.sprites[name]
	s.mu.RUnlock()
	return img, exists
}

// Sized returns the sprite scaled to size pixels. Sizes other than the
// store's block size are scaled from the original file once and cached.
func (s *Store) Sized(name string, size int) (image.Image, bool) {
	if size == s.blockSize {
		return s.Get(name)
	}
	key := sizedKey{name: name, size: size}

	s.mu.RLock()
	img, exists := s.resized[key]
	original, loaded := s.originals[name]
	s.mu.RUnlock()
	if exists {
		return img, true
	}
	if !loaded || size <= 0 {
		return nil, false
	}

	img = imaging.Resize(original, size, size, imaging.Lanczos)
	s.mu.Lock()
	// 重新加载过就不缓存旧图
	if s.originals[name] == original {
		s.resized[key] = img
	}
	s.mu.Unlock()
	return img, true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sprites)
}

// Watch 监听目录并把修改过的图片热更新到内存，返回的函数用于停止监听
func (s *Store) Watch(directory string) (func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isSprite(event.Name) {
					continue
				}
				switch {
				case event.Op&fsnotify.Write == fsnotify.Write, event.Op&fsnotify.Create == fsnotify.Create:
					if err := s.loadFile(event.Name); err != nil {
						// 写入可能还没完成，等下一次 Write 事件
						log.Printf("sprite %s not reloaded: %v", event.Name, err)
					}
				case event.Op&fsnotify.Remove == fsnotify.Remove:
					name := spriteName(event.Name)
					s.mu.Lock()
					delete(s.originals, name)
					delete(s.sprites, name)
					s.dropResized(name)
					s.mu.Unlock()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Println("sprite watcher error:", err)
			}
		}
	}()

	if err := watcher.Add(directory); err != nil {
		watcher.Close()
		return nil, err
	}
	return watcher.Close, nil
}

func isSprite(path string) bool {
	return spriteExts[strings.ToLower(filepath.Ext(path))]
}

func spriteName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
