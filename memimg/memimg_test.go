package memimg

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
)

func writeSprite(t *testing.T, path string, size int, c color.Color) {
	t.Helper()
	if err := imaging.Save(imaging.New(size, size, c), path); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
}

func TestLoadScalesToBlockSize(t *testing.T) {
	dir := t.TempDir()
	writeSprite(t, filepath.Join(dir, "standard.png"), 64, color.NRGBA{255, 0, 0, 255})
	writeSprite(t, filepath.Join(dir, "bonus.jpg"), 48, color.NRGBA{255, 255, 0, 255})
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(16)
	if err := store.Load(dir); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", store.Len())
	}
	img, ok := store.Get("standard")
	if !ok {
		t.Fatal("standard sprite missing")
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Errorf("sprite bounds = %v, want 16x16", b)
	}
	if _, ok := store.Get("notes"); ok {
		t.Error("non-image file was loaded")
	}
}

func TestLoadMissingDirectory(t *testing.T) {
	store := NewStore(10)
	if err := store.Load(filepath.Join(t.TempDir(), "absent")); err != nil {
		t.Errorf("Load() on a missing directory = %v, want nil", err)
	}
}

func TestWatchPicksUpNewSprites(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(8)
	stop, err := store.Watch(dir)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer stop()

	writeSprite(t, filepath.Join(dir, "timed.png"), 32, color.NRGBA{255, 0, 255, 255})

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if img, ok := store.Get("timed"); ok {
			if img.Bounds().Dx() != 8 {
				t.Errorf("reloaded sprite width = %d, want 8", img.Bounds().Dx())
			}
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("sprite was not hot-loaded")
}

func TestSizedScalesFromOriginal(t *testing.T) {
	dir := t.TempDir()
	writeSprite(t, filepath.Join(dir, "bonus.png"), 64, color.NRGBA{255, 255, 0, 255})
	store := NewStore(20)
	if err := store.Load(dir); err != nil {
		t.Fatal(err)
	}

	for _, size := range []int{20, 4, 33} {
		img, ok := store.Sized("bonus", size)
		if !ok {
			t.Fatalf("Sized(bonus, %d) missing", size)
		}
		if b := img.Bounds(); b.Dx() != size || b.Dy() != size {
			t.Errorf("Sized(bonus, %d) bounds = %v", size, b)
		}
	}
	first, _ := store.Sized("bonus", 4)
	again, _ := store.Sized("bonus", 4)
	if first != again {
		t.Error("resized sprite not cached")
	}

	writeSprite(t, filepath.Join(dir, "bonus.png"), 64, color.NRGBA{0, 255, 0, 255})
	if err := store.Load(dir); err != nil {
		t.Fatal(err)
	}
	reloaded, _ := store.Sized("bonus", 4)
	if r, _, _, _ := reloaded.At(2, 2).RGBA(); r>>8 > 60 {
		t.Errorf("Sized after reload = %v, want the new green sprite", reloaded.At(2, 2))
	}

	if _, ok := store.Sized("missing", 4); ok {
		t.Error("Sized returned an unknown sprite")
	}
}
