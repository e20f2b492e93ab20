package main

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/1broseidon/clockwidget/internal/config"
	"github.com/1broseidon/clockwidget/internal/resources"
)

func writeIcon(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.SetNRGBA(1, 1, color.NRGBA{R: 255, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create icon: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode icon: %v", err)
	}
}

func TestLoadBundle(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "ui"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "ui", "clock.yaml"), []byte("title: Test Clock\n"), 0644); err != nil {
		t.Fatalf("write layout: %v", err)
	}
	writeIcon(t, filepath.Join(root, "icon.png"))

	layout, icon, err := loadBundle(resources.NewResolver(root))
	if err != nil {
		t.Fatalf("loadBundle: %v", err)
	}
	if layout.Title != "Test Clock" || layout.Width != 400 {
		t.Fatalf("layout = %+v", layout)
	}
	if b := icon.Bounds(); b.Dx() != 4 || b.Dy() != 4 {
		t.Fatalf("icon bounds = %v", b)
	}
}

func TestLoadBundle_MissingIconIsFatal(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "ui"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "ui", "clock.yaml"), nil, 0644); err != nil {
		t.Fatalf("write layout: %v", err)
	}

	_, _, err := loadBundle(resources.NewResolver(root))
	if !errors.Is(err, resources.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadBundle_MissingLayoutIsFatal(t *testing.T) {
	root := t.TempDir()
	writeIcon(t, filepath.Join(root, "icon.png"))

	_, _, err := loadBundle(resources.NewResolver(root))
	if !errors.Is(err, resources.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadBundle_InvalidLayout(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "ui"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "ui", "clock.yaml"), []byte("width: 20\nheight: 20\n"), 0644); err != nil {
		t.Fatalf("write layout: %v", err)
	}
	writeIcon(t, filepath.Join(root, "icon.png"))

	_, _, err := loadBundle(resources.NewResolver(root))
	if !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("expected config.ErrInvalid, got %v", err)
	}
}

func TestBundledLayoutIsValid(t *testing.T) {
	layout, err := config.LoadLayout(filepath.Join("..", "..", "ui", "clock.yaml"))
	if err != nil {
		t.Fatalf("bundled layout: %v", err)
	}
	if layout != config.DefaultLayout() {
		t.Fatalf("bundled layout drifted from defaults: %+v", layout)
	}
}
