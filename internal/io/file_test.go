package ioutils

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCopyFile_ExactContentAndAttributes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "1-01 "+uuid.NewString()+".m4a")
	dst := filepath.Join(dir, "copy.m4a")

	content := bytes.Repeat([]byte(uuid.NewString()), 4096)
	if err := os.WriteFile(src, content, 0640); err != nil {
		t.Fatal(err)
	}
	mtime := time.Date(2019, 4, 1, 12, 30, 0, 0, time.UTC)
	if err := os.Chtimes(src, mtime, mtime); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(context.Background(), src, dst); err != nil {
		t.Fatalf("CopyFile error = %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Error("copied content differs from source")
	}

	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(mtime) {
		t.Errorf("ModTime = %v, want %v", info.ModTime(), mtime)
	}
	if info.Mode().Perm() != 0640 {
		t.Errorf("Mode = %v, want 0640", info.Mode().Perm())
	}
}

func TestCopyFile_ReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")

	if err := os.WriteFile(src, []byte("short"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("a much longer previous content"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(context.Background(), src, dst); err != nil {
		t.Fatalf("CopyFile error = %v", err)
	}
	got, _ := os.ReadFile(dst)
	if string(got) != "short" {
		t.Errorf("dst = %q, want %q", got, "short")
	}
}

func TestCopyFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := CopyFile(context.Background(), filepath.Join(dir, "nope"), filepath.Join(dir, "dst"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want ErrNotExist", err)
	}
}

func TestCopyFile_Cancelled(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	if err := os.WriteFile(src, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := CopyFile(ctx, src, filepath.Join(dir, "dst"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "dst")); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("cancelled copy should not create the destination")
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	created, err := EnsureDir(dir)
	if err != nil || !created {
		t.Fatalf("EnsureDir = (%v, %v), want (true, nil)", created, err)
	}

	created, err = EnsureDir(dir)
	if err != nil || created {
		t.Errorf("second EnsureDir = (%v, %v), want (false, nil)", created, err)
	}
}

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if ok, err := DirExists(dir); !ok || err != nil {
		t.Errorf("DirExists(dir) = (%v, %v)", ok, err)
	}
	if ok, err := DirExists(filepath.Join(dir, "missing")); ok || err != nil {
		t.Errorf("DirExists(missing) = (%v, %v)", ok, err)
	}
	if _, err := DirExists(file); !errors.Is(err, ErrNotDirectory) {
		t.Errorf("DirExists(file) error = %v, want ErrNotDirectory", err)
	}
}

func TestLockDir(t *testing.T) {
	dir := t.TempDir()

	lock, err := LockDir(dir)
	if err != nil {
		t.Fatalf("LockDir error = %v", err)
	}

	if _, err := LockDir(dir); !errors.Is(err, ErrLocked) {
		t.Errorf("second LockDir error = %v, want ErrLocked", err)
	}

	if err := lock.Unlock(); err != nil {
		t.Fatalf("Unlock error = %v", err)
	}

	again, err := LockDir(dir)
	if err != nil {
		t.Fatalf("LockDir after unlock error = %v", err)
	}
	_ = again.Unlock()

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("locked directory should stay empty, has %d entries", len(entries))
	}
}
