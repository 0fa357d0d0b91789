package listfiles

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCollectSkipsToolDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.txt"))
	writeFile(t, filepath.Join(root, "a.txt"))
	writeFile(t, filepath.Join(root, "sub", "c.txt"))
	writeFile(t, filepath.Join(root, "notes.md"))
	writeFile(t, filepath.Join(root, ".hidden.txt"))
	writeFile(t, filepath.Join(root, "a-diff", "checkpoint.txt"))
	writeFile(t, filepath.Join(root, "nano-sync-config", "cache.txt"))
	writeFile(t, filepath.Join(root, ".git", "d.txt"))

	got, err := Collect(root, nil)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	want := []string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "b.txt"),
		filepath.Join(root, "sub", "c.txt"),
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCollectCustomExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "list.adblock"))
	writeFile(t, filepath.Join(root, "other.txt"))

	got, err := Collect(root, []string{".adblock"})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(got) != 1 || filepath.Base(got[0]) != "list.adblock" {
		t.Fatalf("unexpected result: %v", got)
	}
}
