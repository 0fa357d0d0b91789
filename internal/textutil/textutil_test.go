package textutil

import (
	"bytes"
	"testing"
)

func TestNormalizeUTF8LF(t *testing.T) {
	got := NormalizeUTF8LF([]byte("a\r\nb\rc\n"))
	if !bytes.Equal(got, []byte("a\nb\nc\n")) {
		t.Fatalf("unexpected normalization: %q", got)
	}
	got = NormalizeUTF8LF([]byte{'a', 0xff, '\n'})
	if !bytes.Contains(got, []byte("�")) {
		t.Fatalf("invalid UTF-8 not replaced: %q", got)
	}
}

func TestEnsureTrailingLF(t *testing.T) {
	if got := EnsureTrailingLF([]byte("a")); string(got) != "a\n" {
		t.Fatalf("missing newline not appended: %q", got)
	}
	if got := EnsureTrailingLF([]byte("a\n")); string(got) != "a\n" {
		t.Fatalf("newline doubled: %q", got)
	}
	if got := EnsureTrailingLF(nil); len(got) != 0 {
		t.Fatalf("empty input grew: %q", got)
	}
}

func TestCountLines(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a\n", 1},
		{"a\nb\n", 2},
		{"a\nb", 2},
		{"\n", 1},
	}
	for _, c := range cases {
		if got := CountLines([]byte(c.in)); got != c.want {
			t.Fatalf("CountLines(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}
