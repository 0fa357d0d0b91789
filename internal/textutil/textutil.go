package textutil

import "bytes"

// NormalizeUTF8LF converts CRLF/CR to LF and ensures the output is valid
// UTF-8 by replacing invalid byte sequences with the Unicode replacement
// character. Used only when normalization is explicitly requested; the
// default tracking path keeps filter content byte-for-byte.
func NormalizeUTF8LF(b []byte) []byte {
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	b = bytes.ReplaceAll(b, []byte("\r"), []byte("\n"))
	return bytes.ToValidUTF8(b, []byte("�"))
}

// EnsureTrailingLF appends a single \n if not already present.
func EnsureTrailingLF(b []byte) []byte {
	if len(b) == 0 || b[len(b)-1] == '\n' {
		return b
	}
	return append(b, '\n')
}

// CountLines returns the number of lines in b, counting a final chunk
// without a trailing '\n' as one line.
func CountLines(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	n := bytes.Count(b, []byte("\n"))
	if b[len(b)-1] != '\n' {
		n++
	}
	return n
}
