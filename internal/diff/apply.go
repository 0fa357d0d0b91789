package diff

import (
	"errors"
	"fmt"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"
)

var (
	// ErrMalformedPatch is returned when the patch text cannot be parsed.
	ErrMalformedPatch = errors.New("malformed patch")

	// ErrPatchMismatch is returned when a hunk does not fit the content it
	// is applied to (wrong base version or corrupted chain).
	ErrPatchMismatch = errors.New("patch does not apply")
)

// Apply replays a unified patch on top of old and returns the new content.
// A header-only or empty patch is the identity transformation.
//
// Hunks are validated against the base content line by line: a context or
// deletion line that does not match old is reported as ErrPatchMismatch
// instead of producing silently wrong output.
func Apply(old []byte, patch string) ([]byte, error) {
	if !HasHunks(patch) {
		return old, nil
	}

	fd, err := godiff.ParseFileDiff([]byte(patch))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPatch, err)
	}

	oldLines := splitLinesKeepNL(string(old))
	var out []string
	cursor := 0 // next unconsumed index into oldLines

	for _, h := range fd.Hunks {
		start := hunkStart(h.OrigStartLine, h.OrigLines)
		if start < cursor || start > len(oldLines) {
			return nil, fmt.Errorf("%w: hunk @@ -%d,%d out of range", ErrPatchMismatch, h.OrigStartLine, h.OrigLines)
		}

		// Copy the untouched region before the hunk.
		out = append(out, oldLines[cursor:start]...)
		cursor = start

		for _, ln := range strings.Split(string(h.Body), "\n") {
			switch {
			case ln == "":
				// Trailing split artifact, or an empty context line some
				// producers emit without the leading space.
				continue
			case ln[0] == ' ':
				if err := matchOldLine(oldLines, cursor, ln[1:]); err != nil {
					return nil, err
				}
				out = append(out, ln[1:]+"\n")
				cursor++
			case ln[0] == '-':
				if err := matchOldLine(oldLines, cursor, ln[1:]); err != nil {
					return nil, err
				}
				cursor++
			case ln[0] == '+':
				out = append(out, ln[1:]+"\n")
			case ln[0] == '\\':
				// "\ No newline at end of file" marker; newSideUnterminated
				// covers the new side from the raw patch text.
			default:
				return nil, fmt.Errorf("%w: unexpected hunk line %q", ErrMalformedPatch, ln)
			}
		}
	}

	out = append(out, oldLines[cursor:]...)
	result := strings.Join(out, "")

	// Every kept line above was reconstructed with a trailing '\n'; strip
	// it again when the patch says the new content ends without one.
	if newSideUnterminated(patch) && strings.HasSuffix(result, "\n") {
		result = result[:len(result)-1]
	}
	return []byte(result), nil
}

// newSideUnterminated reports whether the patch marks the new content's
// final line as lacking a trailing newline: a missing-newline marker
// following an added or context line, or (for producers that omit the
// marker) patch text that itself ends mid-line. The raw text is scanned
// because parsers may strip marker lines from the hunk body.
func newSideUnterminated(patch string) bool {
	if !strings.HasSuffix(patch, "\n") {
		return true
	}
	lines := strings.Split(patch, "\n")
	for i := 1; i < len(lines); i++ {
		if !strings.HasPrefix(lines[i], `\`) {
			continue
		}
		prev := lines[i-1]
		if len(prev) > 0 && (prev[0] == '+' || prev[0] == ' ') {
			return true
		}
	}
	return false
}

// hunkStart converts a unified-diff @@ range into a 0-based slice index.
// A zero-length original range ("-n,0") means "insert after line n".
func hunkStart(origStart, origLines int32) int {
	if origLines == 0 {
		return int(origStart)
	}
	return int(origStart) - 1
}

func matchOldLine(oldLines []string, idx int, want string) error {
	if idx >= len(oldLines) {
		return fmt.Errorf("%w: content ends before hunk does", ErrPatchMismatch)
	}
	if strings.TrimSuffix(oldLines[idx], "\n") != want {
		return fmt.Errorf("%w: line %d is %q, patch expects %q",
			ErrPatchMismatch, idx+1, strings.TrimSuffix(oldLines[idx], "\n"), want)
	}
	return nil
}
