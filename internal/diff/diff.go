// Package diff produces and applies unified patches for filter-list history.
// Generation uses github.com/pmezard/go-difflib/difflib to emit classic
// unified patches (---/+++ headers, @@ hunks, lines prefixed with ' ', '-',
// '+'). Application parses patches with github.com/sourcegraph/go-diff and
// replays the hunks, so that Apply(old, Unified(old, new)) == new.
//
// Header dates are a constant placeholder: patch files are versioned by
// their position in the chain, real modification times carry no meaning.
//
// difflib works on lines that carry their own newline, which garbles the
// hunk body when the final line of either side has none. Both sides are
// therefore newline-terminated before diffing, and the missing-newline
// information is restored afterwards with the standard
// "\ No newline at end of file" annotation.
package diff

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// HeaderDate is the fixed placeholder written into ---/+++ header lines.
const HeaderDate = "1980-01-01 00:00:00.000000000 +0000"

// noNewlineMarker is the standard unified-diff annotation for a final line
// without a trailing newline.
const noNewlineMarker = `\ No newline at end of file`

// Options controls patch generation behavior.
type Options struct {
	// Context controls the number of context lines in unified hunks.
	// If 0, default to 3.
	Context int
}

// Unified produces a classic unified patch transforming a into b.
// Identical inputs yield a header-only patch (no hunks) rather than an
// empty string, so an unchanged update still produces a well-formed
// artifact on disk.
func Unified(aName, bName string, a, b []byte, opt Options) (string, error) {
	ctx := opt.Context
	if ctx <= 0 {
		ctx = 3
	}

	aLines := splitLinesKeepNL(string(a))
	bLines := splitLinesKeepNL(string(b))
	aU := unterminated(a)
	bU := unterminated(b)

	u := difflib.UnifiedDiff{
		A:        terminated(aLines, aU),
		B:        terminated(bLines, bU),
		FromFile: aName,
		FromDate: HeaderDate,
		ToFile:   bName,
		ToDate:   HeaderDate,
		Context:  ctx,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return "", fmt.Errorf("unified diff: %w", err)
	}
	if s == "" {
		// difflib emits nothing for equal inputs. After termination that
		// covers one real change too: the last line gained or lost its
		// final newline while keeping its text.
		if aU == bU {
			return headerOnly(aName, bName), nil
		}
		return headerOnly(aName, bName) + newlineOnlyHunk(aLines, aU, bU), nil
	}
	if !aU && !bU {
		return s, nil
	}
	return annotateNoNewline(s, len(aLines), len(bLines), aU, bU), nil
}

// HasHunks reports whether the patch body contains at least one @@ hunk.
// A header-only patch (unchanged content) has none.
func HasHunks(patch string) bool {
	return strings.HasPrefix(patch, "@@") || strings.Contains(patch, "\n@@")
}

// headerOnly renders the ---/+++ header pair without hunks.
func headerOnly(aName, bName string) string {
	return fmt.Sprintf("--- %s\t%s\n+++ %s\t%s\n", aName, HeaderDate, bName, HeaderDate)
}

// splitLinesKeepNL splits into lines and keeps newline characters, which
// produces better unified hunks. A file that does not end with a newline
// keeps its last chunk without '\n'.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func unterminated(b []byte) bool {
	return len(b) > 0 && b[len(b)-1] != '\n'
}

// terminated hands difflib a copy whose last line always carries '\n';
// annotateNoNewline reintroduces the dropped information afterwards.
func terminated(lines []string, u bool) []string {
	if !u {
		return lines
	}
	out := make([]string, len(lines))
	copy(out, lines)
	out[len(out)-1] += "\n"
	return out
}

// newlineOnlyHunk renders the hunk for a newline-only change: same text on
// the last line, different termination.
func newlineOnlyHunk(lines []string, aU, bU bool) string {
	n := len(lines)
	text := strings.TrimSuffix(lines[n-1], "\n")

	var sb strings.Builder
	fmt.Fprintf(&sb, "@@ -%d +%d @@\n", n, n)
	sb.WriteString("-" + text + "\n")
	if aU {
		sb.WriteString(noNewlineMarker + "\n")
	}
	sb.WriteString("+" + text + "\n")
	if bU {
		sb.WriteString(noNewlineMarker + "\n")
	}
	return sb.String()
}

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// annotateNoNewline walks the rendered diff and restores the standard
// missing-newline markers for the final line of either side. A context line
// whose sides disagree on termination is split into a remove/add pair,
// which keeps the hunk counts intact (the pair consumes one old and one
// new line, exactly as the context line did).
func annotateNoNewline(s string, lenA, lenB int, aU, bU bool) string {
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var sb strings.Builder
	oldNo, newNo := 0, 0
	for i, line := range lines {
		if i < 2 { // ---/+++ headers
			sb.WriteString(line)
			continue
		}
		if m := hunkHeaderRe.FindStringSubmatch(line); m != nil {
			oldNo = atoiLoose(m[1]) - 1
			newNo = atoiLoose(m[3]) - 1
			sb.WriteString(line)
			continue
		}
		if line == "" {
			continue
		}
		switch line[0] {
		case ' ':
			oldNo++
			newNo++
			termA := aU && oldNo == lenA
			termB := bU && newNo == lenB
			switch {
			case termA && termB:
				sb.WriteString(line)
				sb.WriteString(noNewlineMarker + "\n")
			case termA || termB:
				// Termination differs, so the two sides of this "context"
				// line are not actually the same line.
				sb.WriteString("-" + line[1:])
				if termA {
					sb.WriteString(noNewlineMarker + "\n")
				}
				sb.WriteString("+" + line[1:])
				if termB {
					sb.WriteString(noNewlineMarker + "\n")
				}
			default:
				sb.WriteString(line)
			}
		case '-':
			oldNo++
			sb.WriteString(line)
			if aU && oldNo == lenA {
				sb.WriteString(noNewlineMarker + "\n")
			}
		case '+':
			newNo++
			sb.WriteString(line)
			if bU && newNo == lenB {
				sb.WriteString(noNewlineMarker + "\n")
			}
		default:
			sb.WriteString(line)
		}
	}
	return sb.String()
}

func atoiLoose(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
