package audit

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Format is the recognized shape of a manifest line.
type Format int

const (
	FormatUnknown Format = iota
	// FormatToken is the pipe-delimited token form:
	// slug|SET|collector|face (collector and face optional).
	FormatToken
	// FormatReport is the free-text "Audit Card and Image Data" report:
	// "Set Name (CODE)" headers followed by "CODE/Name2.full" items.
	FormatReport
)

func (f Format) String() string {
	switch f {
	case FormatToken:
		return "token"
	case FormatReport:
		return "report"
	default:
		return "unknown"
	}
}

// ErrWrongManifest is returned when the manifest's detected format does not
// match the format the selected workflow expects.
var ErrWrongManifest = errors.New("audit: manifest format does not match workflow")

// ErrMisplacedManifest is returned when the manifest sits inside the Tokens
// or Cards subfolder instead of the source root.
var ErrMisplacedManifest = errors.New("audit: manifest must live at the root of the source directory")

// Entry is one parsed manifest line.
type Entry struct {
	Format Format

	// Token form.
	Slug      string
	Set       string // parent set code, upper case
	Collector string // empty when absent
	FaceIndex int    // 1-based; 1 when absent

	// Report form.
	Name       string // display name with any trailing print index removed
	PrintIndex int    // 1-based print selector from a trailing digit; 0 = none
}

var (
	tokenLineRe    = regexp.MustCompile(`^([^|]+)\|([A-Za-z0-9]+)(?:\|([0-9]*))?(?:\|([A-Za-z0-9]*))?$`)
	reportHeaderRe = regexp.MustCompile(`^.+\(([A-Za-z0-9]+)\)$`)
	reportItemRe   = regexp.MustCompile(`^([A-Za-z0-9_]+)/(.*)\.full$`)
	trailingIdxRe  = regexp.MustCompile(`^(.*?)([0-9]+)?$`)
)

// DetectLine classifies a single manifest line by shape. Blank lines,
// comments and separators classify as unknown.
func DetectLine(line string) Format {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "---") {
		return FormatUnknown
	}
	if tokenLineRe.MatchString(line) && strings.Contains(line, "|") {
		return FormatToken
	}
	if reportItemRe.MatchString(line) || reportHeaderRe.MatchString(line) {
		return FormatReport
	}
	return FormatReport // free descriptive text is report material
}

// DetectFormat inspects the whole manifest and returns the majority shape.
// A file with no classifiable line at all is unknown.
func DetectFormat(lines []string) Format {
	var token, report int
	for _, l := range lines {
		switch DetectLine(l) {
		case FormatToken:
			token++
		case FormatReport:
			report++
		}
	}
	switch {
	case token == 0 && report == 0:
		return FormatUnknown
	case token >= report:
		return FormatToken
	default:
		return FormatReport
	}
}

// CheckLocation rejects a manifest placed inside the Tokens or Cards
// subfolder; the file belongs at the root of the source directory.
func CheckLocation(baseDir, manifestPath string) error {
	rel, err := filepath.Rel(baseDir, manifestPath)
	if err != nil {
		return nil // outside the base dir entirely; not our usage error
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) > 1 {
		switch strings.ToLower(parts[0]) {
		case "tokens", "cards":
			return fmt.Errorf("%w (found in %s/)", ErrMisplacedManifest, parts[0])
		}
	}
	return nil
}

// ParseManifest reads a manifest and parses it as the format the workflow
// expects. A manifest whose detected format disagrees is rejected before
// any network I/O, with a diagnostic naming the correct workflow.
func ParseManifest(path string, want Format) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	got := DetectFormat(lines)
	if got == FormatUnknown {
		return nil, fmt.Errorf("%w: no recognizable entries in %s", ErrWrongManifest, path)
	}
	if got != want {
		other := "token-audit"
		if got == FormatReport {
			other = "card-audit"
		}
		return nil, fmt.Errorf("%w: %s looks like a %s manifest; use the %s workflow",
			ErrWrongManifest, path, got, other)
	}

	if want == FormatToken {
		return parseTokenLines(lines), nil
	}
	return parseReportLines(lines), nil
}

func parseTokenLines(lines []string) []Entry {
	var entries []Entry
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(strings.ToUpper(line), "---") {
			continue
		}
		m := tokenLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		entries = append(entries, Entry{
			Format:    FormatToken,
			Slug:      strings.TrimSpace(m[1]),
			Set:       strings.ToUpper(m[2]),
			Collector: strings.TrimSpace(m[3]),
			FaceIndex: parseFace(m[4]),
		})
	}
	return entries
}

func parseFace(s string) int {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "1", "front":
		return 1
	case "2", "back":
		return 2
	default:
		return 1
	}
}

func parseReportLines(lines []string) []Entry {
	var entries []Entry
	currentSet := ""
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "---") {
			continue
		}
		if m := reportItemRe.FindStringSubmatch(line); m != nil {
			set := strings.ToUpper(m[1])
			if set == "" {
				set = currentSet
			}
			name, idx := splitTrailingIndex(m[2])
			entries = append(entries, Entry{
				Format:     FormatReport,
				Set:        set,
				Name:       name,
				PrintIndex: idx,
			})
			continue
		}
		if m := reportHeaderRe.FindStringSubmatch(line); m != nil {
			currentSet = strings.ToUpper(m[1])
		}
	}
	return entries
}

// splitTrailingIndex separates "Brightcap Badger2" into the display name
// and the 1-based print selector. No digits means no selector.
func splitTrailingIndex(s string) (string, int) {
	m := trailingIdxRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil || m[2] == "" {
		return strings.TrimSpace(s), 0
	}
	idx := 0
	fmt.Sscanf(m[2], "%d", &idx)
	return strings.TrimSpace(m[1]), idx
}

// TokenSetFor maps a parent set code to its Scryfall token set (tXXX).
func TokenSetFor(parentSet string) string {
	return "t" + strings.ToLower(parentSet)
}
