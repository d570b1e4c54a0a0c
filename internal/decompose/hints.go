package decompose

import (
	"regexp"
	"strings"
)

// RequestHints are the structural markers extracted from a request's text.
type RequestHints struct {
	// HasSequencing is true when the request uses explicit ordering words.
	HasSequencing bool
	// HasParallel is true when the request asks for concurrent work.
	HasParallel bool
	// HasConditional is true when the request gates work on a condition.
	HasConditional bool
	// NumberedSteps holds the text of explicit numbered steps, in order.
	NumberedSteps []string
}

var (
	sequencingMarkers  = []string{"first", "then", "finally", "after that", "before"}
	parallelMarkers    = []string{"in parallel", "simultaneously", "concurrently", "at the same time"}
	conditionalMarkers = []string{"if ", "unless ", "depending on", "only when"}

	// stepMarkerPattern matches the "1." or "2)" marker that starts an
	// explicit numbered step. Step text runs to the next marker.
	stepMarkerPattern = regexp.MustCompile(`(?m)(?:^|\s)\d+[.)]\s+`)
)

// ExtractHints scans request text for sequencing, parallel, and conditional
// markers plus explicit numbered steps. The scan is case-insensitive and
// purely lexical.
func ExtractHints(request string) RequestHints {
	lower := strings.ToLower(request)

	hints := RequestHints{}
	for _, marker := range sequencingMarkers {
		if containsWord(lower, marker) {
			hints.HasSequencing = true
			break
		}
	}
	for _, marker := range parallelMarkers {
		if strings.Contains(lower, marker) {
			hints.HasParallel = true
			break
		}
	}
	for _, marker := range conditionalMarkers {
		if strings.Contains(lower, marker) {
			hints.HasConditional = true
			break
		}
	}

	markers := stepMarkerPattern.FindAllStringIndex(request, -1)
	for i, m := range markers {
		start := m[1]
		end := len(request)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		step := request[start:end]
		if nl := strings.IndexByte(step, '\n'); nl >= 0 {
			step = step[:nl]
		}
		step = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(step), ".;,"))
		if step != "" {
			hints.NumberedSteps = append(hints.NumberedSteps, step)
		}
	}

	return hints
}

// containsWord reports whether text contains marker bounded by non-letters,
// so "first" does not match inside "firstname".
func containsWord(text, marker string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], marker)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(marker)
		beforeOK := start == 0 || !isLetter(text[start-1])
		afterOK := end == len(text) || !isLetter(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
