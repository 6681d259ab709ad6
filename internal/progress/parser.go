package progress

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// EventKind tags the parse result of one line of yt-dlp output.
type EventKind int

const (
	// Ignored means the line carries no actionable information.
	Ignored EventKind = iota
	// Update is a progress update; strictly informational, never a
	// status change.
	Update
	// Success is a terminal success signal.
	Success
	// Failure is a terminal failure signal with a diagnostic message.
	Failure
)

// Event is the structured result of parsing one output line.
type Event struct {
	Kind      EventKind
	Percent   float64
	TotalSize string
	Speed     string
	ETA       string
	Filename  string
	Message   string
}

// yt-dlp emits human-oriented text; the parser is deliberately permissive
// and never fails on unrecognized or malformed lines.
var (
	// [download]  45.2% of 1.23GiB at 2.34MiB/s ETA 00:05:23
	downloadRegex = regexp.MustCompile(
		`\[download\]\s+(\d+\.?\d*)%\s+of\s+~?\s*([\d.]+\w+)?\s*(?:at\s+([\d.]+\w+/s))?\s*(?:ETA\s+(\d+:\d+(?::\d+)?))?`)

	// [download] Destination: path/to/file.mp4
	destinationRegex = regexp.MustCompile(`\[download\] Destination: (.+)`)

	// [Merger] Merging formats into "path/to/file.mp4"
	mergerRegex = regexp.MustCompile(`\[Merger\] Merging formats into "(.+)"`)

	// [download] path/to/file.mp4 has already been downloaded
	alreadyRegex = regexp.MustCompile(`\[download\] (.+) has already been downloaded`)

	errorRegex = regexp.MustCompile(`^ERROR:\s*(.+)`)
)

// Parse translates one line of downloader output into an Event.
func Parse(line string) Event {
	line = strings.TrimSpace(line)
	if line == "" {
		return Event{Kind: Ignored}
	}

	if m := errorRegex.FindStringSubmatch(line); m != nil {
		return Event{Kind: Failure, Message: m[1]}
	}

	if m := alreadyRegex.FindStringSubmatch(line); m != nil {
		return Event{Kind: Success, Filename: filepath.Base(m[1])}
	}

	if m := destinationRegex.FindStringSubmatch(line); m != nil {
		return Event{Kind: Update, Filename: filepath.Base(m[1]), Message: m[1]}
	}

	if m := mergerRegex.FindStringSubmatch(line); m != nil {
		return Event{Kind: Update, Filename: filepath.Base(m[1]), Message: m[1]}
	}

	if m := downloadRegex.FindStringSubmatch(line); m != nil {
		percent, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Event{Kind: Ignored}
		}
		return Event{
			Kind:      Update,
			Percent:   percent,
			TotalSize: m[2],
			Speed:     m[3],
			ETA:       m[4],
		}
	}

	return Event{Kind: Ignored}
}
