package progress

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const ofSeparator = " of "

// Format renders an event as a single protocol line, without the trailing newline.
// The percentage in front of a download line is for humans reading worker stdout;
// Parse ignores it.
func Format(e Event) string {
	if e.Kind == KindDownload {
		if !e.HasTotal {
			return fmt.Sprintf("%d bytes", e.Downloaded)
		}
		percent := 0
		if f, ok := e.Fraction(); ok {
			percent = int(math.Round(f * 100))
		}
		return fmt.Sprintf("%d%% (%d%s%d)", percent, e.Downloaded, ofSeparator, e.Total)
	}
	return singleLine(e.Status)
}

// Parse decodes one line. A trailing "(<downloaded> of <total>)" makes a download
// event; anything else, including a garbled parenthetical, is an indeterminate status
// carrying the whole line.
func Parse(line string) Event {
	if e, ok := parseDownload(line); ok {
		return e
	}
	return Indeterminate(line)
}

func parseDownload(line string) (Event, bool) {
	trimmed := strings.TrimRight(line, " \r")
	if !strings.HasSuffix(trimmed, ")") {
		return Event{}, false
	}
	open := strings.LastIndexByte(trimmed, '(')
	if open < 0 {
		return Event{}, false
	}
	inner := trimmed[open+1 : len(trimmed)-1]
	downloadedText, totalText, found := strings.Cut(inner, ofSeparator)
	if !found {
		return Event{}, false
	}
	downloaded, ok := parseCount(downloadedText)
	if !ok {
		return Event{}, false
	}
	total, ok := parseCount(totalText)
	if !ok {
		return Event{}, false
	}
	return Download(downloaded, total), true
}

// parseCount accepts plain decimal digits only; signs and spaces are garbage.
func parseCount(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func singleLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
