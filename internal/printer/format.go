package printer

import (
	"time"

	"github.com/dustin/go-humanize"
)

// FormatBytes returns a human-readable byte size string, e.g. "1.5 KiB".
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}

// TimeAgo returns a human-readable relative time string, e.g. "3 minutes ago".
func TimeAgo(t time.Time) string {
	return humanize.Time(t)
}

// FormatTimestamp returns a formatted timestamp string in UTC.
// Format: "2006-01-02 15:04:05 UTC".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
