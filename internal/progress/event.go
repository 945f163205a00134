package progress

import "fmt"

type Kind int

const (
	KindIndeterminate Kind = iota
	KindDownload
)

func (k Kind) String() string {
	switch k {
	case KindDownload:
		return "download"
	case KindIndeterminate:
		return "indeterminate"
	}
	return "unknown"
}

// Event is one progress update from a worker. Download events carry byte counts,
// everything else is a free-form status line.
type Event struct {
	Kind       Kind
	Downloaded int64
	Total      int64
	HasTotal   bool
	Status     string
}

func Download(downloaded, total int64) Event {
	return Event{Kind: KindDownload, Downloaded: downloaded, Total: total, HasTotal: true}
}

func DownloadUnknownTotal(downloaded int64) Event {
	return Event{Kind: KindDownload, Downloaded: downloaded}
}

func Indeterminate(status string) Event {
	return Event{Kind: KindIndeterminate, Status: status}
}

// Fraction is the completed share of a download with a known, nonzero total.
func (e Event) Fraction() (float64, bool) {
	if e.Kind != KindDownload || !e.HasTotal || e.Total <= 0 {
		return 0, false
	}
	return float64(e.Downloaded) / float64(e.Total), true
}

func (e Event) String() string {
	if e.Kind == KindDownload {
		if e.HasTotal {
			return fmt.Sprintf("download %d/%d", e.Downloaded, e.Total)
		}
		return fmt.Sprintf("download %d/?", e.Downloaded)
	}
	return e.Status
}
