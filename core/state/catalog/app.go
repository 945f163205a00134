package catalog

import (
	"strings"

	"github.com/eagraf/habitat-store/core/state/library"
	"golang.org/x/mod/semver"
)

// App is one catalog listing. The catalog layer that fetches these lives outside this
// module; callers hand apps to the install service directly.
type App struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Versions    []Version `json:"versions" yaml:"versions"`
}

type Version struct {
	Number   string            `json:"number" yaml:"number"`
	Variants []library.Variant `json:"variants" yaml:"variants"`
}

// Latest returns the highest version by semantic version order. Versions that are not
// valid semver sort below every valid one.
func (a *App) Latest() (*Version, bool) {
	var latest *Version
	for i := range a.Versions {
		v := &a.Versions[i]
		if latest == nil || compareVersions(v.Number, latest.Number) > 0 {
			latest = v
		}
	}
	return latest, latest != nil
}

func (a *App) Version(number string) (*Version, bool) {
	for i := range a.Versions {
		if a.Versions[i].Number == number {
			return &a.Versions[i], true
		}
	}
	return nil, false
}

func compareVersions(a, b string) int {
	return semver.Compare(canonical(a), canonical(b))
}

// semver wants a leading "v"; catalog authors usually leave it off.
func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
