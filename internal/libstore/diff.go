package libstore

import (
	"github.com/eagraf/habitat-store/core/state/library"
	"github.com/rs/zerolog/log"
	"github.com/wI2L/jsondiff"
)

// logChange records what an update did to an entry as a JSON patch.
func logChange(appID string, before, after library.Data) {
	patch, err := jsondiff.Compare(before, after)
	if err != nil {
		log.Warn().Err(err).Msgf("Could not diff library entry %s", appID)
		return
	}
	if len(patch) == 0 {
		return
	}
	log.Debug().Msgf("Library entry %s changed: %s", appID, patch)
}
