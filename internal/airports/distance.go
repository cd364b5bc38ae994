package airports

import (
	"strings"

	"github.com/nivasraf/caai-logbook/internal/types"
)

// FillStats reports what a FillDistances pass did.
type FillStats struct {
	Filled   int      `json:"filled"`
	Skipped  int      `json:"skipped"`
	NotFound []string `json:"not_found,omitempty"`
}

// FillDistances populates DistanceNM for every record that lacks one.
// Same-airport legs (pattern work) get 0; legs with an unknown airport are
// left alone and the unknown codes are reported, except training-device
// placeholders. A record with a distance already set keeps it, since it
// may reflect the actual routing rather than the great-circle leg.
func (db *DB) FillDistances(recs []types.FlightRecord) FillStats {
	var st FillStats
	notFound := make(map[string]bool)

	for i := range recs {
		from := strings.TrimSpace(recs[i].From)
		to := strings.TrimSpace(recs[i].To)

		if from == "" || to == "" {
			st.Skipped++
			continue
		}
		if from == to {
			// Pattern work: distance is zero by definition.
			st.Filled++
			continue
		}

		fromCoords, fromOK := db.Lookup(from)
		toCoords, toOK := db.Lookup(to)
		if !fromOK || !toOK {
			if !fromOK && !IsSimulatorEntry(from) {
				notFound[from] = true
			}
			if !toOK && !IsSimulatorEntry(to) {
				notFound[to] = true
			}
			st.Skipped++
			continue
		}

		if recs[i].DistanceNM == 0 {
			recs[i].DistanceNM = HaversineNM(fromCoords, toCoords)
			st.Filled++
		}
	}

	st.NotFound = sortedKeys(notFound)
	return st
}
