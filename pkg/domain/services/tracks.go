package services

import (
	"sort"

	"github.com/vsinha/lineplan/pkg/domain/entities"
)

// AssignmentTracks lays a line's assignments out in rows such that no two
// assignments in a row overlap. Assignments are taken by start date and each
// goes into the first row that has room.
func AssignmentTracks(line entities.ProductionLine) [][]entities.Assignment {
	sorted := append([]entities.Assignment{}, line.Assignments...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartDate.Before(sorted[j].StartDate)
	})

	var tracks [][]entities.Assignment
	for _, a := range sorted {
		placed := false
		for i, track := range tracks {
			if !trackOverlaps(track, a) {
				tracks[i] = append(track, a)
				placed = true
				break
			}
		}
		if !placed {
			tracks = append(tracks, []entities.Assignment{a})
		}
	}
	return tracks
}

func trackOverlaps(track []entities.Assignment, a entities.Assignment) bool {
	for _, existing := range track {
		if entities.IntervalsOverlap(existing.StartDate, existing.EndDate, a.StartDate, a.EndDate) {
			return true
		}
	}
	return false
}
