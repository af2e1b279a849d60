package chartcheck

import (
	"strings"

	"github.com/okian/top2000/internal/domain/model"
)

// Check names reported in violations.
const (
	CheckPartition = "partition"
	CheckMovement  = "movement"
	CheckDetail    = "detail"
	CheckHistory   = "history"
	CheckSlug      = "slug"
	CheckReports   = "reports"
	CheckSummary   = "summary"
)

// verifyListing checks that the pages partition the ranking: positions run
// 1..totalSongs without gaps, each song appears once and every page reports
// the same totals. It also checks the movement arithmetic of each row.
// The page size is the one the server answered with, not the one asked for.
func verifyListing(rep *Report, pages []model.Page) []model.RankedSong {
	var all []model.RankedSong
	if len(pages) == 0 {
		rep.fail(CheckPartition, "no pages")
		return all
	}
	total, pageSize := pages[0].TotalSongs, pages[0].PageSize
	if pageSize < 1 {
		rep.fail(CheckPartition, "page size %d", pageSize)
		return all
	}

	for i, p := range pages {
		if p.CurrentPage != i+1 {
			rep.fail(CheckPartition, "page %d reports currentPage %d", i+1, p.CurrentPage)
		}
		if p.TotalSongs != total || p.TotalPages != pages[0].TotalPages {
			rep.fail(CheckPartition, "page %d reports totals %d/%d, page 1 reports %d/%d",
				i+1, p.TotalSongs, p.TotalPages, total, pages[0].TotalPages)
		}
		if len(p.Songs) > pageSize {
			rep.fail(CheckPartition, "page %d has %d songs, page size is %d", i+1, len(p.Songs), pageSize)
		}
		all = append(all, p.Songs...)
	}

	if len(all) != total {
		rep.fail(CheckPartition, "pages hold %d songs, totalSongs is %d", len(all), total)
	}
	if want := (total + pageSize - 1) / pageSize; total > 0 && pages[0].TotalPages != want {
		rep.fail(CheckPartition, "totalPages is %d, want %d", pages[0].TotalPages, want)
	}

	seen := make(map[int]bool, len(all))
	for i, s := range all {
		if s.CurrentPosition != i+1 {
			rep.fail(CheckPartition, "row %d holds position %d", i+1, s.CurrentPosition)
		}
		if seen[s.SongID] {
			rep.fail(CheckPartition, "song %d listed twice", s.SongID)
		}
		seen[s.SongID] = true
		verifyMovement(rep, s)
	}
	return all
}

func verifyMovement(rep *Report, s model.RankedSong) {
	switch {
	case (s.PreviousPosition == nil) != (s.PositionChange == nil):
		rep.fail(CheckMovement, "song %d: previousPosition and positionChange must both be null or both set", s.SongID)
	case s.PreviousPosition != nil && *s.PositionChange != *s.PreviousPosition-s.CurrentPosition:
		rep.fail(CheckMovement, "song %d: change %d != %d - %d",
			s.SongID, *s.PositionChange, *s.PreviousPosition, s.CurrentPosition)
	}
}

// verifyDetails checks details against the listing rows and the history
// window ending at year.
func verifyDetails(rep *Report, listing []model.RankedSong, details map[int]model.SongDetail, year int) {
	for _, row := range listing {
		d, ok := details[row.SongID]
		if !ok {
			continue
		}
		if d.CurrentPosition != row.CurrentPosition || !sameInt(d.PreviousPosition, row.PreviousPosition) {
			rep.fail(CheckDetail, "song %d: detail disagrees with listing", row.SongID)
		}
		verifyMovement(rep, d.RankedSong)

		h := d.History
		if len(h) == 0 || h[len(h)-1] != (model.HistoryPoint{Year: year, Position: d.CurrentPosition}) {
			rep.fail(CheckHistory, "song %d: history does not end at %d/#%d", row.SongID, year, d.CurrentPosition)
		}
		for i, p := range h {
			if i > 0 && p.Year <= h[i-1].Year {
				rep.fail(CheckHistory, "song %d: history years not ascending", row.SongID)
			}
			if p.Year < year-4 || p.Year > year {
				rep.fail(CheckHistory, "song %d: history year %d outside window", row.SongID, p.Year)
			}
		}
	}
}

// verifySlug checks that a slug lookup lands on a song with the same title.
// Titles with a literal hyphen cannot round-trip and are skipped by callers.
func verifySlug(rep *Report, title string, got model.SongDetail) {
	if !strings.EqualFold(got.Title, title) {
		rep.fail(CheckSlug, "slug for %q resolved to %q", title, got.Title)
	}
}

// verifyReports checks the year reports against each other and, when the
// year is the current one, against the listing.
func verifyReports(rep *Report, r reports, listing []model.RankedSong, current bool) {
	fresh := make(map[int]bool, len(r.fresh))
	for _, e := range r.fresh {
		fresh[e.SongID] = true
	}

	for _, e := range r.reentries {
		if !fresh[e.SongID] {
			rep.fail(CheckReports, "re-entry %d is not a new entry", e.SongID)
		}
	}
	for _, e := range r.unchanged {
		if fresh[e.SongID] {
			rep.fail(CheckReports, "song %d is both new and unchanged", e.SongID)
		}
	}
	for i, d := range r.dropped {
		if d.PositionsDropped <= 0 || d.PositionsDropped != d.CurrentPosition-d.PreviousPosition {
			rep.fail(CheckReports, "dropped song %d: %d != %d - %d",
				d.SongID, d.PositionsDropped, d.CurrentPosition, d.PreviousPosition)
		}
		if i > 0 && d.PositionsDropped > r.dropped[i-1].PositionsDropped {
			rep.fail(CheckReports, "dropped songs not ordered by fall at %d", d.SongID)
		}
	}
	for i := 1; i < len(r.fresh); i++ {
		if r.fresh[i].Position <= r.fresh[i-1].Position {
			rep.fail(CheckReports, "new entries not ordered by position at %d", r.fresh[i].SongID)
		}
	}
	for i := 1; i < len(r.lost); i++ {
		if r.lost[i].PreviousPosition <= r.lost[i-1].PreviousPosition {
			rep.fail(CheckReports, "lost entries not ordered by previous position at %d", r.lost[i].SongID)
		}
	}

	s := r.summary
	if s.NewEntries != len(r.fresh) || s.LostEntries != len(r.lost) || s.Reentries != len(r.reentries) ||
		s.Unchanged != len(r.unchanged) || s.Dropped != len(r.dropped) {
		rep.fail(CheckSummary, "summary %+v disagrees with report sizes %d/%d/%d/%d/%d",
			s, len(r.fresh), len(r.lost), len(r.reentries), len(r.unchanged), len(r.dropped))
	}

	if !current {
		return
	}
	newInListing, sameInListing := 0, 0
	for _, row := range listing {
		switch {
		case row.PreviousPosition == nil:
			newInListing++
			if !fresh[row.SongID] {
				rep.fail(CheckReports, "song %d has no previous position but is not a new entry", row.SongID)
			}
		case *row.PositionChange == 0:
			sameInListing++
		}
	}
	if newInListing != len(r.fresh) {
		rep.fail(CheckReports, "listing has %d new songs, report has %d", newInListing, len(r.fresh))
	}
	if sameInListing != len(r.unchanged) {
		rep.fail(CheckReports, "listing has %d unchanged songs, report has %d", sameInListing, len(r.unchanged))
	}
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
