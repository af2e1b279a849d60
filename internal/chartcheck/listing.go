package chartcheck

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/okian/top2000/internal/domain/model"
)

// fetchListing reads page 1 to learn the page count, then the remaining
// pages concurrently. Pages are returned in order.
func fetchListing(ctx context.Context, c *Client, cfg *Config) ([]model.Page, error) {
	var first model.Page
	if err := c.get(ctx, pagePath(1, cfg.PageSize), &first); err != nil {
		return nil, err
	}

	pages := make([]model.Page, max(first.TotalPages, 1))
	pages[0] = first

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for p := 2; p <= first.TotalPages; p++ {
		g.Go(func() error {
			var page model.Page
			if err := c.get(gctx, pagePath(p, cfg.PageSize), &page); err != nil {
				return err
			}
			pages[p-1] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

func pagePath(page, size int) string {
	return fmt.Sprintf("/api/songs?page=%d&pageSize=%d", page, size)
}

// fetchDetails loads the detail of each song id concurrently.
func fetchDetails(ctx context.Context, c *Client, cfg *Config, ids []int) (map[int]model.SongDetail, error) {
	out := make(map[int]model.SongDetail, len(ids))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for _, id := range ids {
		g.Go(func() error {
			var d model.SongDetail
			if err := c.get(gctx, fmt.Sprintf("/api/songs/%d", id), &d); err != nil {
				return err
			}
			mu.Lock()
			out[id] = d
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// reports holds every year report for one year.
type reports struct {
	fresh     []model.YearEntry
	lost      []model.LostEntry
	reentries []model.YearEntry
	unchanged []model.YearEntry
	dropped   []model.DroppedSong
	summary   model.YearSummary
}

func fetchReports(ctx context.Context, c *Client, year int) (reports, error) {
	var r reports
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.get(gctx, fmt.Sprintf("/api/statistics/new-entries/%d", year), &r.fresh) })
	g.Go(func() error { return c.get(gctx, fmt.Sprintf("/api/statistics/lost-entries/%d", year), &r.lost) })
	g.Go(func() error { return c.get(gctx, fmt.Sprintf("/api/statistics/reentries/%d", year), &r.reentries) })
	g.Go(func() error { return c.get(gctx, fmt.Sprintf("/api/statistics/unchanged/%d", year), &r.unchanged) })
	g.Go(func() error {
		return c.get(gctx, fmt.Sprintf("/api/songs/statistics/dropped-songs?year=%d", year), &r.dropped)
	})
	g.Go(func() error { return c.get(gctx, fmt.Sprintf("/api/statistics/summary/%d", year), &r.summary) })
	return r, g.Wait()
}
