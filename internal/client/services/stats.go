package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/clouddash/internal/client/client"
	"github.com/dmitrijs2005/clouddash/internal/client/models"
	"github.com/dmitrijs2005/clouddash/internal/client/repositories/localstore"
	"github.com/dmitrijs2005/clouddash/internal/logging"
)

// FormatShare is one file extension with its share of all files.
type FormatShare struct {
	Extension string
	Count     int64
	Percent   float64
}

// StatsReport is what the statistics view shows.
type StatsReport struct {
	Stats   models.Statistics
	Formats []FormatShare
	// FormatsRefreshed is true when the formats were fetched by this call
	// rather than served from memory.
	FormatsRefreshed bool
	// FormatsErr is set when the breakdown could not be fetched; Stats is
	// still valid then.
	FormatsErr error
}

// StatsService reads usage statistics. The per-format breakdown is only
// refetched when the total file count moves.
type StatsService struct {
	api  client.StatsAPI
	repo localstore.Repository
	log  logging.Logger

	mu      sync.Mutex
	formats []FormatShare
}

func NewStatsService(api client.StatsAPI, repo localstore.Repository, log logging.Logger) *StatsService {
	if log == nil {
		log = logging.Nop()
	}
	return &StatsService{api: api, repo: repo, log: log.With("component", "stats")}
}

func (s *StatsService) Fetch(ctx context.Context) (StatsReport, error) {
	stats, err := s.api.Statistics(ctx)
	if err != nil {
		return StatsReport{}, fmt.Errorf("statistics: %w", err)
	}
	report := StatsReport{Stats: stats}
	total := strconv.FormatInt(stats.TotalFiles, 10)

	cached, ok, err := s.repo.Get(ctx, KeyTotalFiles)
	if err != nil {
		s.log.Warn(ctx, "cached total unavailable", "error", err)
		ok = false
	}

	s.mu.Lock()
	have := s.formats != nil
	report.Formats = s.formats
	s.mu.Unlock()

	if ok && have && cached == total {
		return report, nil
	}

	counts, err := s.api.FileFormats(ctx)
	if err != nil {
		s.log.Warn(ctx, "file formats not loaded", "error", err)
		report.FormatsErr = fmt.Errorf("file formats: %w", err)
		return report, nil
	}
	shares := Shares(counts)

	s.mu.Lock()
	s.formats = shares
	s.mu.Unlock()

	if err := s.repo.Set(ctx, KeyTotalFiles, total); err != nil {
		s.log.Warn(ctx, "total not cached", "error", err)
	}

	report.Formats = shares
	report.FormatsRefreshed = true
	return report, nil
}

// Shares converts raw counts to percentages, largest first.
func Shares(counts []models.FormatCount) []FormatShare {
	var sum int64
	for _, c := range counts {
		sum += c.Count
	}
	out := make([]FormatShare, 0, len(counts))
	for _, c := range counts {
		var pct float64
		if sum > 0 {
			pct = float64(c.Count) * 100 / float64(sum)
		}
		out = append(out, FormatShare{Extension: c.Extension, Count: c.Count, Percent: pct})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
