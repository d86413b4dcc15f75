package server

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// weeklySynthesisSchedule fires every Monday at 09:00 in the store's zone.
const weeklySynthesisSchedule = "0 9 * * 1"

func (s *Server) newScheduler() (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(s.store.Location()))
	if _, err := c.AddFunc(weeklySynthesisSchedule, func() { s.RunSynthesis() }); err != nil {
		return nil, err
	}
	return c, nil
}

// RunSynthesis generates this week's report unless it already exists and
// returns the result label recorded in metrics: generated, skipped or error.
func (s *Server) RunSynthesis() string {
	result := "generated"
	report, err := s.synth.Generate(false)
	switch {
	case err != nil:
		result = "error"
		slog.Default().Error("scheduled synthesis failed", "error", err)
	case report == nil:
		result = "skipped"
	default:
		s.cache.Delete(reportCacheKey)
		slog.Default().Info("weekly synthesis written", "path", report.Path, "week", report.WeekNumber)
	}
	s.metrics.SynthesisRunsTotal.WithLabelValues(result).Inc()
	return result
}
