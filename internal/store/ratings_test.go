package store

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/pai/internal/models"
)

func TestAppendRating_WritesOneLinePerRating(t *testing.T) {
	now := time.Date(2026, 10, 14, 9, 15, 0, 0, testZone)
	s := newTestStore(t, now)

	r := s.NewRating(8, "", "good work")
	require.Equal(t, "2026-10-14T09:15:00", r.Timestamp)
	require.Equal(t, models.UnknownSession, r.SessionID)

	require.NoError(t, s.AppendRating(r))
	require.NoError(t, s.AppendRating(s.NewRating(3, "s1", "")))

	data, err := os.ReadFile(s.RatingsPath())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	require.JSONEq(t, `{"timestamp":"2026-10-14T09:15:00","rating":8,"session_id":"unknown","comment":"good work"}`, lines[0])
}

func TestLoadRatingsSince_FiltersAndSkipsBadLines(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, testZone)
	s := newTestStore(t, now)

	writeFile(t, s.RatingsPath(), strings.Join([]string{
		`{"timestamp":"2026-10-01T10:00:00","rating":2,"session_id":"old","comment":""}`,
		`not json`,
		`{"timestamp":"yesterday","rating":5,"session_id":"bad-ts","comment":""}`,
		``,
		`{"timestamp":"2026-10-10T10:00:00","rating":7,"session_id":"a","comment":"ok"}`,
		`{"timestamp":"2026-10-14T11:00:00","rating":9,"session_id":"b","comment":""}`,
	}, "\n"))

	got, err := s.LoadRatings(7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].SessionID)
	require.Equal(t, "b", got[1].SessionID)
}

func TestLoadRatingsSince_MissingFile(t *testing.T) {
	s := newTestStore(t, time.Now())
	got, err := s.LoadRatings(7)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestLoadRatingsSince_OversizedLineDoesNotHideOthers(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, testZone)
	s := newTestStore(t, now)

	// json.Marshal escapes each '<' as \u003c, so the stored line is several MB.
	require.NoError(t, s.AppendRating(s.NewRating(4, "big", strings.Repeat("<", 300_000))))
	require.NoError(t, s.AppendRating(s.NewRating(9, "small", "")))

	info, err := os.Stat(s.RatingsPath())
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(1<<20))

	got, err := s.LoadRatings(7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "big", got[0].SessionID)
	require.Len(t, got[0].Comment, 300_000)
	require.Equal(t, "small", got[1].SessionID)
}

func TestLoadRatingsSince_TruncatedLineSkipped(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, testZone)
	s := newTestStore(t, now)

	writeFile(t, s.RatingsPath(), `{"timestamp":"2026-10-14T11:00:00","rating":9,"session_id":"b","comment":""}`+"\n"+
		`{"timestamp":"2026-10-14T11:30:00","rating":`)

	got, err := s.LoadRatings(7)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "b", got[0].SessionID)
}

func TestAppendThenLoadRatings_RoundTrip(t *testing.T) {
	var now time.Time
	clock := func() time.Time { return now }
	s := New(t.TempDir(), WithLocation(testZone), WithClock(clock))

	now = time.Date(2026, 10, 1, 8, 0, 0, 0, testZone)
	old := s.NewRating(2, "s-old", "too old")
	require.NoError(t, s.AppendRating(old))

	now = time.Date(2026, 10, 14, 9, 15, 30, 0, testZone)
	fresh := s.NewRating(7, "s-new", "solid: mostly right")
	require.NoError(t, s.AppendRating(fresh))

	got, err := s.LoadRatings(7)
	require.NoError(t, err)
	require.Equal(t, []models.Rating{fresh}, got)

	all, err := s.LoadRatings(30)
	require.NoError(t, err)
	require.Equal(t, []models.Rating{old, fresh}, all)
}
