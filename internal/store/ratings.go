package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/dotcommander/pai/internal/models"
)

// NewRating stamps a rating with the current local time.
func (s *Store) NewRating(rating int, sessionID, comment string) models.Rating {
	if sessionID == "" {
		sessionID = models.UnknownSession
	}
	return models.Rating{
		Timestamp: s.Now().Format(models.RatingTimestampLayout),
		Rating:    rating,
		SessionID: sessionID,
		Comment:   comment,
	}
}

// AppendRating appends r as one JSON line to the rating log.
func (s *Store) AppendRating(r models.Rating) error {
	path := s.RatingsPath()
	if err := ensureParent(path); err != nil {
		return fmt.Errorf("create signals dir: %w", err)
	}

	line, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode rating: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm) //nolint:gosec // G304: path is under the configured root
	if err != nil {
		return fmt.Errorf("open ratings: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append rating: %w", err)
	}
	return nil
}

// LoadRatings returns ratings from the last days days.
func (s *Store) LoadRatings(days int) ([]models.Rating, error) {
	return s.LoadRatingsSince(s.Now().AddDate(0, 0, -days))
}

// LoadRatingsSince returns every rating at or after cutoff, in file order.
// Malformed lines and unparseable timestamps are skipped.
func (s *Store) LoadRatingsSince(cutoff time.Time) ([]models.Rating, error) {
	f, err := os.Open(s.RatingsPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []models.Rating{}, nil
		}
		return nil, fmt.Errorf("open ratings: %w", err)
	}
	defer func() { _ = f.Close() }()

	ratings := []models.Rating{}
	// ReadBytes has no per-line limit, so one oversized line cannot hide the rest.
	reader := bufio.NewReader(f)
	for {
		raw, readErr := reader.ReadBytes('\n')
		if r, ok := s.parseRatingLine(raw); ok && !r.ts.Before(cutoff) {
			ratings = append(ratings, r.Rating)
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read ratings: %w", readErr)
		}
	}
	return ratings, nil
}

type timedRating struct {
	models.Rating
	ts time.Time
}

func (s *Store) parseRatingLine(raw []byte) (timedRating, bool) {
	line := bytes.TrimSpace(raw)
	if len(line) == 0 {
		return timedRating{}, false
	}
	var r models.Rating
	if err := json.Unmarshal(line, &r); err != nil {
		return timedRating{}, false
	}
	ts, err := models.ParseLocalTimestamp(r.Timestamp, s.loc)
	if err != nil {
		return timedRating{}, false
	}
	return timedRating{Rating: r, ts: ts}, true
}
