package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dotcommander/pai/internal/models"
	"github.com/dotcommander/pai/internal/synthesis"
)

// NewRatingsCmd creates the ratings digest command.
func NewRatingsCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "ratings",
		Short: "Summarize recent explicit ratings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return cmdErr(cmd, errors.New("--days must be positive"))
			}
			st, err := openStore()
			if err != nil {
				return cmdErr(cmd, err)
			}
			ratings, err := st.LoadRatings(days)
			if err != nil {
				return cmdErr(cmd, err)
			}

			type resp struct {
				Days    int                    `json:"days"`
				Count   int                    `json:"count"`
				Summary *models.RatingsSummary `json:"summary,omitempty"`
				Ratings []models.Rating        `json:"ratings"`
			}
			if ratings == nil {
				ratings = []models.Rating{}
			}
			return printSuccess(cmd, resp{
				Days:    days,
				Count:   len(ratings),
				Summary: synthesis.AnalyzeRatings(ratings),
				Ratings: ratings,
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "Window in days")
	return cmd
}
