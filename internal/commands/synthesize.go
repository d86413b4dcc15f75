package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dotcommander/pai/internal/capture"
	"github.com/dotcommander/pai/internal/models"
	"github.com/dotcommander/pai/internal/synthesis"
)

// NewSynthesizeCmd creates the weekly synthesis command.
func NewSynthesizeCmd() *cobra.Command {
	var (
		force  bool
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "synthesize",
		Short: "Generate this week's learning synthesis report",
		Long:  "Analyzes the last seven days of ratings and learnings and writes SYNTHESIS/<year>-<MM>/week-<NN>.md. An existing report is kept unless --force is set.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return cmdErr(cmd, err)
			}
			synth := synthesis.New(st, capture.ConfiguredVocabulary().Patterns)

			if dryRun {
				now := st.Now()
				report, err := synth.Build(now)
				if err != nil {
					return cmdErr(cmd, err)
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), synthesis.Render(report, now))
				return err
			}

			report, err := synth.Generate(force)
			if err != nil {
				return cmdErr(cmd, err)
			}

			type resp struct {
				Generated bool                 `json:"generated"`
				Year      int                  `json:"year"`
				Week      int                  `json:"week"`
				Path      string               `json:"path"`
				Report    *models.WeeklyReport `json:"report,omitempty"`
			}
			if report == nil {
				now := st.Now()
				year, week := now.Year(), synthesis.WeekNumber(now)
				return printSuccess(cmd, resp{Year: year, Week: week, Path: st.ReportPath(year, week)})
			}
			return printSuccess(cmd, resp{
				Generated: true,
				Year:      report.Year,
				Week:      report.WeekNumber,
				Path:      report.Path,
				Report:    report,
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Regenerate even if this week's report exists")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the rendered report without writing it")
	return cmd
}

// NewReportCmd creates the command that shows the newest weekly report.
func NewReportCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the latest weekly synthesis report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return cmdErr(cmd, err)
			}
			path, content, found, err := st.LatestReport()
			if err != nil {
				return cmdErr(cmd, err)
			}
			if !found {
				return cmdErr(cmd, errors.New("no weekly report yet; run `pai synthesize`"))
			}
			if raw {
				_, err = fmt.Fprint(cmd.OutOrStdout(), content)
				return err
			}

			type resp struct {
				Path    string `json:"path"`
				Content string `json:"content"`
			}
			return printSuccess(cmd, resp{Path: path, Content: content})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the Markdown instead of the JSON envelope")
	return cmd
}
