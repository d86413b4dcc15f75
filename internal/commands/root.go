package commands

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dotcommander/pai/internal/app"
)

// Execute runs the CLI application.
func Execute(version string) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel()})))

	root := NewRootCmd(version)
	err := root.Execute()
	if err != nil {
		var pe printedError
		if !errors.As(err, &pe) {
			slog.Error("command failed", "error", err.Error())
		}
	}
	return err
}

// NewRootCmd builds the full command tree.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "pai",
		Short:         "Personal AI memory: ratings, learnings, weekly synthesis and the event relay",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if showVersion {
				type resp struct {
					Version string `json:"version"`
				}
				return printSuccess(cmd, resp{Version: version})
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if dir, err := cmd.Flags().GetString("root"); err == nil && dir != "" {
				app.SetRootOverride(dir)
			}
			if err := app.EnsureConfigDir(); err != nil {
				// Hooks must never fail on an unwritable config dir.
				slog.Default().Debug("config dir unavailable", "error", err)
			}
			if err := app.LoadDotEnv(); err != nil {
				slog.Default().Warn("load .env failed", "error", err)
			}
			return nil
		},
	}

	root.PersistentFlags().String("root", "", "Override the memory root directory (default: $PAI_DIR or ~/.kiro)")
	root.Flags().BoolP("version", "v", false, "version for pai")

	root.AddCommand(NewHookCmd())
	root.AddCommand(NewSynthesizeCmd())
	root.AddCommand(NewReportCmd())
	root.AddCommand(NewRatingsCmd())
	root.AddCommand(NewRelayCmd())
	root.AddCommand(NewStatusCmd())
	root.AddCommand(NewSchemaCmd(root))

	return root
}

func logLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("PAI_LOG_LEVEL"))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
