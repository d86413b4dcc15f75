package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/dotcommander/pai/internal/app"
	"github.com/dotcommander/pai/internal/capture"
	"github.com/dotcommander/pai/internal/metrics"
	"github.com/dotcommander/pai/internal/models"
	"github.com/dotcommander/pai/internal/server"
	"github.com/dotcommander/pai/internal/store"
)

// NewRelayCmd creates the relay namespace.
func NewRelayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Event relay service and archive queries",
		Args:  cobra.NoArgs,
	}
	cmd.AddCommand(newRelayServeCmd())
	cmd.AddCommand(newRelayHistoryCmd())
	namespaceIndex(cmd)
	return cmd
}

func newRelayServeCmd() *cobra.Command {
	var (
		addr      string
		noArchive bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the event relay, dashboard and weekly synthesis scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return cmdErr(cmd, err)
			}

			var archive *store.EventArchive
			if !noArchive {
				archive, err = store.OpenEventArchive(app.ArchivePath(st.Root()))
				if err != nil {
					return cmdErr(cmd, err)
				}
				defer func() { _ = archive.Close() }()
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := metrics.New()
			if err := metrics.RegisterWith(reg, m); err != nil {
				return cmdErr(cmd, err)
			}

			srv := server.New(server.Config{
				Store:    st,
				Archive:  archive,
				Metrics:  m,
				Gatherer: reg,
				Keywords: capture.ConfiguredVocabulary().Patterns,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if addr == "" {
				addr = app.RelayAddr()
			}
			if err := srv.Run(ctx, addr); err != nil {
				return cmdErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: :$PAI_OBSERVABILITY_PORT or :4000)")
	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "Keep events in memory only")
	return cmd
}

func newRelayHistoryCmd() *cobra.Command {
	var (
		sessionID string
		eventType string
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived events newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := app.GetRootDir()
			if err != nil {
				return cmdErr(cmd, err)
			}
			archive, err := store.OpenEventArchive(app.ArchivePath(root))
			if err != nil {
				return cmdErr(cmd, err)
			}
			defer func() { _ = archive.Close() }()

			events, err := archive.History(cmd.Context(), store.HistoryParams{
				SessionID:     sessionID,
				HookEventType: eventType,
				Limit:         limit,
			})
			if err != nil {
				return cmdErr(cmd, err)
			}

			type resp struct {
				Count  int                    `json:"count"`
				Events []models.ArchivedEvent `json:"events"`
			}
			if events == nil {
				events = []models.ArchivedEvent{}
			}
			return printSuccess(cmd, resp{Count: len(events), Events: events})
		},
	}
	cmd.Flags().StringVar(&sessionID, "session-id", "", "Only events of this session")
	cmd.Flags().StringVar(&eventType, "event-type", "", "Only events of this hook event type")
	cmd.Flags().IntVar(&limit, "limit", 50, "Max events to return")
	return cmd
}
