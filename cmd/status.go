package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"

	"github.com/smazurov/ptzdeck/internal/editor"
	"github.com/smazurov/ptzdeck/internal/models"
	"github.com/smazurov/ptzdeck/internal/version"
)

// statusReport is the output of the status command.
type statusReport struct {
	Version string            `json:"version"`
	Backend string            `json:"backend"`
	Health  models.Health     `json:"health"`
	Cameras int               `json:"cameras"`
	Online  int               `json:"online"`
	Logs    []models.LogEntry `json:"logs,omitempty"`
}

// CreateStatusCmd creates the status command.
func CreateStatusCmd() *cobra.Command {
	var logs int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show backend health and a camera summary",
		Args:  cobra.NoArgs,
		Run: humacli.WithOptions(run(func(_ *cobra.Command, _ []string, s *session) error {
			ctx, cancel := s.context()
			defer cancel()

			health, err := s.client.Health(ctx)
			if err != nil {
				return fmt.Errorf("backend %s unreachable: %w", s.client.BaseURL(), err)
			}
			cams, err := s.client.ListCameras(ctx)
			if err != nil {
				return err
			}
			report := statusReport{
				Version: version.Get().Version,
				Backend: s.client.BaseURL(),
				Health:  health,
				Cameras: len(cams),
			}
			for _, c := range cams {
				if c.Online() {
					report.Online++
				}
			}
			if logs > 0 {
				if report.Logs, err = s.client.Logs(ctx, logs); err != nil {
					return err
				}
			}

			return s.print(report, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "Backend:\t%s\n", report.Backend)
				fmt.Fprintf(w, "Health:\t%s\n", report.Health.Status)
				fmt.Fprintf(w, "Preview errors:\t%d\n", report.Health.PreviewError)
				fmt.Fprintf(w, "Control errors:\t%d\n", report.Health.ControlError)
				fmt.Fprintf(w, "Cameras:\t%d (%d online)\n", report.Cameras, report.Online)
				for _, e := range report.Logs {
					fmt.Fprintf(w, "%s\t%s\t%s\n", e.TS, e.Level, e.Message)
				}
			})
		})),
	}
	cmd.Flags().IntVar(&logs, "logs", 0, "Also print the last N backend log entries")
	addJSONFlag(cmd)
	return cmd
}

// CreateNDICmd creates the ndi command.
func CreateNDICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ndi",
		Short: "Discover NDI sources visible to the backend",
		Args:  cobra.NoArgs,
		Run: humacli.WithOptions(run(func(_ *cobra.Command, _ []string, s *session) error {
			ctx, cancel := s.context()
			defer cancel()
			sources, err := s.client.ListNDISources(ctx)
			if err != nil {
				return err
			}
			return s.print(sources, func(w *tabwriter.Writer) {
				for _, opt := range editor.NDIOptions(sources) {
					if opt.Value == "" && !opt.Disabled {
						continue
					}
					fmt.Fprintln(w, opt.Label)
				}
			})
		})),
	}
	addJSONFlag(cmd)
	return cmd
}
