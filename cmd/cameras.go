package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"

	"github.com/smazurov/ptzdeck/internal/models"
)

// CreateCamerasCmd creates the cameras command.
func CreateCamerasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cameras",
		Short: "List and manage backend cameras",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List cameras with their control and preview status",
		Args:  cobra.NoArgs,
		Run: humacli.WithOptions(run(func(_ *cobra.Command, _ []string, s *session) error {
			ctx, cancel := s.context()
			defer cancel()
			cams, err := s.client.ListCameras(ctx)
			if err != nil {
				return err
			}
			return s.print(cams, func(w *tabwriter.Writer) {
				if len(cams) == 0 {
					fmt.Fprintln(w, "No cameras configured.")
					return
				}
				fmt.Fprintln(w, "ID\tNAME\tIP\tSOURCE\tCONTROL\tPREVIEW\tSTREAM")
				for _, c := range cams {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
						c.ID, orDash(c.Name), orDash(c.IP), sourceOf(c),
						orDash(string(c.ControlStatus)), orDash(string(c.PreviewStatus)), orDash(c.StreamURL))
				}
			})
		})),
	}
	addJSONFlag(list)

	var confirmed bool
	del := &cobra.Command{
		Use:   "delete <camera-id>",
		Short: "Delete a camera",
		Args:  cobra.ExactArgs(1),
		Run: humacli.WithOptions(run(func(cmd *cobra.Command, args []string, s *session) error {
			if !confirmed {
				return fmt.Errorf("refusing to delete %s without --yes", args[0])
			}
			ctx, cancel := s.context()
			defer cancel()
			if err := s.client.DeleteCamera(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		})),
	}
	del.Flags().BoolVarP(&confirmed, "yes", "y", false, "Confirm the delete")

	restart := &cobra.Command{
		Use:   "restart <camera-id>",
		Short: "Restart a camera's preview pipeline",
		Args:  cobra.ExactArgs(1),
		Run: humacli.WithOptions(run(func(cmd *cobra.Command, args []string, s *session) error {
			ctx, cancel := s.context()
			defer cancel()
			if err := s.client.RestartPreview(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Preview restart requested for %s\n", args[0])
			return nil
		})),
	}

	cmd.AddCommand(list, del, restart)
	return cmd
}

func sourceOf(c models.Camera) string {
	if c.Preview.Type == models.PreviewNDI && c.Preview.NDISource != nil {
		return "ndi:" + *c.Preview.NDISource
	}
	if c.Preview.Type == "" {
		return "-"
	}
	return string(c.Preview.Type)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
