package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"

	"github.com/smazurov/ptzdeck/internal/events"
	"github.com/smazurov/ptzdeck/internal/logging"
	"github.com/smazurov/ptzdeck/internal/presets"
)

// CreatePresetsCmd creates the presets command.
func CreatePresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List, recall and save camera presets",
	}

	var refresh bool
	list := &cobra.Command{
		Use:   "list <camera-id>",
		Short: "List the presets of a camera",
		Args:  cobra.ExactArgs(1),
		Run: humacli.WithOptions(run(func(_ *cobra.Command, args []string, s *session) error {
			ctx, cancel := s.context()
			defer cancel()
			if refresh {
				if err := s.client.RefreshPresets(ctx, args[0]); err != nil {
					return err
				}
			}
			list, err := s.client.ListPresets(ctx, args[0])
			if err != nil {
				return err
			}
			return s.print(list, func(w *tabwriter.Writer) {
				if len(list) == 0 {
					fmt.Fprintln(w, "No presets.")
					return
				}
				fmt.Fprintln(w, "ID\tNAME")
				for _, p := range list {
					fmt.Fprintf(w, "%s\t%s\n", p.ID, p.Name)
				}
			})
		})),
	}
	list.Flags().BoolVar(&refresh, "refresh", false, "Re-read presets from the device first")
	addJSONFlag(list)

	gotoCmd := &cobra.Command{
		Use:   "goto <camera-id> <preset-id>",
		Short: "Move a camera to a preset",
		Args:  cobra.ExactArgs(2),
		Run: humacli.WithOptions(run(func(cmd *cobra.Command, args []string, s *session) error {
			ctx, cancel := s.context()
			defer cancel()
			if err := s.client.GotoPreset(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moving %s to preset %s\n", args[0], args[1])
			return nil
		})),
	}

	save := &cobra.Command{
		Use:   "save <camera-id> <name>",
		Short: "Save the current position as a preset and wait until it is listed",
		Args:  cobra.ExactArgs(2),
		Run: humacli.WithOptions(run(func(cmd *cobra.Command, args []string, s *session) error {
			mgr := presets.New(presets.Config{
				Source:       s.client,
				PollInterval: s.opts.PresetPollInterval(),
				PollAttempts: s.opts.PresetPollAttempts,
				Timeout:      s.opts.BackendTimeout(),
				Bus:          events.New(),
				Logger:       logging.GetLogger("presets"),
			})
			wait := s.opts.BackendTimeout() + time.Duration(s.opts.PresetPollAttempts+1)*s.opts.PresetPollInterval()
			ctx, cancel := context.WithTimeout(context.Background(), wait)
			defer cancel()
			p, err := mgr.Create(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved preset %s (%s)\n", p.Name, p.ID)
			return nil
		})),
	}

	cmd.AddCommand(list, gotoCmd, save)
	return cmd
}
