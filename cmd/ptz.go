package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"

	"github.com/smazurov/ptzdeck/internal/ptz"
)

// CreatePTZCmd creates the ptz command.
func CreatePTZCmd() *cobra.Command {
	var speed float64
	var hold time.Duration

	cmd := &cobra.Command{
		Use:   "ptz <camera-id> <control>",
		Short: "Move a camera for a fixed time, then stop it",
		Long: "Sends one PTZ command, waits for --hold and sends a stop. " +
			"Controls: " + strings.Join(controlNames(), ", ") + ".",
		Args: cobra.ExactArgs(2),
		Run: humacli.WithOptions(run(func(cmd *cobra.Command, args []string, s *session) error {
			camID := args[0]
			control, command, err := ptz.Lookup(args[1])
			if err != nil {
				return fmt.Errorf("control %q: %w", args[1], err)
			}

			slider := ptz.NewSlider(speed, nil)
			ctx, cancel := s.context()
			defer cancel()
			if err := s.client.SendPTZ(ctx, camID, command.Request(slider.Value())); err != nil {
				return err
			}
			if control == ptz.Stop {
				fmt.Fprintf(cmd.OutOrStdout(), "Stopped %s\n", camID)
				return nil
			}

			time.Sleep(hold)
			// The stop goes out even when the move request used up the deadline.
			stopCtx, stopCancel := context.WithTimeout(context.Background(), s.opts.PTZTimeout())
			defer stopCancel()
			_, stop, _ := ptz.Lookup(string(ptz.Stop))
			if err := s.client.SendPTZ(stopCtx, camID, stop.Request(0)); err != nil {
				return errors.Join(fmt.Errorf("camera %s may still be moving", camID), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s %s for %s at speed %.1f\n", camID, control, hold, slider.Value())
			return nil
		})),
	}
	cmd.Flags().Float64VarP(&speed, "speed", "s", ptz.DefaultSpeed, "Speed between 0.1 and 1.0")
	cmd.Flags().DurationVar(&hold, "hold", 500*time.Millisecond, "How long to move before stopping")
	return cmd
}

func controlNames() []string {
	controls := ptz.Controls()
	names := make([]string, len(controls))
	for i, c := range controls {
		names[i] = string(c)
	}
	return names
}
