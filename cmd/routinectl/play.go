package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"alcyxob/routine-builder/internal/domain"
	"alcyxob/routine-builder/internal/service"

	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play <routine-id>",
	Short: "Walk through a routine step by step",
	Long: `Play prints the routine's steps in playback order: section headers and
exercises, with missing exercises flagged. With --step it waits for Enter
before each next step.

Example:
  routinectl play 3
  routinectl play 3 --step`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().Bool("step", false, "wait for Enter between steps")
}

func runPlay(cmd *cobra.Command, args []string) error {
	routineID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid routine id %q", args[0])
	}
	step, _ := cmd.Flags().GetBool("step")

	ctx := cmd.Context()
	view, err := app.playback.Start(ctx, owner, routineID)
	if err != nil {
		return fmt.Errorf("start playback: %w", err)
	}
	defer func() { _ = app.playback.Stop(ctx, owner, view.SessionID) }()

	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())
	for {
		printFrame(out, view)
		if view.Last {
			fmt.Fprintln(out, "Done.")
			return nil
		}
		if step {
			if _, err := in.ReadString('\n'); err != nil && err != io.EOF {
				return err
			}
		}
		view, err = app.playback.Advance(ctx, owner, view.SessionID)
		if err != nil {
			return fmt.Errorf("advance: %w", err)
		}
	}
}

func printFrame(w io.Writer, v service.PlaybackView) {
	prefix := fmt.Sprintf("[%d/%d]", v.Position+1, v.Total)
	switch {
	case v.Step.Kind == domain.StepSectionHeader:
		fmt.Fprintf(w, "%s == %s ==\n", prefix, v.Step.SectionName)
	case v.Missing:
		fmt.Fprintf(w, "%s (%s) exercise %d is missing\n", prefix, v.Step.SectionLabel, v.Step.ExerciseID)
	default:
		fmt.Fprintf(w, "%s (%s) %s\n", prefix, v.Step.SectionLabel, v.Exercise.Title)
		if v.EmbedURL != "" {
			fmt.Fprintf(w, "        %s\n", v.EmbedURL)
		}
	}
}
