package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"alcyxob/routine-builder/internal/service"

	"github.com/spf13/cobra"
)

var outFile string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write the workspace backup document",
	Long: `Backup writes exercises, routines, tags and calendar placements as one
JSON document. It goes to stdout unless --out is given.

Example:
  routinectl backup --out backup.json
  routinectl --owner alice backup > alice.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := app.exports.Render(cmd.Context(), owner, service.ExportBackup)
		if err != nil {
			return fmt.Errorf("render backup: %w", err)
		}
		return writeOutput(cmd, file.Body)
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Replace the workspace with a backup document",
	Long: `Restore reads a backup document ("-" for stdin) and replaces every
collection of the workspace with its contents. A malformed document
leaves the workspace unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read backup: %w", err)
		}
		if err := app.exports.Restore(cmd.Context(), owner, data); err != nil {
			return fmt.Errorf("restore: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored workspace %q\n", owner)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove exercises, routines and calendar placements",
	Long:  `Clear empties the workspace. The tag registry is kept.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.exports.Clear(cmd.Context(), owner); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared workspace %q\n", owner)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the persistence status of the workspace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := app.workspaces.Status(cmd.Context(), owner)
		if err != nil {
			return err
		}
		output, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal status: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(output))
		return nil
	},
}

var icsCmd = &cobra.Command{
	Use:   "ics",
	Short: "Write the calendar as an iCalendar file",
	Long: `Ics renders every calendar placement as a VEVENT. With --schedules it
renders the routines' own repeat schedules instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := service.ExportCalendar
		if schedules, _ := cmd.Flags().GetBool("schedules"); schedules {
			kind = service.ExportSchedule
		}
		file, err := app.exports.Render(cmd.Context(), owner, kind)
		if err != nil {
			return fmt.Errorf("render calendar: %w", err)
		}
		return writeOutput(cmd, file.Body)
	},
}

func init() {
	backupCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default: stdout)")
	icsCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default: stdout)")
	icsCmd.Flags().Bool("schedules", false, "export routine schedules instead of placements")
}

func writeOutput(cmd *cobra.Command, body []byte) error {
	if outFile == "" {
		_, err := cmd.OutOrStdout().Write(body)
		return err
	}
	if err := os.WriteFile(outFile, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outFile, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d bytes)\n", outFile, len(body))
	return nil
}
