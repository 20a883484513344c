package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aminulnv/Year-In-Review/internal/model"
	"github.com/aminulnv/Year-In-Review/internal/service"
)

type app struct {
	store       *service.FormStore
	archive     *service.Archive
	transformer *service.Transformer
	submissions *service.SubmissionService
	close       func() error
}

type appFactory func(ctx context.Context) (*app, error)

var errIncomplete = errors.New("survey incomplete")

func newRootCmd(open appFactory) *cobra.Command {
	var a *app

	root := &cobra.Command{
		Use:          "pulsectl",
		Short:        "Manage local Culture Pulse and Year in Review data",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opened, err := open(cmd.Context())
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			a = opened
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a == nil || a.close == nil {
				return nil
			}
			return a.close()
		},
	}

	// Subcommands read the app through this getter since it only exists
	// after PersistentPreRunE.
	get := func() *app { return a }

	root.AddCommand(
		newSubmissionsCmd(get),
		newFormCmd(get),
		newValidateCmd(get),
		newSubmitCmd(get),
	)
	return root
}

// =============================================================================
// SUBMISSIONS
// =============================================================================

func newSubmissionsCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submissions",
		Short: "Inspect the local submission archive",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List archived submissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := get().archive.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTIMESTAMP\tCOMPLETION")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%d%%\n", e.SubmissionID, e.Timestamp, e.CompletionPercentage)
			}
			return tw.Flush()
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one archived submission as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := get().archive.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entry)
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one archived submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := get().archive.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}

	var yes bool
	clearAll := &cobra.Command{
		Use:   "clear",
		Short: "Delete every archived submission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear the archive without --yes")
			}
			if err := get().archive.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "archive cleared")
			return nil
		},
	}
	clearAll.Flags().BoolVar(&yes, "yes", false, "confirm clearing the archive")

	var (
		asXLSX bool
		output string
	)
	export := &cobra.Command{
		Use:   "export",
		Short: "Export the archive as JSON or an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				out = f
			}

			a := get()
			if asXLSX {
				entries, err := a.archive.List(cmd.Context())
				if err != nil {
					return err
				}
				return service.WriteWorkbook(out, a.transformer.SheetFromArchive(entries))
			}

			data, err := a.archive.Export(cmd.Context())
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
	export.Flags().BoolVar(&asXLSX, "xlsx", false, "write an xlsx workbook instead of JSON")
	export.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show archive size and date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := get().archive.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s)
		},
	}

	cmd.AddCommand(list, show, del, clearAll, export, stats)
	return cmd
}

// =============================================================================
// FORM
// =============================================================================

func newFormCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "form",
		Short: "Inspect the in-progress answers",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the saved form state as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), get().store.Snapshot())
		},
	}

	reset := &cobra.Command{
		Use:   "clear",
		Short: "Reset the form to its defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			get().store.Clear(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "form cleared")
			return nil
		},
	}

	cmd.AddCommand(show, reset)
	return cmd
}

// =============================================================================
// VALIDATE / SUBMIT
// =============================================================================

func newValidateCmd(get func() *app) *cobra.Command {
	var flowName string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check each section of a flow against the saved answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flow, ok := model.ParseFlow(flowName)
			if !ok {
				return fmt.Errorf("unknown flow %q", flowName)
			}
			report := service.BuildSectionReport(get().store.Snapshot(), flow)

			out := cmd.OutOrStdout()
			for _, s := range report.Sections {
				mark := "ok"
				if !s.Complete {
					mark = "incomplete"
				}
				fmt.Fprintf(out, "%-20s %s\n", s.Section, mark)
				for _, fe := range s.Errors {
					fmt.Fprintf(out, "  %s: %s\n", fe.Field, fe.Message)
				}
			}
			fmt.Fprintf(out, "completion: %d%%\n", report.CompletionPercentage)

			if !report.Complete {
				return errIncomplete
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flowName, "flow", string(model.FlowCulturePulse), "culture-pulse or year-in-review")
	return cmd
}

func newSubmitCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "submit",
		Short: "Archive the saved answers and send them to the sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			receipt, err := get().submissions.Submit(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), receipt)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
