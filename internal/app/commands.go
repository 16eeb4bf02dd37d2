package app

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"diskscope/internal/config"
	"diskscope/internal/domain"
	"diskscope/internal/server"
	"diskscope/internal/services"
)

type assessmentReport struct {
	Path       string                    `json:"path"`
	Assessment domain.DeletionAssessment `json:"assessment"`
}

func (app *cli) newAssessCommand() *cobra.Command {
	output := "table"
	cmd := &cobra.Command{
		Use:   "assess <paths...>",
		Short: "Rate how safe it is to delete paths",
		Long: heredoc.Doc(`
			Print the owning application and the deletion safety of every path.
			Paths are classified by name only and need not exist.
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classifier := services.NewDefaultClassifier()
			reports := make([]assessmentReport, 0, len(args))
			for _, path := range args {
				reports = append(reports, assessmentReport{Path: path, Assessment: classifier.Assess(path)})
			}
			switch output {
			case "json":
				return writeJSON(cmd.OutOrStdout(), reports)
			case "table":
				return printAssessments(cmd.OutOrStdout(), reports)
			default:
				return fmt.Errorf("invalid output format %q: must be table or json", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", output, "Output format: table or json")
	return cmd
}

func printAssessments(writer io.Writer, reports []assessmentReport) error {
	w := tabwriter.NewWriter(writer, 0, 4, tabSpacing, ' ', 0)
	fmt.Fprintln(w, "PATH\tSAFETY\tAPP\tTYPE\tCONFIDENCE\tREASON")
	for _, report := range reports {
		assessment := report.Assessment
		app := domain.AppAssociation{}
		if assessment.AssociatedApp != nil {
			app = *assessment.AssociatedApp
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d%%\t%s\n",
			report.Path, strings.ToUpper(string(assessment.SafetyLevel)), app.AppName,
			app.AssociationType, app.Confidence, assessment.Reason)
	}
	return w.Flush()
}

func (app *cli) newDeleteCommand() *cobra.Command {
	var permanent, yes bool
	cmd := &cobra.Command{
		Use:   "delete <paths...>",
		Short: "Move paths to the trash or delete them permanently",
		Long: heredoc.Doc(`
			Delete every path one after another. A failure is reported for the
			path it concerns and the remaining paths are still processed.

			With --safe-mode (the default) paths rated DANGER and critical
			locations such as /, your home directory, /etc, /usr and /var are
			refused.
		`),
		Example: heredoc.Doc(`
			diskscope delete ~/.cache/thumbnails
			diskscope delete build/ dist/ --permanent --yes
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if permanent {
				app.cfg.UseTrash = false
			}
			classifier := services.NewDefaultClassifier()
			actions := app.actions(classifier)
			out := cmd.OutOrStdout()

			preview, err := actions.Preview(cmd.Context(), args)
			if err != nil {
				return err
			}
			verb := "Move to trash"
			if !app.cfg.UseTrash {
				verb = "Permanently delete"
			}
			fmt.Fprintf(out, "%s %d file(s), %d folder(s), %s\n",
				verb, preview.TotalFiles, preview.TotalDirs, humanize.IBytes(uint64(max(preview.TotalBytes, 0))))
			for _, warning := range preview.Warnings {
				fmt.Fprintf(out, "  warning: %s\n", warning)
			}
			if !yes && !confirm(cmd.InOrStdin(), out) {
				fmt.Fprintln(out, "Aborted")
				return nil
			}

			result := actions.Delete(cmd.Context(), services.DeleteRequest{
				Paths:    args,
				UseTrash: app.cfg.UseTrash,
				SafeMode: app.cfg.SafeMode,
			})
			fmt.Fprintf(out, "Deleted %d item(s), freed %s\n", len(result.DeletedPaths), humanize.IBytes(uint64(max(result.FreedSize, 0))))
			for _, failed := range result.FailedPaths {
				fmt.Fprintf(out, "  failed: %s: %s\n", failed.Path, failed.Reason)
			}
			if !result.Success {
				return fmt.Errorf("%d path(s) could not be deleted", len(result.FailedPaths))
			}
			return nil
		},
	}
	config.BindDeleteFlags(cmd.Flags(), &app.cfg)
	cmd.Flags().BoolVar(&permanent, "permanent", false, "Delete permanently instead of moving to the trash")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, "Continue? [y/N] ")
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func (app *cli) newDetailsCommand() *cobra.Command {
	output := "table"
	cmd := &cobra.Command{
		Use:   "details <path>",
		Short: "Show size, times and attributes of a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := services.FileDetails(args[0])
			if err != nil {
				return err
			}
			switch output {
			case "json":
				return writeJSON(cmd.OutOrStdout(), details)
			case "table":
				return printDetails(cmd.OutOrStdout(), details)
			default:
				return fmt.Errorf("invalid output format %q: must be table or json", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", output, "Output format: table or json")
	return cmd
}

func printDetails(writer io.Writer, details domain.FileDetails) error {
	w := tabwriter.NewWriter(writer, 0, 4, tabSpacing, ' ', 0)
	fmt.Fprintf(w, "Path:\t%s\n", details.Path)
	fmt.Fprintf(w, "Type:\t%s\n", details.Kind)
	fmt.Fprintf(w, "Size:\t%s (%d bytes)\n", humanize.IBytes(uint64(max(details.Size, 0))), details.Size)
	if details.Extension != "" {
		fmt.Fprintf(w, "Extension:\t%s\n", details.Extension)
	}
	fmt.Fprintf(w, "Created:\t%s\n", details.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Modified:\t%s\n", details.ModifiedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Accessed:\t%s\n", details.AccessedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Hidden:\t%t\n", details.IsHidden)
	fmt.Fprintf(w, "System:\t%t\n", details.IsSystem)
	fmt.Fprintf(w, "Read-only:\t%t\n", details.IsReadOnly)
	return w.Flush()
}

func (app *cli) newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scan and deletion API over HTTP",
		Long: heredoc.Doc(`
			Start an HTTP API for scans, safety ratings and deletion. Scan progress
			is streamed over a websocket at /api/scans/:id/progress.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			classifier := services.NewDefaultClassifier()
			api := server.New(app.scanner(), app.actions(classifier), classifier, app.log)
			return api.Listen(cmd.Context(), app.cfg.ListenAddr)
		},
	}
	cmd.Flags().StringVar(&app.cfg.ListenAddr, "listen", app.cfg.ListenAddr, "Address to listen on")
	return cmd
}

func writeJSON(writer io.Writer, value any) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}
