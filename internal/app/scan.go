package app

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"diskscope/internal/domain"
	"diskscope/internal/services"
)

const tabSpacing = 2

type scanOptions struct {
	top     int
	output  string
	minSize string
	tree    bool
}

type entryReport struct {
	Path string          `json:"path"`
	Kind domain.NodeKind `json:"type"`
	Size int64           `json:"size"`
}

type scanReport struct {
	Root     string                 `json:"root"`
	Size     int64                  `json:"size"`
	Items    int64                  `json:"items"`
	Elapsed  time.Duration          `json:"elapsed"`
	Children []entryReport          `json:"children"`
	Files    []entryReport          `json:"files"`
	Tree     *domain.FileSystemNode `json:"tree,omitempty"`
}

func (app *cli) newScanCommand() *cobra.Command {
	options := scanOptions{top: 10, output: "table", minSize: "0B"}
	cmd := &cobra.Command{
		Use:   "scan [roots...]",
		Short: "Scan one or more directories and report the largest entries",
		Long: heredoc.Doc(`
			Scan every root concurrently and print, per root, its total size, the
			largest direct children and the largest files anywhere below it.

			Exclusion patterns skip a path and everything under it:
			  *suffix   paths ending in suffix
			  prefix*   paths starting with prefix
			  text      paths containing text
		`),
		Example: heredoc.Doc(`
			diskscope scan ~ --top 20
			diskscope scan /var /opt --max-depth 3 --exclude '*node_modules'
			diskscope scan . --output json --min-size 10MB
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{app.cfg.Path}
			}
			return app.runScan(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args, options)
		},
	}
	flags := cmd.Flags()
	flags.IntVarP(&options.top, "top", "t", options.top, "Number of entries to list per section")
	flags.StringVarP(&options.output, "output", "o", options.output, "Output format: table or json")
	flags.StringVar(&options.minSize, "min-size", options.minSize, "Hide files smaller than this (e.g. 10MB)")
	flags.BoolVar(&options.tree, "tree", false, "Include the full tree in json output")
	return cmd
}

func (app *cli) runScan(ctx context.Context, stdout, stderr io.Writer, roots []string, options scanOptions) error {
	if options.output != "table" && options.output != "json" {
		return fmt.Errorf("invalid output format %q: must be table or json", options.output)
	}
	if options.top < 0 {
		return fmt.Errorf("top cannot be negative")
	}
	minSize, err := humanize.ParseBytes(options.minSize)
	if err != nil {
		return fmt.Errorf("invalid min-size: %w", err)
	}

	scanner := app.scanner()
	progress := newProgressLine(stderr)
	reports := make([]scanReport, len(roots))

	sessions := make([]*services.ScanSession, 0, len(roots))
	for _, root := range roots {
		session, err := scanner.Begin(services.ScanRequest{
			RootPath:        root,
			MaxDepth:        app.cfg.DepthLimit(),
			ExcludePatterns: app.cfg.ExcludePatterns,
		})
		if err != nil {
			for _, begun := range sessions {
				begun.Cancel()
			}
			return err
		}
		sessions = append(sessions, session)
	}

	group, ctx := errgroup.WithContext(ctx)
	for index, session := range sessions {
		index, session := index, session
		progress.follow(session)
		group.Go(func() error {
			start := time.Now()
			tree, err := session.Run(ctx)
			if err != nil {
				return fmt.Errorf("scan %s: %w", session.Root, err)
			}
			report := buildReport(tree, options.top, int64(minSize))
			report.Items = session.Progress().ScannedCount
			report.Elapsed = time.Since(start)
			if options.tree {
				report.Tree = tree
			}
			reports[index] = report
			return nil
		})
	}
	err = group.Wait()
	progress.wait()
	if err != nil {
		return err
	}

	if options.output == "json" {
		return writeJSON(stdout, reports)
	}
	return printTable(stdout, reports)
}

// buildReport lists the largest children of tree and the largest files
// below it, skipping files under minSize.
func buildReport(tree *domain.FileSystemNode, top int, minSize int64) scanReport {
	report := scanReport{Root: tree.Path, Size: tree.Size, Children: []entryReport{}, Files: []entryReport{}}
	for _, child := range tree.Children {
		if len(report.Children) == top {
			break
		}
		report.Children = append(report.Children, entryReport{Path: child.Path, Kind: child.Kind, Size: child.Size})
	}

	var files []*domain.FileSystemNode
	pending := []*domain.FileSystemNode{tree}
	for len(pending) > 0 {
		node := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if !node.IsDir() && node.Size >= minSize {
			files = append(files, node)
		}
		pending = append(pending, node.Children...)
	}
	slices.SortStableFunc(files, func(a, b *domain.FileSystemNode) int {
		if bySize := cmp.Compare(b.Size, a.Size); bySize != 0 {
			return bySize
		}
		return cmp.Compare(a.Path, b.Path)
	})
	for _, file := range files[:min(top, len(files))] {
		report.Files = append(report.Files, entryReport{Path: file.Path, Kind: file.Kind, Size: file.Size})
	}
	return report
}

func printTable(writer io.Writer, reports []scanReport) error {
	w := tabwriter.NewWriter(writer, 0, 4, tabSpacing, ' ', 0)
	for index, report := range reports {
		if index > 0 {
			fmt.Fprintln(w, "\t\t")
		}
		fmt.Fprintf(w, "%s\t%s (%d bytes)\t%s items in %s\n",
			report.Root, humanize.IBytes(uint64(report.Size)), report.Size,
			humanize.Comma(report.Items), report.Elapsed.Round(time.Millisecond))

		fmt.Fprintln(w, "\nLargest entries:\t\t")
		for rank, entry := range report.Children {
			name := entry.Path
			if entry.Kind == domain.NodeDir {
				name += string(os.PathSeparator)
			}
			fmt.Fprintf(w, "  %d) %s\t%s\t%s\n", rank+1, name, humanize.IBytes(uint64(entry.Size)), share(entry.Size, report.Size))
		}

		fmt.Fprintln(w, "\nLargest files:\t\t")
		for rank, entry := range report.Files {
			fmt.Fprintf(w, "  %d) %s\t%s\t%s\n", rank+1, entry.Path, humanize.IBytes(uint64(entry.Size)), share(entry.Size, report.Size))
		}
	}
	return w.Flush()
}

func share(size, total int64) string {
	if total <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(size)/float64(total))
}

// progressLine keeps a single status line on a terminal stderr while scans
// run. It does nothing on other writers.
type progressLine struct {
	mu      sync.Mutex
	out     io.Writer
	enabled bool
	wg      sync.WaitGroup
}

func newProgressLine(out io.Writer) *progressLine {
	file, ok := out.(*os.File)
	return &progressLine{out: out, enabled: ok && isatty.IsTerminal(file.Fd())}
}

func (line *progressLine) follow(session *services.ScanSession) {
	if !line.enabled {
		return
	}
	events, unsubscribe := session.Subscribe()
	line.wg.Add(1)
	go func() {
		defer line.wg.Done()
		defer unsubscribe()
		for snapshot := range events {
			line.mu.Lock()
			fmt.Fprintf(line.out, "\r\033[K%s: %s items, %s", session.Root,
				humanize.Comma(snapshot.ScannedCount), humanize.IBytes(uint64(max(snapshot.ScannedSize, 0))))
			line.mu.Unlock()
		}
	}()
}

func (line *progressLine) wait() {
	line.wg.Wait()
	if line.enabled {
		fmt.Fprint(line.out, "\r\033[K")
	}
}
