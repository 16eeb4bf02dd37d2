package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"diskscope/internal/config"
	"diskscope/internal/logging"
	"diskscope/internal/services"
	"diskscope/internal/state"
	"diskscope/internal/ui"
)

// Run executes the command line and exits non-zero on failure.
func Run() {
	base := config.DefaultConfig()
	loaded, err := config.LoadConfig()
	if err == nil {
		base = loaded
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand(base, err)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "diskscope error:", err)
		stop()
		os.Exit(1)
	}
}

type cli struct {
	cfg       config.Config
	configErr error
	log       zerolog.Logger
	logCloser io.Closer
	// tui is set while the root command owns the terminal.
	tui bool
}

// NewRootCommand builds the command tree over cfg. configErr is reported as
// a warning when cfg fell back to defaults.
func NewRootCommand(cfg config.Config, configErr error) *cobra.Command {
	app := &cli{cfg: cfg, configErr: configErr, log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "diskscope [path]",
		Short: "Find what fills your disk and remove it safely",
		Long: heredoc.Doc(`
			diskscope scans a directory tree, sums sizes bottom-up and shows the
			largest entries first. Every path gets a deletion safety rating
			(safe, caution, danger) derived from the application that owns it.

			Without a subcommand an interactive browser is started on path
			(default: the last scanned path, or the current directory).
		`),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setupLogging(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.logCloser != nil {
				_ = app.logCloser.Close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				app.cfg.Path = args[0]
			}
			return app.runBrowser(cmd.Context())
		},
	}
	root.Annotations = map[string]string{"tui": "true"}

	config.BindGlobalFlags(root.PersistentFlags(), &app.cfg)
	config.BindScanFlags(root.PersistentFlags(), &app.cfg)

	root.AddCommand(
		app.newScanCommand(),
		app.newAssessCommand(),
		app.newDeleteCommand(),
		app.newDetailsCommand(),
		app.newServeCommand(),
	)
	return root
}

// setupLogging routes logs to --log-file when given. Otherwise the browser
// stays silent and the other commands log to stderr.
func (app *cli) setupLogging(cmd *cobra.Command) error {
	app.tui = cmd.Annotations["tui"] == "true"
	if app.cfg.LogFile != "" {
		log, closer, err := logging.Open(app.cfg.LogLevel, app.cfg.LogFile)
		if err != nil {
			return err
		}
		app.log, app.logCloser = log, closer
		return nil
	}
	if app.tui {
		if _, err := logging.ParseLevel(app.cfg.LogLevel); err != nil {
			return err
		}
		app.log = zerolog.Nop()
		return nil
	}
	log, err := logging.New(app.cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	app.log = log
	return nil
}

func (app *cli) scanner() *services.FSScanner {
	return services.NewFSScanner(app.log)
}

func (app *cli) actions(assessor services.Assessor) *services.FSActions {
	return services.NewFSActions(app.log, assessor, services.NewHomeTrash(services.DefaultTrashDir()))
}

func (app *cli) runBrowser(ctx context.Context) error {
	classifier := services.NewDefaultClassifier()
	initialState := state.NewState(app.cfg)
	model := ui.NewModel(initialState, app.scanner(), app.actions(classifier), classifier).WithConfig(app.cfg)
	if app.configErr != nil {
		model = model.WithStatus("Config warning: using defaults")
	}

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	if provider, ok := finalModel.(ui.ConfigProvider); ok {
		if err := config.SaveConfig(provider.ConfigSnapshot()); err != nil {
			app.log.Warn().Err(err).Msg("saving preferences failed")
			return fmt.Errorf("save config: %w", err)
		}
	}
	return nil
}
