package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"diskscope/internal/config"
	"diskscope/internal/domain"
	"diskscope/internal/services"
	"diskscope/internal/state"
)

type Model struct {
	state            *state.State
	base             config.Config
	scanner          services.Scanner
	actions          services.Actions
	previewer        services.ActionPreviewer
	assessor         services.Assessor
	open             func(path string) error
	keys             KeyMap
	help             help.Model
	spinner          spinner.Model
	shareBar         progress.Model
	showHelp         bool
	status           string
	scanning         bool
	session          *services.ScanSession
	stopping         *services.ScanSession
	events           <-chan domain.ScanProgress
	unsubscribe      func()
	lastProgress     domain.ScanProgress
	width            int
	height           int
	viewTop          int
	confirming       bool
	pendingPaths     []string
	pendingPreview   services.ActionPreview
	deleting         bool
	filterInputMode  string
	filterInputValue string
}

type ConfigProvider interface {
	ConfigSnapshot() config.Config
}

func NewModel(appState *state.State, scanner services.Scanner, actions services.Actions, assessor services.Assessor) Model {
	return Model{
		state:     appState,
		base:      config.DefaultConfig(),
		scanner:   scanner,
		actions:   actions,
		previewer: actionPreviewer(actions),
		assessor:  assessor,
		open:      services.OpenInFileManager,
		keys:      KeyMapFrom(appState.KeyBindings),
		help:      help.New(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		shareBar:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(12), progress.WithoutPercentage()),
		status:    "Ready",
		width:     100,
		height:    30,
	}
}

func (model Model) WithStatus(message string) Model {
	if message != "" {
		model.status = message
	}
	return model
}

// WithConfig keeps cfg as the base of ConfigSnapshot.
func (model Model) WithConfig(cfg config.Config) Model {
	model.base = cfg
	return model
}

func (model Model) WithOpener(open func(path string) error) Model {
	model.open = open
	return model
}

func (model Model) ConfigSnapshot() config.Config {
	return model.state.ConfigSnapshot(model.base)
}

func (model Model) Init() tea.Cmd {
	path := model.state.Path
	return func() tea.Msg {
		return startScanMsg{path: path}
	}
}

func (model Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return model.handleKey(typed)
	case tea.WindowSizeMsg:
		model.width = typed.Width
		model.height = typed.Height
		model.help.Width = typed.Width
		model.ensureCursorVisible()
		return model, nil
	case startScanMsg:
		return model.beginScan(typed.path)
	case spinner.TickMsg:
		if !model.scanning && !model.deleting {
			return model, nil
		}
		var cmd tea.Cmd
		model.spinner, cmd = model.spinner.Update(typed)
		return model, cmd
	case scanProgressMsg:
		if model.session == nil || typed.sessionID != model.session.ID || typed.closed {
			return model, nil
		}
		model.lastProgress = typed.progress
		return model, model.progressCmd()
	case scanResultMsg:
		if model.session == nil || typed.sessionID != model.session.ID {
			return model, nil
		}
		model = model.endScan()
		if typed.err != nil {
			if errors.Is(typed.err, services.ErrScanCancelled) {
				model.status = "Scan cancelled"
				return model, nil
			}
			model.status = fmt.Sprintf("Scan error: %v", typed.err)
			return model, nil
		}
		model.state.SetTree(typed.result.Root)
		model.status = fmt.Sprintf("Scanned %s items, %s in %s",
			humanize.Comma(model.lastProgress.ScannedCount),
			humanize.Bytes(uint64(max(model.lastProgress.ScannedSize, 0))),
			typed.result.Duration.Round(time.Millisecond))
		model.ensureCursorVisible()
		return model, nil
	case actionPreviewMsg:
		if typed.err != nil {
			model.status = fmt.Sprintf("Preview error: %v", typed.err)
			model.confirming = false
			return model, nil
		}
		model.pendingPaths = typed.paths
		model.pendingPreview = typed.preview
		model.confirming = true
		model.status = previewPrompt(typed.preview, model.state.Prefs.UseTrash)
		return model, nil
	case deleteResultMsg:
		model.deleting = false
		model.state.Prune(typed.result.DeletedPaths)
		model.state.ClearSelection()
		model.status = deleteSummary(typed.result)
		model.ensureCursorVisible()
		return model, nil
	case openResultMsg:
		if typed.err != nil {
			model.status = fmt.Sprintf("Open error: %v", typed.err)
			return model, nil
		}
		model.status = fmt.Sprintf("Opened %s", typed.path)
		return model, nil
	default:
		return model, nil
	}
}

func (model Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if model.filterInputMode != "" {
		return model.handleFilterInput(msg)
	}
	switch {
	case key.Matches(msg, model.keys.Quit):
		model = model.cancelScan()
		return model, tea.Quit
	case key.Matches(msg, model.keys.Help):
		model.showHelp = !model.showHelp
		model.help.ShowAll = model.showHelp
		return model, nil
	case model.confirming && key.Matches(msg, model.keys.Confirm):
		return model.confirmDelete()
	case model.confirming && key.Matches(msg, model.keys.Cancel):
		model.confirming = false
		model.pendingPaths = nil
		model.status = "Delete cancelled"
		return model, nil
	case model.confirming:
		return model, nil
	case key.Matches(msg, model.keys.Cancel):
		if model.scanning && model.session != nil {
			model.session.Cancel()
			model.status = "Cancelling scan..."
		}
		return model, nil
	case key.Matches(msg, model.keys.Up):
		model.state.MoveCursor(-1)
		model.ensureCursorVisible()
		return model, nil
	case key.Matches(msg, model.keys.Down):
		model.state.MoveCursor(1)
		model.ensureCursorVisible()
		return model, nil
	case key.Matches(msg, model.keys.Enter):
		node := model.state.CursorNode()
		if node == nil || !node.IsDir() {
			return model, nil
		}
		if !node.Accessible {
			model.status = fmt.Sprintf("Cannot open %s: not accessible", node.Name)
			return model, nil
		}
		if model.state.MaxDepth >= 0 && node.Depth >= model.state.MaxDepth {
			model.status = "Depth limit reached - press r to rescan from here"
		}
		model.state.EnterDir(node.ID)
		model.ensureCursorVisible()
		return model, nil
	case key.Matches(msg, model.keys.Back):
		model.state.LeaveDir()
		model.ensureCursorVisible()
		return model, nil
	case key.Matches(msg, model.keys.Select):
		if node := model.state.CursorNode(); node != nil {
			model.state.ToggleSelection(node.ID)
			model.state.MoveCursor(1)
			model.ensureCursorVisible()
		}
		return model, nil
	case key.Matches(msg, model.keys.Delete):
		return model.beginDelete()
	case key.Matches(msg, model.keys.Trash):
		if model.state.ToggleTrash() {
			model.status = "Deletes go to the trash"
		} else {
			model.status = "Deletes are permanent"
		}
		return model, nil
	case key.Matches(msg, model.keys.Sort):
		mode := model.state.ToggleSortMode()
		model.status = fmt.Sprintf("Sorted by %s", mode)
		model.ensureCursorVisible()
		return model, nil
	case key.Matches(msg, model.keys.Rescan):
		return model.beginScan(model.state.CurrentPath())
	case key.Matches(msg, model.keys.Open):
		node := model.state.CursorNode()
		if node == nil || model.open == nil {
			return model, nil
		}
		return model, openCmd(model.open, node.Path)
	case key.Matches(msg, model.keys.Search):
		model.filterInputMode = "search"
		model.filterInputValue = model.state.SearchQuery
		model.status = fmt.Sprintf("Search: %s", model.filterInputValue)
		return model, nil
	case key.Matches(msg, model.keys.SizeFilter):
		model.filterInputMode = "size"
		model.filterInputValue = ""
		if model.state.MinSizeBytes > 0 {
			model.filterInputValue = humanize.Bytes(uint64(model.state.MinSizeBytes))
		}
		model.status = fmt.Sprintf("Min size: %s", model.filterInputValue)
		return model, nil
	case key.Matches(msg, model.keys.ClearFilter):
		model.state.ClearFilters()
		model.status = "Filters cleared"
		model.ensureCursorVisible()
		return model, nil
	default:
		return model, nil
	}
}

func (model Model) handleFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		model.filterInputMode = ""
		model.filterInputValue = ""
		model.status = "Filter cancelled"
		return model, nil
	case tea.KeyEnter:
		mode := model.filterInputMode
		value := strings.TrimSpace(model.filterInputValue)
		model.filterInputMode = ""
		switch mode {
		case "search":
			model.state.SearchQuery = value
		case "size":
			size, err := parseSizeInput(value)
			if err != nil {
				model.status = fmt.Sprintf("Filter error: %v", err)
				return model, nil
			}
			model.state.MinSizeBytes = size
		}
		model.state.MoveCursor(0)
		model.ensureCursorVisible()
		model.status = "Filter applied"
		return model, nil
	case tea.KeyBackspace, tea.KeyDelete:
		if len(model.filterInputValue) > 0 {
			runes := []rune(model.filterInputValue)
			model.filterInputValue = string(runes[:len(runes)-1])
		}
	case tea.KeySpace:
		model.filterInputValue += " "
	default:
		if msg.Type == tea.KeyRunes {
			model.filterInputValue += string(msg.Runes)
		}
	}
	model.status = fmt.Sprintf("%s: %s", filterLabel(model.filterInputMode), model.filterInputValue)
	return model, nil
}

func parseSizeInput(input string) (int64, error) {
	if strings.TrimSpace(input) == "" {
		return 0, nil
	}
	size, err := humanize.ParseBytes(input)
	if err != nil {
		return 0, err
	}
	return int64(size), nil
}

func filterLabel(mode string) string {
	switch mode {
	case "search":
		return "Search"
	case "size":
		return "Min size"
	default:
		return "Filter"
	}
}

func (model Model) beginScan(path string) (Model, tea.Cmd) {
	if model.scanning && model.session != nil {
		model.stopping = model.session
	}
	model = model.cancelScan()
	if stopping := model.stopping; stopping != nil {
		select {
		case <-stopping.Done():
			model.stopping = nil
		default:
			model.status = "Restarting scan..."
			return model, func() tea.Msg {
				<-stopping.Done()
				return startScanMsg{path: path}
			}
		}
	}
	if model.scanner == nil {
		model.status = "No scanner configured"
		return model, nil
	}
	req := services.ScanRequest{
		RootPath:        path,
		ExcludePatterns: model.state.ExcludePatterns,
	}
	if model.state.MaxDepth >= 0 {
		req.MaxDepth = services.Depth(model.state.MaxDepth)
	}
	session, err := model.scanner.Begin(req)
	if err != nil {
		model.status = fmt.Sprintf("Scan error: %v", err)
		return model, nil
	}
	model.state.Path = session.Root
	model.session = session
	model.scanning = true
	model.lastProgress = session.Progress()
	model.events, model.unsubscribe = session.Subscribe()
	model.status = fmt.Sprintf("Scanning %s", session.Root)
	return model, tea.Batch(scanCmd(session), model.progressCmd(), model.spinner.Tick)
}

func scanCmd(session *services.ScanSession) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		root, err := session.Run(context.Background())
		return scanResultMsg{
			sessionID: session.ID,
			result:    services.ScanResult{RootPath: session.Root, Root: root, Duration: time.Since(start)},
			err:       err,
		}
	}
}

// waitProgress delivers the next snapshot of one session. Update re-arms it
// until the stream closes.
func waitProgress(sessionID string, events <-chan domain.ScanProgress) tea.Cmd {
	return func() tea.Msg {
		snapshot, ok := <-events
		return scanProgressMsg{sessionID: sessionID, progress: snapshot, closed: !ok}
	}
}

func (model Model) progressCmd() tea.Cmd {
	if model.session == nil || model.events == nil {
		return nil
	}
	return waitProgress(model.session.ID, model.events)
}

func (model Model) cancelScan() Model {
	if model.session != nil && model.scanning {
		model.session.Cancel()
	}
	return model.endScan()
}

func (model Model) endScan() Model {
	if model.unsubscribe != nil {
		model.unsubscribe()
	}
	model.unsubscribe = nil
	model.events = nil
	model.scanning = false
	if model.session != nil {
		model.lastProgress = model.session.Progress()
	}
	model.session = nil
	return model
}

func (model Model) beginDelete() (tea.Model, tea.Cmd) {
	if model.scanning || model.deleting {
		model.status = "Busy - wait for the current operation"
		return model, nil
	}
	paths := model.state.SelectedPaths()
	if len(paths) == 0 {
		model.status = "Nothing to delete"
		return model, nil
	}
	if model.previewer == nil {
		model.pendingPaths = paths
		model.pendingPreview = services.ActionPreview{Sources: paths}
		model.confirming = true
		model.status = previewPrompt(model.pendingPreview, model.state.Prefs.UseTrash)
		return model, nil
	}
	previewer := model.previewer
	model.status = "Preparing delete preview..."
	return model, func() tea.Msg {
		preview, err := previewer.Preview(context.Background(), paths)
		return actionPreviewMsg{paths: paths, preview: preview, err: err}
	}
}

func (model Model) confirmDelete() (tea.Model, tea.Cmd) {
	model.confirming = false
	if model.actions == nil {
		model.status = "No delete backend configured"
		return model, nil
	}
	req := services.DeleteRequest{
		Paths:    model.pendingPaths,
		UseTrash: model.state.Prefs.UseTrash,
		SafeMode: model.state.Prefs.SafeMode,
	}
	model.pendingPaths = nil
	model.deleting = true
	model.status = fmt.Sprintf("Deleting %d item(s)...", len(req.Paths))
	actions := model.actions
	return model, tea.Batch(func() tea.Msg {
		return deleteResultMsg{result: actions.Delete(context.Background(), req)}
	}, model.spinner.Tick)
}

func openCmd(open func(string) error, path string) tea.Cmd {
	return func() tea.Msg {
		return openResultMsg{path: path, err: open(path)}
	}
}

func actionPreviewer(actions services.Actions) services.ActionPreviewer {
	previewer, _ := actions.(services.ActionPreviewer)
	return previewer
}

func previewPrompt(preview services.ActionPreview, useTrash bool) string {
	verb := "Delete permanently"
	if useTrash {
		verb = "Move to trash"
	}
	return fmt.Sprintf("%s %d file(s), %d folder(s), %s? (y/n)",
		verb, preview.TotalFiles, preview.TotalDirs, humanize.Bytes(uint64(max(preview.TotalBytes, 0))))
}

func deleteSummary(result domain.DeleteResult) string {
	summary := fmt.Sprintf("Deleted %d item(s), freed %s", len(result.DeletedPaths), humanize.Bytes(uint64(max(result.FreedSize, 0))))
	if len(result.FailedPaths) == 0 {
		return summary
	}
	first := result.FailedPaths[0]
	return fmt.Sprintf("%s; %d failed (error: %s: %s)", summary, len(result.FailedPaths), first.Path, first.Reason)
}

func (model *Model) ensureCursorVisible() {
	visible := model.state.VisibleChildren()
	if len(visible) == 0 {
		model.state.Cursor = 0
		model.viewTop = 0
		return
	}
	model.state.MoveCursor(0)
	listHeight := model.listHeight()
	if listHeight <= 0 {
		return
	}
	if model.state.Cursor < model.viewTop {
		model.viewTop = model.state.Cursor
	}
	if model.state.Cursor >= model.viewTop+listHeight {
		model.viewTop = model.state.Cursor - listHeight + 1
	}
	maxTop := len(visible) - listHeight
	if maxTop < 0 {
		maxTop = 0
	}
	if model.viewTop > maxTop {
		model.viewTop = maxTop
	}
}

func (model *Model) listHeight() int {
	height := model.height - 6
	if height < 1 {
		return 1
	}
	return height
}
