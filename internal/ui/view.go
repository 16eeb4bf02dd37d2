package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"diskscope/internal/domain"
)

type uiStyles struct {
	headerStyle   lipgloss.Style
	mutedStyle    lipgloss.Style
	statusStyle   lipgloss.Style
	warnStyle     lipgloss.Style
	cursorStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	panelBorder   lipgloss.Style
	safeBadge     lipgloss.Style
	cautionBadge  lipgloss.Style
	dangerBadge   lipgloss.Style
}

func stylesFor(model Model) uiStyles {
	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if strings.ToLower(model.state.Prefs.Theme) == "light" {
		return uiStyles{
			headerStyle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("235")),
			mutedStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
			statusStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("25")).Bold(true),
			warnStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("124")).Bold(true),
			cursorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("90")).Bold(true),
			selectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("28")).Bold(true),
			panelBorder:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
			safeBadge:     badge.Copy().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("28")),
			cautionBadge:  badge.Copy().Foreground(lipgloss.Color("235")).Background(lipgloss.Color("178")),
			dangerBadge:   badge.Copy().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("124")),
		}
	}
	return uiStyles{
		headerStyle:   lipgloss.NewStyle().Bold(true),
		mutedStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		statusStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true),
		warnStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Bold(true),
		cursorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		selectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		panelBorder:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		safeBadge:     badge.Copy().Foreground(lipgloss.Color("16")).Background(lipgloss.Color("42")),
		cautionBadge:  badge.Copy().Foreground(lipgloss.Color("16")).Background(lipgloss.Color("220")),
		dangerBadge:   badge.Copy().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("160")),
	}
}

func (model Model) View() string {
	styles := stylesFor(model)
	if model.showHelp {
		return renderHelpView(model, styles)
	}

	body := renderBody(model, styles)
	footer := renderFooter(model, styles)
	return strings.Join([]string{body, footer}, "\n")
}

func renderBody(model Model, styles uiStyles) string {
	visible := model.state.VisibleChildren()
	bodyHeight := model.listHeight()
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	leftWidth, rightWidth, showRight := splitPanels(model.width)
	left := renderListPanel(model, styles, visible, bodyHeight, leftWidth)
	if !showRight {
		return left
	}
	sep := lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Render("│")
	right := renderDetailPanel(model, styles, rightWidth, bodyHeight)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, sep, right)
}

func renderFooter(model Model, styles uiStyles) string {
	statusLine := trimStatus(model.status, model.width)
	if model.scanning {
		progress := model.lastProgress
		statusLine = trimStatus(fmt.Sprintf("%s Scanning %s items  %s  %s",
			model.spinner.View(),
			humanize.Comma(progress.ScannedCount),
			humanize.Bytes(uint64(max(progress.ScannedSize, 0))),
			progress.CurrentPath), model.width)
	} else if model.deleting {
		statusLine = fmt.Sprintf("%s %s", model.spinner.View(), statusLine)
	}
	statusStyle := styles.mutedStyle
	lower := strings.ToLower(model.status)
	if strings.Contains(lower, "error") || strings.Contains(lower, "failed") {
		statusStyle = styles.warnStyle
	}
	statusLine = statusStyle.Render(statusLine)

	selectedCount, selectedSize := model.state.SelectionSummary()
	selectionInfo := fmt.Sprintf("Marked: %d (%s)", selectedCount, humanize.Bytes(uint64(max(selectedSize, 0))))
	sortInfo := fmt.Sprintf("Sort: %s", strings.ToUpper(string(model.state.Prefs.SortMode)))
	modeInfo := "Mode: trash"
	if !model.state.Prefs.UseTrash {
		modeInfo = "Mode: permanent"
	}
	left := fmt.Sprintf("%s  %s  %s%s", selectionInfo, sortInfo, modeInfo, filterSummary(model))
	keys := model.help.ShortHelpView(model.keys.ShortHelp())
	if model.confirming {
		keys = "y confirm  n cancel"
	}
	if model.filterInputMode != "" {
		keys = "type value  enter apply  esc cancel"
	}
	footerLine := padLine(left, keys, model.width)
	return strings.Join([]string{statusLine, styles.mutedStyle.Render(footerLine)}, "\n")
}

func renderListPanel(model Model, styles uiStyles, visible []*domain.FileSystemNode, height, width int) string {
	if width < 20 {
		width = 20
	}
	contentWidth := maxInt(width-2, 10)
	crumbs := breadcrumbs(model.state.CurrentPath())
	status := "IDLE"
	if model.scanning {
		status = "SCANNING"
	}
	headerLine := padLine(styles.headerStyle.Render("diskscope")+"  "+crumbs, styles.statusStyle.Render(status), contentWidth)
	listHeight := height - 1
	if listHeight < 1 {
		listHeight = 1
	}
	if len(visible) == 0 {
		message := "Empty"
		if model.scanning {
			message = "Scanning..."
		} else if model.state.CurrentDir() == nil {
			message = "Not scanned - press r"
		}
		lines := []string{headerLine, message}
		for i := 0; i < maxInt(listHeight-1, 0); i++ {
			lines = append(lines, "")
		}
		return styles.panelBorder.Width(contentWidth).Render(strings.Join(lines, "\n"))
	}
	start := clamp(model.viewTop, 0, maxInt(len(visible)-1, 0))
	end := start + listHeight
	if end > len(visible) {
		end = len(visible)
	}

	var parentSize int64
	if dir := model.state.CurrentDir(); dir != nil {
		parentSize = dir.Size
	}
	lines := make([]string, 0, height)
	lines = append(lines, headerLine)
	sizeWidth := 9
	for index := start; index < end; index++ {
		node := visible[index]
		marker := "[ ]"
		if model.state.Selected[node.ID] {
			marker = styles.selectedStyle.Render("[x]")
		}
		name := node.Name
		if node.IsDir() {
			name += "/"
		}
		share := 0.0
		if parentSize > 0 {
			share = float64(node.Size) / float64(parentSize)
		}
		lineSize := fmt.Sprintf("%*s", sizeWidth, sizeLabel(node))
		line := fmt.Sprintf("%s %s %s %s %s %s", lineSize, model.shareBar.ViewAs(share), marker, fileIcon(node), name, safetyBadge(model, styles, node.Path))
		if index == model.state.Cursor {
			line = styles.cursorStyle.Render(line)
		}
		lines = append(lines, line)
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	content := strings.Join(lines, "\n")
	return styles.panelBorder.Width(contentWidth).Render(content)
}

func renderDetailPanel(model Model, styles uiStyles, width, height int) string {
	if model.confirming {
		return renderPreviewPanel(model, styles, width, height)
	}
	node := model.state.CursorNode()
	contentWidth := maxInt(width-2, 10)
	if node == nil {
		return styles.panelBorder.Width(contentWidth).Render("No selection")
	}
	mod := "-"
	if !node.ModifiedAt.IsZero() {
		mod = fmt.Sprintf("%s (%s)", node.ModifiedAt.Format(time.RFC822), humanize.Time(node.ModifiedAt))
	}
	lines := []string{
		styles.headerStyle.Render("Path"),
		node.Path,
		"",
		styles.headerStyle.Render("Size"),
		fmt.Sprintf("%s (%s bytes)", sizeLabel(node), humanize.Comma(node.Size)),
	}
	if node.IsDir() {
		lines = append(lines, fmt.Sprintf("Entries: %d", len(node.Children)))
	}
	if !node.Accessible {
		lines = append(lines, styles.warnStyle.Render("Not accessible"))
	}
	lines = append(lines, "", styles.headerStyle.Render("Modified"), mod)

	if model.assessor != nil {
		assessment := model.assessor.Assess(node.Path)
		lines = append(lines, "", styles.headerStyle.Render("Deletion safety"), safetyBadge(model, styles, node.Path))
		if app := assessment.AssociatedApp; app != nil {
			lines = append(lines, fmt.Sprintf("App : %s (%s, %d%%)", app.AppName, app.AssociationType, app.Confidence))
		}
		lines = append(lines, assessment.Reason)
		if assessment.Impact != "" {
			lines = append(lines, styles.mutedStyle.Render(assessment.Impact))
		}
	}

	content := strings.Join(lines, "\n")
	content = lipgloss.NewStyle().Width(contentWidth).Height(height).Render(content)
	return styles.panelBorder.Width(contentWidth).Render(content)
}

func renderPreviewPanel(model Model, styles uiStyles, width, height int) string {
	preview := model.pendingPreview
	action := "DELETE PERMANENTLY"
	if model.state.Prefs.UseTrash {
		action = "MOVE TO TRASH"
	}
	lines := []string{
		styles.headerStyle.Render("Delete Preview"),
		fmt.Sprintf("Action: %s", action),
		fmt.Sprintf("Files : %d", preview.TotalFiles),
		fmt.Sprintf("Dirs  : %d", preview.TotalDirs),
		fmt.Sprintf("Size  : %s", humanize.Bytes(uint64(max(preview.TotalBytes, 0)))),
	}
	if model.state.Prefs.SafeMode {
		lines = append(lines, styles.mutedStyle.Render("Safe mode: dangerous paths are skipped"))
	}
	if len(model.pendingPaths) > 0 {
		lines = append(lines, "", styles.headerStyle.Render("Targets"))
		for _, path := range model.pendingPaths {
			lines = append(lines, fmt.Sprintf("%s %s", safetyBadge(model, styles, path), path))
		}
	}
	if len(preview.Samples) > 0 {
		lines = append(lines, "", styles.headerStyle.Render("Samples"))
		lines = append(lines, preview.Samples...)
	}
	if len(preview.Warnings) > 0 {
		lines = append(lines, "", styles.headerStyle.Render("Warnings"))
		lines = append(lines, preview.Warnings...)
	}
	contentWidth := maxInt(width-2, 10)
	content := strings.Join(lines, "\n")
	content = lipgloss.NewStyle().Width(contentWidth).Height(height).Render(content)
	return styles.panelBorder.Width(contentWidth).Render(content)
}

func renderHelpView(model Model, styles uiStyles) string {
	lines := []string{styles.headerStyle.Render("diskscope Help"), ""}
	lines = append(lines, model.help.FullHelpView(model.keys.FullHelp()))
	lines = append(lines, "", styles.headerStyle.Render("Safety"))
	lines = append(lines,
		styles.safeBadge.Render("SAFE")+" caches, temporary files and logs",
		styles.cautionBadge.Render("CAUTION")+" personal files, settings and app data",
		styles.dangerBadge.Render("DANGER")+" system and core application files",
		"safe mode refuses danger paths and /, $HOME, /etc, /usr, /var",
	)
	lines = append(lines, "", "Press ? to close help")
	content := strings.Join(lines, "\n")
	width := model.width
	if width <= 0 {
		width = 80
	}
	return styles.panelBorder.Width(maxInt(width-2, 10)).Render(content)
}

func safetyBadge(model Model, styles uiStyles, path string) string {
	if model.assessor == nil {
		return ""
	}
	switch model.assessor.Assess(path).SafetyLevel {
	case domain.SafetySafe:
		return styles.safeBadge.Render("SAFE")
	case domain.SafetyDanger:
		return styles.dangerBadge.Render("DANGER")
	default:
		return styles.cautionBadge.Render("CAUTION")
	}
}

func breadcrumbs(path string) string {
	path = filepath.Clean(path)
	if path == "." {
		return "."
	}
	parts := strings.Split(path, string(filepath.Separator))
	if len(parts) == 0 {
		return path
	}
	if parts[0] == "" {
		parts[0] = string(filepath.Separator)
	}
	return strings.Join(parts, " › ")
}

func padLine(left, right string, width int) string {
	if width <= 0 {
		return left
	}
	space := width - lipgloss.Width(left) - lipgloss.Width(right)
	if space < 1 {
		return left + " " + right
	}
	return left + strings.Repeat(" ", space) + right
}

func splitPanels(width int) (int, int, bool) {
	if width < 80 {
		return width, 0, false
	}
	left := int(float64(width) * 0.6)
	if left < 40 {
		left = 40
	}
	right := width - left - 1
	if right < 30 {
		return width, 0, false
	}
	return left, right, true
}

func fileIcon(node *domain.FileSystemNode) string {
	switch {
	case !node.Accessible:
		return "🔒"
	case node.IsDir():
		return "📁"
	default:
		return "📄"
	}
}

func sizeLabel(node *domain.FileSystemNode) string {
	if !node.Accessible {
		return "--"
	}
	return humanize.Bytes(uint64(max(node.Size, 0)))
}

func trimStatus(message string, width int) string {
	if width <= 0 {
		return message
	}
	max := width - 4
	runes := []rune(message)
	if max <= 0 || len(runes) <= max {
		return message
	}
	return string(runes[:max]) + "..."
}

func filterSummary(model Model) string {
	parts := []string{}
	if model.state.SearchQuery != "" {
		parts = append(parts, fmt.Sprintf("Search:%s", model.state.SearchQuery))
	}
	if model.state.MinSizeBytes > 0 {
		parts = append(parts, fmt.Sprintf("Min:%s", humanize.Bytes(uint64(model.state.MinSizeBytes))))
	}
	if len(parts) == 0 {
		return ""
	}
	return "  Filters[" + strings.Join(parts, ", ") + "]"
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
