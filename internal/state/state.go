package state

import (
	"cmp"
	"slices"
	"strings"

	"diskscope/internal/config"
	"diskscope/internal/domain"
)

type Preferences struct {
	SafeMode bool
	UseTrash bool
	SortMode domain.SortMode
	Theme    string
}

// State is the navigation view over one scanned tree.
type State struct {
	Path            string
	Current         string
	Cursor          int
	Selected        map[string]bool
	Prefs           Preferences
	Tree            domain.TreeIndex
	MaxDepth        int
	ExcludePatterns []string
	KeyBindings     map[string]string
	SearchQuery     string
	MinSizeBytes    int64
}

func NewState(cfg config.Config) *State {
	return &State{
		Path:     cfg.Path,
		Selected: make(map[string]bool),
		Prefs: Preferences{
			SafeMode: cfg.SafeMode,
			UseTrash: cfg.UseTrash,
			SortMode: cfg.SortMode,
			Theme:    cfg.Theme,
		},
		Tree:            domain.TreeIndex{Nodes: make(map[string]*domain.FileSystemNode)},
		MaxDepth:        cfg.MaxDepth,
		ExcludePatterns: cfg.ExcludePatterns,
		KeyBindings:     ensureBindings(cfg.KeyBindings),
	}
}

func ensureBindings(bindings map[string]string) map[string]string {
	if bindings == nil {
		return map[string]string{}
	}
	return bindings
}

// SetTree replaces the scanned tree, keeping the current directory and the
// selection where they still exist.
func (appState *State) SetTree(root *domain.FileSystemNode) {
	appState.Tree = domain.NewTreeIndex(root)
	if _, ok := appState.Tree.Nodes[appState.Current]; !ok {
		appState.Current = appState.Tree.RootID
		appState.Cursor = 0
	}
	for id := range appState.Selected {
		if _, ok := appState.Tree.Nodes[id]; !ok {
			delete(appState.Selected, id)
		}
	}
	appState.clampCursor()
}

func (appState *State) CurrentDir() *domain.FileSystemNode {
	return appState.Tree.Nodes[appState.Current]
}

func (appState *State) CurrentPath() string {
	if node := appState.CurrentDir(); node != nil {
		return node.Path
	}
	return appState.Path
}

// VisibleChildren lists the current directory's children, filtered and
// ordered by the active sort mode.
func (appState *State) VisibleChildren() []*domain.FileSystemNode {
	dir := appState.CurrentDir()
	if dir == nil {
		return nil
	}
	children := make([]*domain.FileSystemNode, 0, len(dir.Children))
	for _, child := range dir.Children {
		if appState.nodeMatches(child) {
			children = append(children, child)
		}
	}
	switch appState.Prefs.SortMode {
	case domain.SortByName:
		slices.SortStableFunc(children, func(a, b *domain.FileSystemNode) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
	case domain.SortByMod:
		slices.SortStableFunc(children, func(a, b *domain.FileSystemNode) int {
			return b.ModifiedAt.Compare(a.ModifiedAt)
		})
	default:
		slices.SortStableFunc(children, func(a, b *domain.FileSystemNode) int {
			return cmp.Compare(b.Size, a.Size)
		})
	}
	return children
}

func (appState *State) CursorNode() *domain.FileSystemNode {
	children := appState.VisibleChildren()
	if appState.Cursor < 0 || appState.Cursor >= len(children) {
		return nil
	}
	return children[appState.Cursor]
}

func (appState *State) MoveCursor(delta int) {
	appState.Cursor += delta
	appState.clampCursor()
}

func (appState *State) clampCursor() {
	count := len(appState.VisibleChildren())
	if appState.Cursor >= count {
		appState.Cursor = count - 1
	}
	if appState.Cursor < 0 {
		appState.Cursor = 0
	}
}

func (appState *State) EnterDir(id string) bool {
	node, ok := appState.Tree.Nodes[id]
	if !ok || !node.IsDir() || !node.Accessible {
		return false
	}
	appState.Current = id
	appState.Cursor = 0
	return true
}

// LeaveDir moves to the parent directory and puts the cursor on the
// directory that was left.
func (appState *State) LeaveDir() bool {
	node := appState.CurrentDir()
	if node == nil {
		return false
	}
	parent := appState.Tree.Parent(node)
	if parent == nil {
		return false
	}
	appState.Current = parent.ID
	appState.Cursor = 0
	for index, child := range appState.VisibleChildren() {
		if child.ID == node.ID {
			appState.Cursor = index
			break
		}
	}
	return true
}

func (appState *State) ToggleSelection(id string) {
	if id == "" {
		return
	}
	appState.Selected[id] = !appState.Selected[id]
	if !appState.Selected[id] {
		delete(appState.Selected, id)
	}
}

func (appState *State) ClearSelection() {
	appState.Selected = make(map[string]bool)
}

// SelectedPaths returns the marked paths in a stable order, or the node
// under the cursor when nothing is marked.
func (appState *State) SelectedPaths() []string {
	paths := make([]string, 0, len(appState.Selected))
	for id := range appState.Selected {
		if node, exists := appState.Tree.Nodes[id]; exists {
			paths = append(paths, node.Path)
		}
	}
	slices.Sort(paths)

	if len(paths) == 0 {
		if node := appState.CursorNode(); node != nil {
			paths = append(paths, node.Path)
		}
	}
	return paths
}

func (appState *State) SelectionSummary() (int, int64) {
	var total int64
	for id := range appState.Selected {
		if node, ok := appState.Tree.Nodes[id]; ok {
			total += node.Size
		}
	}
	return len(appState.Selected), total
}

// Prune drops deleted paths from the tree and shrinks every ancestor by the
// removed size.
func (appState *State) Prune(paths []string) {
	for _, path := range paths {
		node, ok := appState.Tree.Nodes[path]
		if !ok || path == appState.Tree.RootID {
			continue
		}
		parent := appState.Tree.Parent(node)
		for ancestor := parent; ancestor != nil; ancestor = appState.Tree.Parent(ancestor) {
			ancestor.Size -= node.Size
		}
		if parent != nil {
			parent.Children = slices.DeleteFunc(parent.Children, func(child *domain.FileSystemNode) bool {
				return child.ID == node.ID
			})
			slices.SortStableFunc(parent.Children, func(a, b *domain.FileSystemNode) int {
				return cmp.Compare(b.Size, a.Size)
			})
		}
		appState.forget(node)
	}
	if _, ok := appState.Tree.Nodes[appState.Current]; !ok {
		appState.Current = appState.Tree.RootID
	}
	appState.clampCursor()
}

func (appState *State) forget(node *domain.FileSystemNode) {
	pending := []*domain.FileSystemNode{node}
	for len(pending) > 0 {
		next := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		delete(appState.Tree.Nodes, next.ID)
		delete(appState.Selected, next.ID)
		pending = append(pending, next.Children...)
	}
}

func (appState *State) ToggleSortMode() domain.SortMode {
	switch appState.Prefs.SortMode {
	case domain.SortBySize:
		appState.Prefs.SortMode = domain.SortByName
	case domain.SortByName:
		appState.Prefs.SortMode = domain.SortByMod
	default:
		appState.Prefs.SortMode = domain.SortBySize
	}
	appState.clampCursor()
	return appState.Prefs.SortMode
}

func (appState *State) ToggleTrash() bool {
	appState.Prefs.UseTrash = !appState.Prefs.UseTrash
	return appState.Prefs.UseTrash
}

func (appState *State) nodeMatches(node *domain.FileSystemNode) bool {
	if node == nil {
		return false
	}
	if appState.SearchQuery != "" {
		query := strings.ToLower(appState.SearchQuery)
		if !strings.Contains(strings.ToLower(node.Name), query) {
			return false
		}
	}
	if appState.MinSizeBytes > 0 && node.Size < appState.MinSizeBytes {
		return false
	}
	return true
}

func (appState *State) ClearFilters() {
	appState.SearchQuery = ""
	appState.MinSizeBytes = 0
	appState.clampCursor()
}

// ConfigSnapshot captures the preferences worth persisting.
func (appState *State) ConfigSnapshot(base config.Config) config.Config {
	base.Path = appState.Path
	base.SafeMode = appState.Prefs.SafeMode
	base.UseTrash = appState.Prefs.UseTrash
	base.SortMode = appState.Prefs.SortMode
	base.Theme = appState.Prefs.Theme
	base.MaxDepth = appState.MaxDepth
	base.ExcludePatterns = appState.ExcludePatterns
	base.KeyBindings = appState.KeyBindings
	return base
}
