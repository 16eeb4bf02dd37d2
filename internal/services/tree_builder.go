package services

import (
	"cmp"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"diskscope/internal/domain"
)

type treeBuilder struct {
	maxDepth  *int
	excludes  []string
	progress  *progressReporter
	cancelled func() bool
}

// dirFrame is a directory whose entries are still being visited. Its node is
// folded into the parent only once the frame is popped, so the parent always
// adds a fully resolved subtree size.
type dirFrame struct {
	node    *domain.FileSystemNode
	entries []fs.DirEntry
	next    int
}

func (builder *treeBuilder) build(root string) *domain.FileSystemNode {
	info, err := os.Stat(root)
	if err != nil {
		return inaccessibleNode(root, "", 0, domain.NodeDir)
	}
	if !info.IsDir() {
		return fileNode(root, "", 0, info)
	}

	rootNode := dirNode(root, "", 0, info)
	frame := builder.open(rootNode)
	if frame == nil {
		return rootNode
	}

	stack := []*dirFrame{frame}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next >= len(top.entries) {
			sortBySize(top.node.Children)
			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				stack[len(stack)-1].node.Size += top.node.Size
			}
			continue
		}

		entry := top.entries[top.next]
		top.next++
		child, childFrame := builder.visit(top.node, entry)
		if child == nil {
			continue
		}
		top.node.Children = append(top.node.Children, child)
		if childFrame != nil {
			stack = append(stack, childFrame)
			continue
		}
		top.node.Size += child.Size
	}
	return rootNode
}

// open lists a directory unless the depth limit or a cancellation stops the
// descent. A listing failure marks the node inaccessible.
func (builder *treeBuilder) open(node *domain.FileSystemNode) *dirFrame {
	if builder.maxDepth != nil && node.Depth >= *builder.maxDepth {
		return nil
	}
	if builder.cancelled != nil && builder.cancelled() {
		return nil
	}
	entries, err := listDir(node.Path)
	if err != nil {
		node.Accessible = false
		return nil
	}
	return &dirFrame{node: node, entries: entries}
}

func (builder *treeBuilder) visit(parent *domain.FileSystemNode, entry fs.DirEntry) (*domain.FileSystemNode, *dirFrame) {
	path := filepath.Join(parent.Path, entry.Name())
	if MatchesExclusion(path, builder.excludes) {
		return nil, nil
	}
	builder.progress.visit(path)

	depth := parent.Depth + 1
	switch {
	case entry.Type()&fs.ModeSymlink != 0:
		return nil, nil
	case entry.IsDir():
		info, err := os.Lstat(path)
		if err != nil {
			return inaccessibleNode(path, parent.Path, depth, domain.NodeDir), nil
		}
		node := dirNode(path, parent.Path, depth, info)
		return node, builder.open(node)
	case entry.Type().IsRegular():
		info, err := os.Lstat(path)
		if err != nil {
			return inaccessibleNode(path, parent.Path, depth, domain.NodeFile), nil
		}
		builder.progress.addBytes(info.Size())
		return fileNode(path, parent.Path, depth, info), nil
	default:
		return nil, nil
	}
}

// listDir reads a whole directory and releases its handle before returning.
// Entries come back in name order.
func listDir(path string) ([]fs.DirEntry, error) {
	dir, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer dir.Close()

	entries, err := dir.ReadDir(-1)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return entries, nil
}

func sortBySize(children []*domain.FileSystemNode) {
	slices.SortStableFunc(children, func(a, b *domain.FileSystemNode) int {
		return cmp.Compare(b.Size, a.Size)
	})
}

func dirNode(path, parent string, depth int, info os.FileInfo) *domain.FileSystemNode {
	return &domain.FileSystemNode{
		ID:         path,
		Name:       nodeName(path),
		Path:       path,
		Kind:       domain.NodeDir,
		ParentPath: parent,
		Accessible: true,
		ModifiedAt: info.ModTime(),
		Depth:      depth,
	}
}

func fileNode(path, parent string, depth int, info os.FileInfo) *domain.FileSystemNode {
	return &domain.FileSystemNode{
		ID:         path,
		Name:       nodeName(path),
		Path:       path,
		Kind:       domain.NodeFile,
		Size:       info.Size(),
		ParentPath: parent,
		Accessible: true,
		ModifiedAt: info.ModTime(),
		Depth:      depth,
	}
}

func inaccessibleNode(path, parent string, depth int, kind domain.NodeKind) *domain.FileSystemNode {
	return &domain.FileSystemNode{
		ID:         path,
		Name:       nodeName(path),
		Path:       path,
		Kind:       kind,
		ParentPath: parent,
		Accessible: false,
		Depth:      depth,
	}
}

func nodeName(path string) string {
	name := filepath.Base(path)
	if name == "." || name == string(filepath.Separator) {
		return path
	}
	return name
}
