package domain

import "time"

type NodeKind string

const (
	NodeFile NodeKind = "file"
	NodeDir  NodeKind = "directory"
)

// FileSystemNode is one entry visited by a scan. Directory sizes are the sum of
// their children and children are kept in descending size order.
type FileSystemNode struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Path       string            `json:"path"`
	Kind       NodeKind          `json:"type"`
	Size       int64             `json:"size"`
	Children   []*FileSystemNode `json:"children,omitempty"`
	ParentPath string            `json:"parentPath,omitempty"`
	Accessible bool              `json:"accessible"`
	ModifiedAt time.Time         `json:"modifiedAt"`
	Depth      int               `json:"depth"`
}

func (node *FileSystemNode) IsDir() bool {
	return node != nil && node.Kind == NodeDir
}

// TreeIndex gives path lookup over a scanned tree. Nodes are shared with the tree.
type TreeIndex struct {
	Nodes  map[string]*FileSystemNode
	RootID string
}

func NewTreeIndex(root *FileSystemNode) TreeIndex {
	index := TreeIndex{Nodes: make(map[string]*FileSystemNode)}
	if root == nil {
		return index
	}
	index.RootID = root.ID
	pending := []*FileSystemNode{root}
	for len(pending) > 0 {
		node := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		index.Nodes[node.ID] = node
		pending = append(pending, node.Children...)
	}
	return index
}

func (index TreeIndex) Root() *FileSystemNode {
	return index.Nodes[index.RootID]
}

func (index TreeIndex) Parent(node *FileSystemNode) *FileSystemNode {
	if node == nil || node.ParentPath == "" {
		return nil
	}
	return index.Nodes[node.ParentPath]
}
