package tree

import (
	"time"
)

// NodeKind distinguishes file nodes from directory nodes.
type NodeKind int

const (
	// KindFile is a regular file entry
	KindFile NodeKind = iota
	// KindDirectory is a directory entry that may own children
	KindDirectory
)

// String returns a string representation of the NodeKind.
func (k NodeKind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// Node represents one filesystem entry in the shadow tree. A Node owns its
// children exclusively and stores no parent reference; parent lookup goes
// through the Manager, which keeps a parent index.
//
// Size and modification time are best-effort snapshots taken when the node
// was built or last touched by a mutation; they can go stale if another
// process changes the underlying file.
type Node struct {
	name     string
	path     string
	kind     NodeKind
	size     int64
	modTime  time.Time
	children []*Node
	gen      uint64 // tree generation this node belongs to
}

// NewNode creates a node for the given name, full path, and kind.
// Size and modification time start zeroed until refreshed from disk.
func NewNode(name, path string, kind NodeKind) *Node {
	return &Node{
		name: name,
		path: path,
		kind: kind,
	}
}

// Name returns the last path component of the node.
func (n *Node) Name() string { return n.name }

// Path returns the node's full path. For every non-root node it equals the
// parent's path joined with the node's name.
func (n *Node) Path() string { return n.path }

// Kind returns whether the node is a file or a directory.
func (n *Node) Kind() NodeKind { return n.kind }

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool { return n.kind == KindDirectory }

// Size returns the snapshot byte length; always 0 for directories.
func (n *Node) Size() int64 { return n.size }

// ModTime returns the snapshot modification time.
func (n *Node) ModTime() time.Time { return n.modTime }

// Children returns the node's children in listing order. The returned slice
// is a copy; structural changes flow through the Manager only.
func (n *Node) Children() []*Node {
	if len(n.children) == 0 {
		return nil
	}
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// AddChild appends a child to a directory node. Adding a child to a file
// node is a reported error and leaves the node unchanged.
func (n *Node) AddChild(child *Node) error {
	if n.kind != KindDirectory {
		return newError(OpBuild, n.path, ErrInvalidParent)
	}
	n.children = append(n.children, child)
	return nil
}

// setInfo records a size/mtime snapshot. Directories always report size 0.
func (n *Node) setInfo(size int64, modTime time.Time) {
	if n.kind == KindDirectory {
		size = 0
	}
	n.size = size
	n.modTime = modTime
}

func (n *Node) setName(name string) { n.name = name }

func (n *Node) setPath(path string) { n.path = path }

// hasChild reports whether target is an immediate child, compared by
// identity rather than by name.
func (n *Node) hasChild(target *Node) bool {
	for _, c := range n.children {
		if c == target {
			return true
		}
	}
	return false
}

// removeChild splices target out of the child sequence, compared by
// identity. It reports whether the target was present.
func (n *Node) removeChild(target *Node) bool {
	for i, c := range n.children {
		if c == target {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return true
		}
	}
	return false
}
