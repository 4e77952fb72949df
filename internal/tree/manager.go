package tree

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"shadowtree/internal/logging"
)

var treeLogger = logging.GetLogger().WithPrefix("tree")

// DefaultMaxDepth bounds Build recursion. Subtrees nested deeper are
// skipped with a warning instead of overflowing the stack.
const DefaultMaxDepth = 256

// progressInterval controls how often Build logs a progress counter.
const progressInterval = 100

// Manager owns the shadow tree for one base directory. It builds, queries,
// and mutates the tree while performing the corresponding real filesystem
// operation, so the two cannot diverge: every mutation runs the filesystem
// action first and updates the in-memory structure only on success.
//
// A Manager is not safe for concurrent use; the tree is mutated by a single
// control flow.
type Manager struct {
	fsys       billy.Filesystem
	base       string
	maxDepth   int
	root       *Node
	parents    map[*Node]*Node
	generation uint64
	lastSearch *SearchState
	logger     *logging.Logger
}

// New creates a Manager for the given base directory on the real
// filesystem. The directory must exist. The tree is not built yet; call
// Build.
func New(basePath string) (*Manager, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, newError(OpBuild, basePath, err)
	}
	return NewWithFilesystem(filepath.ToSlash(abs), osfs.New("/"))
}

// NewWithFilesystem creates a Manager rooted at basePath inside the given
// filesystem. Tests use this with an in-memory filesystem; New uses it with
// the OS filesystem.
func NewWithFilesystem(basePath string, fsys billy.Filesystem) (*Manager, error) {
	base := path.Clean(basePath)
	info, err := fsys.Stat(base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, newError(OpBuild, base, ErrNotFound)
		}
		return nil, newError(OpBuild, base, err)
	}
	if !info.IsDir() {
		return nil, newError(OpBuild, base, ErrInvalidParent)
	}

	treeLogger.Debug("Creating manager for base: %s", base)
	return &Manager{
		fsys:     fsys,
		base:     base,
		maxDepth: DefaultMaxDepth,
		parents:  make(map[*Node]*Node),
		logger:   treeLogger,
	}, nil
}

// SetMaxDepth overrides the Build recursion bound.
func (m *Manager) SetMaxDepth(depth int) {
	if depth > 0 {
		m.maxDepth = depth
	}
}

// BasePath returns the base directory the tree shadows.
func (m *Manager) BasePath() string { return m.base }

// Root returns the current root node, or nil before the first Build.
func (m *Manager) Root() *Node { return m.root }

// Build recursively scans the base directory and materializes the shadow
// tree, replacing any previous tree. Unreadable entries are skipped rather
// than aborting the scan; Build fails only if the base path itself is gone.
// Any node references held from before a rebuild become stale.
func (m *Manager) Build() (*Node, error) {
	m.logger.Info("Building tree from: %s", m.base)

	info, err := m.fsys.Stat(m.base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, newError(OpBuild, m.base, ErrNotFound)
		}
		return nil, newError(OpBuild, m.base, err)
	}
	if !info.IsDir() {
		return nil, newError(OpBuild, m.base, ErrInvalidParent)
	}

	m.generation++
	m.parents = make(map[*Node]*Node)
	m.lastSearch = nil

	count := 0
	root := m.scan(path.Base(m.base), m.base, info, 0, &count)
	m.root = root

	m.logger.Info("Tree built: %d entries under %s", count, m.base)
	return root, nil
}

// scan materializes one entry and, for directories, its subtree. Returned
// nodes carry the current generation. info comes from the parent listing
// (Lstat semantics), so symlinks are recorded without following them and
// cycles through symlinked directories cannot occur.
func (m *Manager) scan(name, fullPath string, info os.FileInfo, depth int, count *int) *Node {
	kind := KindFile
	if info.IsDir() {
		kind = KindDirectory
	}

	node := NewNode(name, fullPath, kind)
	node.gen = m.generation
	node.setInfo(info.Size(), info.ModTime())

	*count++
	if *count%progressInterval == 0 {
		m.logger.Debug("Scanned %d entries...", *count)
	}

	if kind != KindDirectory {
		return node
	}

	if depth >= m.maxDepth {
		m.logger.Warn("Skipping %s: recursion depth %d exceeded", fullPath, m.maxDepth)
		return node
	}

	entries, err := m.fsys.ReadDir(fullPath)
	if err != nil {
		// Partial-failure tolerance: an unreadable directory stays in the
		// tree as an empty directory node.
		m.logger.Warn("Skipping unreadable directory %s: %v", fullPath, err)
		return node
	}

	for _, entry := range entries {
		child := m.scan(entry.Name(), path.Join(fullPath, entry.Name()), entry, depth+1, count)
		if err := node.AddChild(child); err != nil {
			continue
		}
		m.parents[child] = node
	}
	return node
}

// Refresh discards the current tree entirely and rebuilds it from the base
// path. Node references obtained before a Refresh are invalid afterward;
// identity-based operations on them fail with ErrStaleNode. The old tree is
// discarded before the rebuild, so a failed Refresh leaves the manager
// without a tree (Root reports nil) rather than restoring the previous one.
func (m *Manager) Refresh() (*Node, error) {
	m.logger.Info("Refreshing tree from: %s", m.base)
	m.root = nil
	root, err := m.Build()
	if err != nil {
		return nil, newError(OpRefresh, m.base, err)
	}
	return root, nil
}

// FindByName returns the first node whose name matches exactly, in
// depth-first pre-order, or nil if none matches. If multiple nodes share a
// name, only the first encountered is reachable through this operation;
// Resolve is the unambiguous addressing scheme and Search reports every
// match.
func (m *Manager) FindByName(name string) *Node {
	var found *Node
	m.walk(func(n *Node) bool {
		if n.name == name {
			found = n
			return false
		}
		return true
	})
	m.logger.Debug("FindByName %q -> %v", name, found != nil)
	return found
}

// FindParent returns the directory node whose immediate children contain
// target, or nil if target is the root or not part of the tree.
func (m *Manager) FindParent(target *Node) *Node {
	return m.parents[target]
}

// Resolve addresses a node by its path relative to the base directory.
// An empty path, ".", or "/" resolves to the root.
func (m *Manager) Resolve(relPath string) (*Node, error) {
	if m.root == nil {
		return nil, newError(OpResolve, relPath, ErrNotFound)
	}
	cleaned := strings.Trim(path.Clean("/"+relPath), "/")
	node := m.root
	if cleaned == "" || cleaned == "." {
		return node, nil
	}
	for _, part := range strings.Split(cleaned, "/") {
		var next *Node
		for _, c := range node.children {
			if c.name == part {
				next = c
				break
			}
		}
		if next == nil {
			return nil, newError(OpResolve, relPath, ErrNotFound)
		}
		node = next
	}
	return node, nil
}

// CreateDirectory creates a directory named name on disk under parent and,
// on success, appends a matching directory node to parent's children.
func (m *Manager) CreateDirectory(parent *Node, name string) (*Node, error) {
	return m.createNode(parent, name, KindDirectory)
}

// CreateFile creates an empty file named name on disk under parent and, on
// success, appends a matching file node to parent's children.
func (m *Manager) CreateFile(parent *Node, name string) (*Node, error) {
	return m.createNode(parent, name, KindFile)
}

func (m *Manager) createNode(parent *Node, name string, kind NodeKind) (*Node, error) {
	op := OpCreate
	if kind == KindDirectory {
		op = OpMkdir
	}
	if err := m.checkLive(op, parent); err != nil {
		return nil, err
	}
	if !parent.IsDir() {
		return nil, newError(op, parent.path, ErrInvalidParent)
	}
	if err := validateName(name); err != nil {
		return nil, newError(op, name, err)
	}

	newPath := path.Join(parent.path, name)
	if _, err := m.fsys.Stat(newPath); err == nil {
		return nil, newError(op, newPath, ErrExists)
	}

	if kind == KindDirectory {
		if err := m.fsys.MkdirAll(newPath, 0o755); err != nil {
			return nil, newError(op, newPath, err)
		}
	} else {
		f, err := m.fsys.Create(newPath)
		if err != nil {
			return nil, newError(op, newPath, err)
		}
		if err := f.Close(); err != nil {
			return nil, newError(op, newPath, err)
		}
	}

	node := NewNode(name, newPath, kind)
	node.gen = m.generation
	if info, err := m.fsys.Stat(newPath); err == nil {
		node.setInfo(info.Size(), info.ModTime())
	}

	if err := parent.AddChild(node); err != nil {
		return nil, err
	}
	m.parents[node] = parent

	m.logger.Info("Created %s: %s", kind, newPath)
	return node, nil
}

// Delete removes target from disk (recursively for directories) and, on
// success, from parent's child sequence. target must be an actual child of
// parent, verified by identity. Deleting the root is rejected by policy
// before any disk operation.
func (m *Manager) Delete(parent, target *Node) error {
	if err := m.checkLive(OpRemove, parent); err != nil {
		return err
	}
	if err := m.checkLive(OpRemove, target); err != nil {
		return err
	}
	if target == m.root {
		return newError(OpRemove, target.path, ErrPolicyViolation)
	}
	if !parent.IsDir() {
		return newError(OpRemove, parent.path, ErrInvalidParent)
	}
	if !parent.hasChild(target) {
		return newError(OpRemove, target.path, ErrNotChild)
	}

	var err error
	if target.IsDir() {
		err = m.removeAll(target.path)
	} else {
		err = m.fsys.Remove(target.path)
	}
	if err != nil {
		return newError(OpRemove, target.path, err)
	}

	parent.removeChild(target)
	m.forget(target)

	m.logger.Info("Removed %s: %s", target.kind, target.path)
	return nil
}

// removeAll removes a path and everything under it, post-order. The backing
// filesystem abstraction has no recursive remove of its own.
func (m *Manager) removeAll(p string) error {
	info, err := m.fsys.Stat(p)
	if err != nil {
		return err
	}
	if info.IsDir() {
		entries, err := m.fsys.ReadDir(p)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := m.removeAll(path.Join(p, entry.Name())); err != nil {
				return err
			}
		}
	}
	return m.fsys.Remove(p)
}

// forget drops a removed node and its descendants from the parent index.
func (m *Manager) forget(n *Node) {
	delete(m.parents, n)
	for _, c := range n.children {
		m.forget(c)
	}
}

// Rename renames or moves target under newParent with newName. A
// destination path that already exists is rejected with ErrExists before
// any disk operation; a move never overwrites. The real rename runs first;
// on success the node's name, path, and metadata snapshot are updated,
// descendant paths are rewritten so the path invariant holds for the whole
// moved subtree, and ownership transfers to newParent when the parent
// changes. On failure no tree state changes.
func (m *Manager) Rename(target, newParent *Node, newName string) error {
	if err := m.checkLive(OpRename, target); err != nil {
		return err
	}
	if err := m.checkLive(OpRename, newParent); err != nil {
		return err
	}
	if target == m.root {
		return newError(OpRename, target.path, ErrPolicyViolation)
	}
	if !newParent.IsDir() {
		return newError(OpRename, newParent.path, ErrInvalidParent)
	}
	if err := validateName(newName); err != nil {
		return newError(OpRename, newName, err)
	}
	// A directory cannot be moved into itself or its own subtree.
	if target == newParent || m.isDescendant(target, newParent) {
		return newError(OpRename, newParent.path, ErrInvalidParent)
	}

	oldPath := target.path
	newPath := path.Join(newParent.path, newName)
	if newPath != oldPath {
		// The backing filesystem's rename silently replaces an existing
		// file, which would leave two nodes sharing one path.
		if _, err := m.fsys.Stat(newPath); err == nil {
			return newError(OpRename, newPath, ErrExists)
		}
		if err := m.fsys.Rename(oldPath, newPath); err != nil {
			return newError(OpRename, oldPath, err)
		}
	}

	target.setName(newName)
	m.rebase(target, newPath)
	if info, err := m.fsys.Stat(newPath); err == nil {
		target.setInfo(info.Size(), info.ModTime())
	}

	oldParent := m.parents[target]
	if oldParent != nil && oldParent != newParent {
		oldParent.removeChild(target)
		if err := newParent.AddChild(target); err != nil {
			return err
		}
		m.parents[target] = newParent
	}

	m.logger.Info("Renamed %s -> %s", oldPath, newPath)
	return nil
}

// rebase rewrites the path of n and every descendant under the new prefix.
func (m *Manager) rebase(n *Node, newPath string) {
	n.setPath(newPath)
	for _, c := range n.children {
		m.rebase(c, path.Join(newPath, c.name))
	}
}

// isDescendant reports whether n lives somewhere under ancestor.
func (m *Manager) isDescendant(ancestor, n *Node) bool {
	for p := m.parents[n]; p != nil; p = m.parents[p] {
		if p == ancestor {
			return true
		}
	}
	return false
}

// Import copies the regular file at sourcePath into destParent, overwriting
// any existing file of the same name, and on success appends (or replaces)
// the matching file node. sourcePath is interpreted within the manager's
// backing filesystem.
func (m *Manager) Import(destParent *Node, sourcePath string) (*Node, error) {
	if err := m.checkLive(OpImport, destParent); err != nil {
		return nil, err
	}
	if !destParent.IsDir() {
		return nil, newError(OpImport, destParent.path, ErrInvalidParent)
	}

	src := path.Clean(sourcePath)
	info, err := m.fsys.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, newError(OpImport, src, ErrNotFound)
		}
		return nil, newError(OpImport, src, err)
	}
	if !info.Mode().IsRegular() {
		return nil, newError(OpImport, src, ErrNotRegularFile)
	}

	name := path.Base(src)
	dstPath := path.Join(destParent.path, name)
	if err := m.copyFile(src, dstPath); err != nil {
		return nil, newError(OpImport, dstPath, err)
	}

	// Overwriting an existing file must not leave two nodes for one path.
	for _, c := range destParent.children {
		if c.name == name {
			destParent.removeChild(c)
			m.forget(c)
			break
		}
	}

	node := NewNode(name, dstPath, KindFile)
	node.gen = m.generation
	if fi, err := m.fsys.Stat(dstPath); err == nil {
		node.setInfo(fi.Size(), fi.ModTime())
	}
	if err := destParent.AddChild(node); err != nil {
		return nil, err
	}
	m.parents[node] = destParent

	m.logger.Info("Imported %s -> %s", src, dstPath)
	return node, nil
}

func (m *Manager) copyFile(src, dst string) error {
	sf, err := m.fsys.Open(src)
	if err != nil {
		return err
	}
	defer sf.Close()

	df, err := m.fsys.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(df, sf); err != nil {
		df.Close()
		return err
	}
	return df.Close()
}

// NodeCount returns the total number of nodes in the tree, root included.
func (m *Manager) NodeCount() int {
	count := 0
	m.walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// walk visits every node in depth-first pre-order (parent before children,
// children in listing order) until fn returns false.
func (m *Manager) walk(fn func(*Node) bool) {
	walkNode(m.root, fn)
}

func walkNode(n *Node, fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !walkNode(c, fn) {
			return false
		}
	}
	return true
}

// checkLive rejects node references that predate the last rebuild.
func (m *Manager) checkLive(op string, n *Node) error {
	if n == nil {
		return newError(op, "", ErrNotFound)
	}
	if n.gen != m.generation {
		return newError(op, n.path, ErrStaleNode)
	}
	return nil
}

// validateName rejects empty names and names that escape the parent.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, "/\\") {
		return ErrInvalidName
	}
	return nil
}
