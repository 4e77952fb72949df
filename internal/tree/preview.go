package tree

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"strings"
)

// Extensions whose content is reasonable to dump to a terminal.
var textExtensions = map[string]struct{}{
	".txt": {}, ".log": {}, ".csv": {}, ".json": {}, ".xml": {},
	".cpp": {}, ".h": {}, ".hpp": {}, ".java": {}, ".py": {},
	".js": {}, ".html": {}, ".css": {}, ".go": {}, ".md": {},
}

// IsTextFile reports whether the node's extension marks it as a text file
// suitable for Preview.
func IsTextFile(n *Node) bool {
	if n == nil || n.IsDir() {
		return false
	}
	ext := strings.ToLower(path.Ext(n.name))
	_, ok := textExtensions[ext]
	return ok
}

// Preview writes up to maxLines lines of the file node's content to w and
// returns the number of lines written. How the caller pages or displays the
// content is outside the tree's concern.
func (m *Manager) Preview(n *Node, w io.Writer, maxLines int) (int, error) {
	if err := m.checkLive(OpPreview, n); err != nil {
		return 0, err
	}
	if n.IsDir() {
		return 0, newError(OpPreview, n.path, ErrNotRegularFile)
	}

	f, err := m.fsys.Open(n.path)
	if err != nil {
		return 0, newError(OpPreview, n.path, err)
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for lines < maxLines && scanner.Scan() {
		if _, err := fmt.Fprintln(w, scanner.Text()); err != nil {
			return lines, newError(OpPreview, n.path, err)
		}
		lines++
	}
	if err := scanner.Err(); err != nil {
		return lines, newError(OpPreview, n.path, err)
	}
	return lines, nil
}
