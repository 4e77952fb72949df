package tree

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Render writes an indented listing of the tree to w, directories marked
// with a trailing slash.
func (m *Manager) Render(w io.Writer) error {
	return m.render(w, false)
}

// RenderDetailed writes the listing with size and modification time columns.
func (m *Manager) RenderDetailed(w io.Writer) error {
	return m.render(w, true)
}

func (m *Manager) render(w io.Writer, detailed bool) error {
	if m.root == nil {
		_, err := fmt.Fprintln(w, "(tree is empty)")
		return err
	}
	return renderNode(w, m.root, 0, detailed)
}

func renderNode(w io.Writer, n *Node, depth int, detailed bool) error {
	label := n.name
	if n.IsDir() {
		label += "/"
	}

	var err error
	if detailed {
		_, err = fmt.Fprintf(w, "%s%s  %s  %s\n",
			strings.Repeat("  ", depth), label, FormatSize(n.size), FormatTime(n.modTime))
	} else {
		_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), label)
	}
	if err != nil {
		return err
	}

	for _, c := range n.children {
		if err := renderNode(w, c, depth+1, detailed); err != nil {
			return err
		}
	}
	return nil
}

// FormatSize renders a byte count in human-readable form with two decimals,
// stepping through B, KB, MB, GB.
func FormatSize(bytes int64) string {
	units := []string{"B", "KB", "MB", "GB"}
	size := float64(bytes)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	return fmt.Sprintf("%.2f%s", size, units[i])
}

// FormatTime renders a timestamp as YYYY-MM-DD HH:MM:SS, or "-" when no
// snapshot was taken.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}
