package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"shadowtree/internal/tree"
)

func treeCmd() *cobra.Command {
	var detail bool
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "print the shadow tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}
			if detail {
				return m.RenderDetailed(cmd.OutOrStdout())
			}
			return m.Render(cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVarP(&detail, "detail", "d", false, "show sizes and modification times")
	return cmd
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <pattern>",
		Short: "search node names with a case-insensitive pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}
			results, err := m.Search(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintf(out, "No results found for: %s\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "Search results (%d) for: %s\n", len(results), args[0])
			for _, n := range results {
				marker := "f"
				if n.IsDir() {
					marker = "d"
				}
				fmt.Fprintf(out, "  [%s] %s  %s\n", marker, n.Name(), n.Path())
			}
			return nil
		},
	}
}

func mkdirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <parent> <name>",
		Short: "create a directory under the parent path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}
			parent, err := m.Resolve(args[0])
			if err != nil {
				return err
			}
			node, err := m.CreateDirectory(parent, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created directory: %s\n", node.Path())
			return nil
		},
	}
}

func touchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "touch <parent> <name>",
		Short: "create an empty file under the parent path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}
			parent, err := m.Resolve(args[0])
			if err != nil {
				return err
			}
			node, err := m.CreateFile(parent, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created file: %s\n", node.Path())
			return nil
		},
	}
}

func rmCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm <path>",
		Short: "delete a file or directory (recursively)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete %q without --yes", args[0])
			}
			m, err := newManager()
			if err != nil {
				return err
			}
			target, err := m.Resolve(args[0])
			if err != nil {
				return err
			}
			parent := m.FindParent(target)
			if parent == nil {
				return fmt.Errorf("cannot delete the base directory")
			}
			if err := m.Delete(parent, target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed: %s\n", target.Path())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the deletion")
	return cmd
}

func mvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <path> <new-parent> <new-name>",
		Short: "rename or move a file or directory",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}
			target, err := m.Resolve(args[0])
			if err != nil {
				return err
			}
			newParent, err := m.Resolve(args[1])
			if err != nil {
				return err
			}
			if err := m.Rename(target, newParent, args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed to: %s\n", target.Path())
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <source-file> <dest-parent>",
		Short: "copy an outside file into the tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}
			src, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			dest, err := m.Resolve(args[1])
			if err != nil {
				return err
			}
			node, err := m.Import(dest, filepath.ToSlash(src))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported: %s\n", node.Path())
			return nil
		},
	}
}

func previewCmd() *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "preview <path>",
		Short: "print the first lines of a text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}
			node, err := m.Resolve(args[0])
			if err != nil {
				return err
			}
			if !tree.IsTextFile(node) {
				return fmt.Errorf("%s is not a previewable text file", node.Path())
			}
			if lines <= 0 {
				lines = cfg.MaxPreviewLines
			}
			n, err := m.Preview(node, cmd.OutOrStdout(), lines)
			if err != nil {
				return err
			}
			logger.Debug("Previewed %d lines of %s", n, node.Path())
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 0, "maximum lines to print (default from config)")
	return cmd
}
