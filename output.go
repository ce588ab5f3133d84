package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

const (
	defaultOutputName = "code_summary.txt"
	recordSeparator   = "\n\n\n\n\n\n\n\n\n\n\n" // eleven newlines: ten blank lines between records
)

// formatRecord renders one record as it appears in the summary file.
func formatRecord(r FileRecord) string {
	return fmt.Sprintf("File %d: path= %s\n\nCODE:\n```\n%s\n```", r.Index, r.RelativePath, r.Content)
}

// joinRecords renders all records separated by recordSeparator.
func joinRecords(records []FileRecord) string {
	blocks := make([]string, len(records))
	for i, r := range records {
		blocks[i] = formatRecord(r)
	}
	return strings.Join(blocks, recordSeparator)
}

// writeSummary writes text to path in a single write, replacing any
// existing file.
func writeSummary(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("error writing to file %s: %w", path, err)
	}
	return nil
}

// normalizeOutputName applies the output name defaults: an empty name
// becomes code_summary.txt and a missing .txt suffix (compared without
// regard to case) is appended.
func normalizeOutputName(name string) string {
	if name == "" {
		return defaultOutputName
	}
	if !strings.HasSuffix(strings.ToLower(name), ".txt") {
		return name + ".txt"
	}
	return name
}

// Node represents an entry in the directory tree view.
type Node struct {
	Name     string
	IsDir    bool
	Children []*Node
}

// buildTree constructs a tree from the records' relative paths. Records
// whose path fell back to an absolute path are placed under the root as
// they are.
func buildTree(records []FileRecord, rootName string) *Node {
	root := &Node{Name: rootName, IsDir: true}
	dirs := map[string]*Node{"": root}

	for _, r := range records {
		parts := strings.Split(strings.Trim(r.RelativePath, "/"), "/")
		parent := root
		prefix := ""
		for _, dir := range parts[:len(parts)-1] {
			if prefix == "" {
				prefix = dir
			} else {
				prefix = prefix + "/" + dir
			}
			node, ok := dirs[prefix]
			if !ok {
				node = &Node{Name: dir, IsDir: true}
				parent.Children = append(parent.Children, node)
				dirs[prefix] = node
			}
			parent = node
		}
		parent.Children = append(parent.Children, &Node{Name: parts[len(parts)-1]})
	}

	sortChildren(root)
	return root
}

// sortChildren recursively sorts the children of a node alphabetically.
func sortChildren(node *Node) {
	if !node.IsDir || len(node.Children) == 0 {
		return
	}
	sort.SliceStable(node.Children, func(i, j int) bool {
		return node.Children[i].Name < node.Children[j].Name
	})
	for _, child := range node.Children {
		sortChildren(child)
	}
}

// printTree generates the string representation of the tree.
func printTree(root *Node) string {
	var builder strings.Builder
	builder.WriteString(root.Name)
	builder.WriteString("\n")
	printNode(&builder, root.Children, "")
	return builder.String()
}

func printNode(builder *strings.Builder, children []*Node, prefix string) {
	for i, node := range children {
		connector := "├── "
		newPrefix := prefix + "│   "
		if i == len(children)-1 {
			connector = "└── "
			newPrefix = prefix + "    "
		}

		builder.WriteString(prefix)
		builder.WriteString(connector)
		builder.WriteString(node.Name)
		builder.WriteString("\n")

		if node.IsDir && len(node.Children) > 0 {
			printNode(builder, node.Children, newPrefix)
		}
	}
}
