// Package chain models audit/content table pairs and the parent links that
// join a composite entity across several physical tables.
//
// A Chain is built once from configuration and is read-only afterwards.
// Nodes live in a slice and refer to their parent by index; construction
// rejects unknown parents, duplicates, self-references and cycles, so every
// walk up the parent links terminates.
package chain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/revaudit/internal/row"
)

// NoParent marks a root node.
const NoParent = -1

// Def describes one table pair before linking.
type Def struct {
	// AuditName is the audit table and the identity of the node.
	AuditName string

	// ContentName is the live content table.
	ContentName string

	// Parent is the AuditName of the parent pair, empty for roots.
	Parent string

	// ContentOnlyColumns exist on the content table but are deliberately
	// not audited. They are inherited by descendants.
	ContentOnlyColumns []string
}

// Node is one linked audit/content table pair.
type Node struct {
	AuditName   string
	ContentName string

	// Parent is the index of the parent node in the chain, or NoParent.
	Parent int

	// ContentOnly holds this node's and all ancestors' content-only columns.
	ContentOnly map[string]struct{}
}

// HasParent reports whether the node is joined to a parent pair.
func (n Node) HasParent() bool {
	return n.Parent != NoParent
}

// IsContentOnly reports whether a column is excluded from audit comparison.
func (n Node) IsContentOnly(column string) bool {
	_, ok := n.ContentOnly[row.Normalize(column)]
	return ok
}

// Chain is the validated set of table pairs.
type Chain struct {
	nodes   []Node
	byAudit map[string]int
}

// Error describes a chain that cannot be built.
type Error struct {
	Table   string
	Message string
	// Path is the offending parent walk for cycle errors.
	Path []string
}

func (e *Error) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("table chain %s: %s (%s)", e.Table, e.Message, strings.Join(e.Path, " -> "))
	}
	return fmt.Sprintf("table chain %s: %s", e.Table, e.Message)
}

// New links defs into a Chain.
// Node order follows defs. Names are normalized to upper case.
func New(defs []Def) (*Chain, error) {
	c := &Chain{
		nodes:   make([]Node, len(defs)),
		byAudit: make(map[string]int, len(defs)),
	}

	for i, d := range defs {
		audit := row.Normalize(d.AuditName)
		if audit == "" {
			return nil, &Error{Table: fmt.Sprintf("#%d", i), Message: "audit table name is empty"}
		}
		if _, dup := c.byAudit[audit]; dup {
			return nil, &Error{Table: audit, Message: "audit table configured more than once"}
		}
		content := row.Normalize(d.ContentName)
		if content == "" {
			return nil, &Error{Table: audit, Message: "content table name is empty"}
		}
		c.byAudit[audit] = i
		c.nodes[i] = Node{AuditName: audit, ContentName: content, Parent: NoParent}
	}

	for i, d := range defs {
		if strings.TrimSpace(d.Parent) == "" {
			continue
		}
		parent := row.Normalize(d.Parent)
		p, ok := c.byAudit[parent]
		if !ok {
			return nil, &Error{Table: c.nodes[i].AuditName, Message: fmt.Sprintf("parent %s is not configured", parent)}
		}
		if p == i {
			return nil, &Error{Table: c.nodes[i].AuditName, Message: "table is its own parent"}
		}
		c.nodes[i].Parent = p
	}

	if err := c.checkAcyclic(); err != nil {
		return nil, err
	}

	for i, d := range defs {
		c.nodes[i].ContentOnly = make(map[string]struct{})
		for _, col := range d.ContentOnlyColumns {
			c.nodes[i].ContentOnly[row.Normalize(col)] = struct{}{}
		}
	}
	// Inherit after all own sets exist; ancestors are walked, not recursed.
	for i := range c.nodes {
		for _, a := range c.Ancestors(i) {
			for _, col := range defs[a].ContentOnlyColumns {
				c.nodes[i].ContentOnly[row.Normalize(col)] = struct{}{}
			}
		}
	}

	return c, nil
}

// checkAcyclic walks every node's parent links at most len(nodes) steps.
func (c *Chain) checkAcyclic() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(c.nodes))

	for start := range c.nodes {
		if state[start] == done {
			continue
		}
		var path []int
		for i := start; i != NoParent && state[i] != done; i = c.nodes[i].Parent {
			if state[i] == visiting {
				return &Error{
					Table:   c.nodes[i].AuditName,
					Message: "parent links form a cycle",
					Path:    c.names(append(path, i)),
				}
			}
			state[i] = visiting
			path = append(path, i)
		}
		for _, i := range path {
			state[i] = done
		}
	}
	return nil
}

func (c *Chain) names(idx []int) []string {
	out := make([]string, len(idx))
	for i, n := range idx {
		out[i] = c.nodes[n].AuditName
	}
	return out
}

// Len returns the number of nodes.
func (c *Chain) Len() int {
	return len(c.nodes)
}

// Node returns the node at index i.
func (c *Chain) Node(i int) Node {
	return c.nodes[i]
}

// Nodes returns a copy of all nodes in configuration order.
func (c *Chain) Nodes() []Node {
	out := make([]Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// Lookup finds a node by audit table name.
func (c *Chain) Lookup(auditName string) (int, bool) {
	i, ok := c.byAudit[row.Normalize(auditName)]
	return i, ok
}

// LookupContent finds the first node whose content table matches name.
func (c *Chain) LookupContent(contentName string) (int, bool) {
	name := row.Normalize(contentName)
	for i, n := range c.nodes {
		if n.ContentName == name {
			return i, true
		}
	}
	return 0, false
}

// Ancestors returns the parent indices of node i, nearest first.
func (c *Chain) Ancestors(i int) []int {
	var out []int
	for p := c.nodes[i].Parent; p != NoParent && len(out) < len(c.nodes); p = c.nodes[p].Parent {
		out = append(out, p)
	}
	return out
}

// Lineage returns node i followed by its ancestors, nearest first.
func (c *Chain) Lineage(i int) []int {
	return append([]int{i}, c.Ancestors(i)...)
}

// AuditNames returns every configured audit table name, sorted.
func (c *Chain) AuditNames() []string {
	names := make([]string, 0, len(c.nodes))
	for _, n := range c.nodes {
		names = append(names, n.AuditName)
	}
	sort.Strings(names)
	return names
}
