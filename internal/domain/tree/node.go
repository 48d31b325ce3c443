// Package tree converts stored audit documents into the node shape consumed
// by the FancyTree widget on the home page.
package tree

import "encoding/json"

// Node is a single FancyTree node.
type Node struct {
	Title    string `json:"title"`
	Key      string `json:"key"`
	Folder   bool   `json:"folder,omitempty"`
	Expanded bool   `json:"expanded,omitempty"`
	Children []Node `json:"children,omitempty"`
}

// Snippet returns the JSON encoding of the node, ready to embed in a page.
func (n Node) Snippet() (string, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Nodes is the ordered transformer output.
type Nodes []Node

// First returns the first node, or false when there is none.
func (ns Nodes) First() (Node, bool) {
	if len(ns) == 0 {
		return Node{}, false
	}
	return ns[0], true
}
