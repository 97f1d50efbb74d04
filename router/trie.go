// used by the router to match on paths

package router

import "strings"

// TrieNode indexes route patterns by segment. A node holds the ids of every
// route whose pattern ends there, in registration order.
type TrieNode struct {
	// static children
	children map[string]*TrieNode

	// parameter segment, eg. :id. Capture names live on the route, so
	// "/items/:id" and "/items/:slug" share this child.
	paramChild *TrieNode

	// wildcard segment, eg. *file
	wildcardChild *TrieNode

	routes []int
}

func NewTrieNode() *TrieNode {
	return &TrieNode{children: make(map[string]*TrieNode)}
}

// AddRoute records route id at the node for pattern p.
func (n *TrieNode) AddRoute(p Pattern, id int) {
	currentNode := n
	for _, seg := range p.segments {
		switch seg.kind {
		case segmentParam:
			if currentNode.paramChild == nil {
				currentNode.paramChild = NewTrieNode()
			}
			currentNode = currentNode.paramChild
		case segmentWildcard:
			if currentNode.wildcardChild == nil {
				currentNode.wildcardChild = NewTrieNode()
			}
			currentNode = currentNode.wildcardChild
		default:
			child, ok := currentNode.children[seg.value]
			if !ok {
				child = NewTrieNode()
				currentNode.children[seg.value] = child
			}
			currentNode = child
		}
	}
	currentNode.routes = append(currentNode.routes, id)
}

// trieMatch is a route id with the values its pattern captured, in order.
type trieMatch struct {
	id       int
	captured []string
}

// Match returns every route whose pattern matches the path. Unlike a
// first-match lookup it explores static, parameter and wildcard branches
// alike, so the caller can order the candidates as it likes.
func (n *TrieNode) Match(path string) []trieMatch {
	var out []trieMatch
	n.match(splitPath(path), nil, &out)
	return out
}

func (n *TrieNode) match(segments []string, captured []string, out *[]trieMatch) {
	if n.wildcardChild != nil {
		rest := strings.Join(segments, "/")
		for _, id := range n.wildcardChild.routes {
			*out = append(*out, trieMatch{id: id, captured: appendCopy(captured, rest)})
		}
	}

	if len(segments) == 0 {
		for _, id := range n.routes {
			*out = append(*out, trieMatch{id: id, captured: appendCopy(captured)})
		}
		return
	}

	head, tail := segments[0], segments[1:]
	if child, ok := n.children[head]; ok {
		child.match(tail, captured, out)
	}
	if n.paramChild != nil {
		n.paramChild.match(tail, appendCopy(captured, head), out)
	}
}

func appendCopy(s []string, more ...string) []string {
	out := make([]string, 0, len(s)+len(more))
	return append(append(out, s...), more...)
}
