package embed

import (
	"bytes"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NodeID identifies a node for the lifetime of one Fragment. Ids of nodes
// that came from the source are assigned at parse time in document order;
// nodes added later get ids above every source id.
type NodeID int

// RootID is the id of the synthetic container every Fragment is rooted at.
const RootID NodeID = 0

type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

type Attr struct {
	Key string
	Val string
}

type Node struct {
	ID       NodeID
	Type     NodeType
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// Attr returns the value of the attribute named key.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr replaces the value of key in place, or appends it.
func (n *Node) SetAttr(key, val string) {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Val = val
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: key, Val: val})
}

func (n *Node) RemoveAttr(key string) {
	attrs := n.Attrs[:0]
	for _, a := range n.Attrs {
		if a.Key != key {
			attrs = append(attrs, a)
		}
	}
	n.Attrs = attrs
}

// TextContent concatenates the text of n and all its descendants.
func (n *Node) TextContent() string {
	var buf bytes.Buffer
	var walk func(*Node)
	walk = func(n *Node) {
		if n.Type == TextNode {
			buf.WriteString(n.Text)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

// Fragment is a cleaned HTML tree rooted at a synthetic container element.
// It is built fresh by every Sanitize call and never shared.
type Fragment struct {
	Root  *Node
	index map[NodeID]*Node
	next  NodeID
}

func newFragment(next NodeID) *Fragment {
	root := &Node{ID: RootID, Type: ElementNode, Tag: "div"}
	return &Fragment{
		Root:  root,
		index: map[NodeID]*Node{RootID: root},
		next:  next,
	}
}

// Lookup resolves an id against the tree. It returns nil for ids that are
// not part of this fragment, e.g. nodes removed by sanitization.
func (f *Fragment) Lookup(id NodeID) *Node {
	return f.index[id]
}

// Len reports the number of nodes in the fragment, root included.
func (f *Fragment) Len() int {
	return len(f.index)
}

func (f *Fragment) adopt(parent, n *Node) {
	parent.Children = append(parent.Children, n)
	f.index[n.ID] = n
}

// NewElement creates a detached element with a fresh id registered in the
// fragment. The caller links it into the tree.
func (f *Fragment) NewElement(tag string, attrs ...Attr) *Node {
	n := &Node{ID: f.next, Type: ElementNode, Tag: tag, Attrs: attrs}
	f.next++
	f.index[n.ID] = n
	return n
}

// Render writes the markup of the root's children, without the container.
func (f *Fragment) Render(w io.Writer) error {
	for _, c := range f.Root.Children {
		if err := html.Render(w, toHTML(c)); err != nil {
			return err
		}
	}
	return nil
}

// InnerHTML is Render into a string.
func (f *Fragment) InnerHTML() (string, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toHTML(n *Node) *html.Node {
	if n.Type == TextNode {
		return &html.Node{Type: html.TextNode, Data: n.Text}
	}

	hn := &html.Node{
		Type:     html.ElementNode,
		Data:     n.Tag,
		DataAtom: atom.Lookup([]byte(n.Tag)),
	}
	if len(n.Attrs) > 0 {
		hn.Attr = make([]html.Attribute, len(n.Attrs))
		for i, a := range n.Attrs {
			hn.Attr[i] = html.Attribute{Key: a.Key, Val: a.Val}
		}
	}
	for _, c := range n.Children {
		hn.AppendChild(toHTML(c))
	}
	return hn
}

func isVoid(tag string) bool {
	switch atom.Lookup([]byte(tag)) {
	case atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img,
		atom.Input, atom.Link, atom.Meta, atom.Source, atom.Track, atom.Wbr:
		return true
	}
	return false
}
