package parser

import "encoding/json"

type jsonNode struct {
	Kind     string      `json:"kind"`
	Span     *jsonSpan   `json:"span,omitempty"`
	Token    string      `json:"token,omitempty"`
	Name     string      `json:"name,omitempty"`
	Op       string      `json:"op,omitempty"`
	Negated  bool        `json:"negated,omitempty"`
	Computed bool        `json:"computed,omitempty"`
	Implicit bool        `json:"implicit,omitempty"`
	Missing  bool        `json:"missing,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

type jsonSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toJSON())
}

func (n *Node) toJSON() *jsonNode {
	jn := &jsonNode{
		Kind:     n.Kind.String(),
		Span:     &jsonSpan{Start: n.Span.Start.Offset, End: n.Span.End.Offset},
		Name:     n.Name,
		Negated:  n.Negated,
		Computed: n.Computed,
		Implicit: n.Implicit,
		Missing:  n.Missing,
	}

	if n.Token != nil {
		jn.Token = n.Token.Literal
	}

	switch n.Kind {
	case KindBinary, KindUnary, KindLogical:
		jn.Op = n.Op.String()
	}

	if len(n.Children) > 0 {
		jn.Children = make([]*jsonNode, len(n.Children))
		for i, child := range n.Children {
			jn.Children[i] = child.toJSON()
		}
	}

	return jn
}

type jsonSlot struct {
	Kind    string `json:"kind"`
	Current string `json:"current"`
	From    int    `json:"from"`
	To      int    `json:"to"`
	Node    string `json:"node"`
}

func (s Slot) MarshalJSON() ([]byte, error) {
	js := jsonSlot{
		Kind:    s.Kind.String(),
		Current: s.Current,
		From:    s.From,
		To:      s.To,
	}
	if s.Node != nil {
		js.Node = s.Node.Kind.String()
	}
	return json.Marshal(js)
}
