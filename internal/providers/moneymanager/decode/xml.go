package decode

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

type xmlNode struct {
	name     string
	text     strings.Builder
	children map[string]any
}

func (n *xmlNode) add(name string, v any) {
	if n.children == nil {
		n.children = make(map[string]any)
	}
	existing, ok := n.children[name]
	if !ok {
		n.children[name] = v
		return
	}
	if list, isList := existing.([]any); isList {
		n.children[name] = append(list, v)
		return
	}
	n.children[name] = []any{existing, v}
}

// value collapses a closed element: leaf elements become their trimmed
// text, elements with children become a map keyed by child name.
func (n *xmlNode) value() any {
	if n.children == nil {
		return strings.TrimSpace(n.text.String())
	}
	return n.children
}

// XML decodes an XML body into nested maps.
//
// Repeated sibling elements collapse into a []any, attributes are dropped
// and leaf text is trimmed. Values stay strings. An element that only
// carried attributes therefore decodes to "" rather than a map, which
// callers must treat the same as an absent element. Empty input yields an
// empty object.
func XML(text string) (any, error) {
	if strings.TrimSpace(text) == "" {
		return map[string]any{}, nil
	}

	dec := xml.NewDecoder(strings.NewReader(text))
	dec.CharsetReader = charset.NewReaderLabel

	var (
		stack []*xmlNode
		root  map[string]any
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, invalid("xml", text, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				return nil, invalid("xml", text, errors.New("multiple root elements"))
			}
			stack = append(stack, &xmlNode{name: t.Name.Local})
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		case xml.EndElement:
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				root = map[string]any{node.name: node.value()}
			} else {
				stack[len(stack)-1].add(node.name, node.value())
			}
		}
	}

	if root == nil {
		return nil, invalid("xml", text, errors.New("no root element"))
	}
	return root, nil
}
