package telegraph

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Node is either a string or a NodeElement.
type Node any

type NodeElement struct {
	Tag      string            `json:"tag"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Children []Node            `json:"children,omitempty"`
}

var allowedTags = map[string]bool{
	"a": true, "aside": true, "b": true, "blockquote": true, "br": true,
	"code": true, "em": true, "figcaption": true, "figure": true, "h3": true,
	"h4": true, "hr": true, "i": true, "img": true, "li": true, "ol": true,
	"p": true, "pre": true, "s": true, "strong": true, "u": true, "ul": true,
}

var renamedTags = map[string]string{
	"h1": "h3", "h2": "h3", "h5": "h4", "h6": "h4",
}

var droppedTags = map[string]bool{
	"script": true, "style": true, "head": true, "template": true,
}

// HTMLToNodes converts an HTML fragment into the node tree accepted by
// createPage. Unsupported tags are unwrapped; only href and src survive.
func HTMLToNodes(s string) ([]Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	var out []Node
	for _, n := range nodes {
		out = append(out, convert(n)...)
	}
	return out, nil
}

func convert(n *html.Node) []Node {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" && strings.Contains(n.Data, "\n") {
			return nil
		}
		return []Node{n.Data}
	case html.ElementNode:
	default:
		return nil
	}

	tag := n.Data
	if droppedTags[tag] {
		return nil
	}
	if renamed, ok := renamedTags[tag]; ok {
		tag = renamed
	}

	var children []Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, convert(c)...)
	}
	if !allowedTags[tag] {
		return children
	}

	el := NodeElement{Tag: tag, Children: children}
	for _, a := range n.Attr {
		if a.Key == "href" || a.Key == "src" {
			if el.Attrs == nil {
				el.Attrs = map[string]string{}
			}
			el.Attrs[a.Key] = a.Val
		}
	}
	return []Node{el}
}

func MarkdownToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
