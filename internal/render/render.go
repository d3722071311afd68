// Package render turns feed-provided HTML fragments into plain text suitable
// for storage and search.
package render

import (
	"strings"

	"golang.org/x/net/html"
)

// blockElements get a line break before and after their content so the text
// keeps some of the document structure.
var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "blockquote": true, "pre": true, "tr": true, "br": true,
}

// skippedElements contribute no text at all.
var skippedElements = map[string]bool{
	"script": true, "style": true, "head": true, "noscript": true,
	"iframe": true, "svg": true,
}

// HTMLToText renders an HTML fragment as plain text. The node tree is walked
// with an explicit stack, so arbitrarily nested input cannot exhaust the
// call stack. Parse failures fall back to returning the input with tags
// crudely stripped.
func HTMLToText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil || root == nil {
		return stripTags(fragment)
	}

	var b strings.Builder
	type frame struct {
		node    *html.Node
		closing bool // revisit after children, to close a block
	}
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := f.node
		if f.closing {
			b.WriteString("\n")
			continue
		}

		switch n.Type {
		case html.TextNode:
			if t := collapseSpace(n.Data); t != "" {
				if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
					b.WriteString(" ")
				}
				b.WriteString(t)
			}
			continue
		case html.ElementNode:
			name := strings.ToLower(n.Data)
			if skippedElements[name] {
				continue
			}
			if blockElements[name] {
				if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
					b.WriteString("\n")
				}
				if name == "br" {
					continue
				}
				stack = append(stack, frame{node: n, closing: true})
			}
		}

		// Push children in reverse so they pop in document order.
		var children []*html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			children = append(children, c)
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: children[i]})
		}
	}

	return tidy(b.String())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// tidy trims the output and squeezes runs of blank lines down to one.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := false
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			blank = true
			continue
		}
		if blank && len(out) > 0 {
			out = append(out, "")
		}
		blank = false
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return collapseSpace(b.String())
}
