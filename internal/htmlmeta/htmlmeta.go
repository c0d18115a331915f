// Package htmlmeta injects article:modified_time meta tags into rendered HTML
// pages, so crawlers and social cards pick up the resolved timestamp.
package htmlmeta

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Inject parses the HTML document from r, appends a
// <meta property="article:modified_time"> tag to its head element, and writes
// the result to w. Documents without a head element pass through unchanged.
func Inject(r io.Reader, w io.Writer, modifiedTime string) error {
	doc, err := html.Parse(r)
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}

	head := findHead(doc)
	if head != nil {
		removeModifiedTime(head)
		head.AppendChild(&html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Meta,
			Data:     "meta",
			Attr: []html.Attribute{
				{Key: "property", Val: "article:modified_time"},
				{Key: "content", Val: modifiedTime},
			},
		})
	}

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// InjectFile rewrites an HTML file in place with the meta tag added.
func InjectFile(path, modifiedTime string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read html file: %w", err)
	}

	var buf bytes.Buffer
	if err := Inject(bytes.NewReader(raw), &buf, modifiedTime); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat html file: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write html file: %w", err)
	}
	return nil
}

func findHead(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Head {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if head := findHead(c); head != nil {
			return head
		}
	}
	return nil
}

// removeModifiedTime drops existing article:modified_time tags so repeated
// injections do not accumulate.
func removeModifiedTime(head *html.Node) {
	for c := head.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && c.DataAtom == atom.Meta && hasProperty(c, "article:modified_time") {
			head.RemoveChild(c)
		}
		c = next
	}
}

func hasProperty(n *html.Node, property string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "property" && attr.Val == property {
			return true
		}
	}
	return false
}
