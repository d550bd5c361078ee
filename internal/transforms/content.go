package transforms

import (
	"bytes"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/starford/gazette/internal/parser"
)

// ContentParser rewrites rendered pages:
//   - images without a loading attribute are lazy loaded
//   - titled images inside <article> become <figure> with a <figcaption>
//   - h2..h4 headings inside <article> without an id get a slug id
//   - links to other hosts open in a new tab with rel="noopener noreferrer"
type ContentParser struct {
	siteHost string
}

// NewContentParser creates the transform. Links whose host equals the
// host of siteURL are treated as internal.
func NewContentParser(siteURL string) *ContentParser {
	var host string
	if u, err := url.Parse(siteURL); err == nil {
		host = u.Host
	}
	return &ContentParser{siteHost: host}
}

// Name implements Transform.
func (c *ContentParser) Name() string { return "contentParser" }

// Apply implements Transform.
func (c *ContentParser) Apply(_ string, content []byte) ([]byte, error) {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var imgs, figures, headings, links []*html.Node
	var walk func(n *html.Node, inArticle bool)
	walk = func(n *html.Node, inArticle bool) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Article:
				inArticle = true
			case atom.Img:
				imgs = append(imgs, n)
				if inArticle && getAttr(n, "title") != "" && !insideFigure(n) {
					figures = append(figures, n)
				}
			case atom.H2, atom.H3, atom.H4:
				if inArticle && getAttr(n, "id") == "" {
					headings = append(headings, n)
				}
			case atom.A:
				links = append(links, n)
			}
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch, inArticle)
		}
	}
	walk(doc, false)

	for _, n := range imgs {
		if getAttr(n, "loading") == "" {
			setAttr(n, "loading", "lazy")
		}
	}
	for _, n := range figures {
		wrapFigure(n)
	}
	used := existingIDs(doc)
	for _, n := range headings {
		setAttr(n, "id", uniqueID(parser.Slugify(textContent(n)), used))
	}
	for _, n := range links {
		if c.external(getAttr(n, "href")) {
			setAttr(n, "target", "_blank")
			setAttr(n, "rel", "noopener noreferrer")
		}
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *ContentParser) external(href string) bool {
	u, err := url.Parse(href)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	return c.siteHost == "" || !strings.EqualFold(u.Host, c.siteHost)
}

// wrapFigure replaces img, or a paragraph holding only img, with
// <figure>img<figcaption>title</figcaption></figure>.
func wrapFigure(img *html.Node) {
	target := img
	if p := img.Parent; p != nil && p.DataAtom == atom.P && onlyChild(p, img) {
		target = p
	}
	parent := target.Parent
	if parent == nil {
		return
	}

	figure := &html.Node{Type: html.ElementNode, Data: "figure", DataAtom: atom.Figure}
	caption := &html.Node{Type: html.ElementNode, Data: "figcaption", DataAtom: atom.Figcaption}
	caption.AppendChild(&html.Node{Type: html.TextNode, Data: getAttr(img, "title")})

	parent.InsertBefore(figure, target)
	parent.RemoveChild(target)
	if img.Parent != nil {
		img.Parent.RemoveChild(img)
	}
	figure.AppendChild(img)
	figure.AppendChild(caption)
}

func insideFigure(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.DataAtom == atom.Figure {
			return true
		}
	}
	return false
}

func onlyChild(parent, child *html.Node) bool {
	for ch := parent.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch == child {
			continue
		}
		if ch.Type == html.TextNode && strings.TrimSpace(ch.Data) == "" {
			continue
		}
		return false
	}
	return true
}

func existingIDs(doc *html.Node) map[string]bool {
	ids := make(map[string]bool)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if id := getAttr(n, "id"); id != "" {
				ids[id] = true
			}
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(doc)
	return ids
}

func uniqueID(base string, used map[string]bool) string {
	if base == "" {
		base = "section"
	}
	id := base
	for i := 2; used[id]; i++ {
		id = base + "-" + strconv.Itoa(i)
	}
	used[id] = true
	return id
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)
	return sb.String()
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
