package shortcodes

import (
	"fmt"
	"html"
	"math"
	"net/url"
	"strings"
)

// Multipliers are the srcset scale factors applied to the requested size.
var Multipliers = []float64{0.25, 0.35, 0.5, 0.65, 0.75, 0.85, 1, 1.1, 1.25, 1.5, 1.75, 2}

// Cloudinary builds delivery URLs and <img> markup for one Cloudinary account.
type Cloudinary struct {
	Account string
}

// ImageOptions holds the optional attributes of CloudinaryImage. Attributes
// is inserted verbatim.
type ImageOptions struct {
	Sizes      string
	Loading    string
	Class      string
	Attributes string
}

// AssetPath returns the asset path of a source URL: its path without the
// leading slash, query or fragment.
func AssetPath(raw string) string {
	if u, err := url.Parse(raw); err == nil {
		return strings.TrimPrefix(u.Path, "/")
	}
	p := raw
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return strings.TrimPrefix(p, "/")
}

// URL returns the transformation URL for path at width x height.
func (c Cloudinary) URL(path string, width, height int) string {
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/f_auto,q_auto,c_fill,w_%d,h_%d/%s",
		c.Account, width, height, path)
}

// SrcSet returns one "<url> <w>w" candidate per multiplier.
func (c Cloudinary) SrcSet(path string, width, height int) []string {
	out := make([]string, 0, len(Multipliers))
	for _, m := range Multipliers {
		w := scale(m, width)
		h := scale(m, height)
		out = append(out, fmt.Sprintf("%s %dw", c.URL(path, w, h), w))
	}
	return out
}

// Image renders a responsive <img> with a 12-entry srcset.
func (c Cloudinary) Image(src, alt string, width, height int, opts ImageOptions) string {
	path := AssetPath(src)
	attrs := make([]string, 0, 9)
	attrs = appendAttr(attrs, "class", opts.Class)
	attrs = append(attrs,
		attr("src", c.URL(path, width, height)),
		attr("srcset", strings.Join(c.SrcSet(path, width, height), ", ")),
	)
	attrs = appendAttr(attrs, "alt", alt)
	attrs = appendAttr(attrs, "loading", opts.Loading)
	attrs = append(attrs, attr("width", fmt.Sprint(width)), attr("height", fmt.Sprint(height)))
	attrs = appendAttr(attrs, "sizes", opts.Sizes)
	if a := strings.TrimSpace(opts.Attributes); a != "" {
		attrs = append(attrs, a)
	}
	return "<img " + strings.Join(attrs, " ") + ">"
}

// Thumb renders a single fixed-size <img> without srcset.
func (c Cloudinary) Thumb(src, alt string, width, height int) string {
	attrs := []string{attr("src", c.URL(AssetPath(src), width, height))}
	attrs = appendAttr(attrs, "alt", alt)
	attrs = append(attrs, attr("width", fmt.Sprint(width)), attr("height", fmt.Sprint(height)))
	return "<img " + strings.Join(attrs, " ") + ">"
}

// scale multiplies n by m and rounds half away from zero.
func scale(m float64, n int) int {
	return int(math.Round(m * float64(n)))
}

func attr(name, value string) string {
	return name + `="` + html.EscapeString(value) + `"`
}

func appendAttr(attrs []string, name, value string) []string {
	if value == "" {
		return attrs
	}
	return append(attrs, attr(name, value))
}
