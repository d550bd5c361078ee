// Package transforms post-processes rendered output files.
package transforms

import (
	"fmt"
	"strings"
)

// Transform rewrites the content of one output file.
type Transform interface {
	Name() string
	Apply(outputPath string, content []byte) ([]byte, error)
}

// Chain applies transforms in order to .html outputs and leaves every
// other file untouched.
type Chain []Transform

// Apply runs every transform over content.
func (c Chain) Apply(outputPath string, content []byte) ([]byte, error) {
	if !strings.HasSuffix(outputPath, ".html") {
		return content, nil
	}
	var err error
	for _, t := range c {
		content, err = t.Apply(outputPath, content)
		if err != nil {
			return nil, fmt.Errorf("transforms: %s: %s: %w", t.Name(), outputPath, err)
		}
	}
	return content, nil
}

// Names lists the transforms in application order.
func (c Chain) Names() []string {
	out := make([]string, 0, len(c))
	for _, t := range c {
		out = append(out, t.Name())
	}
	return out
}

// ForEnv returns the transform chain for a build: the content parser
// always, and the HTML minifier only in production.
func ForEnv(production bool, siteURL string) Chain {
	chain := Chain{NewContentParser(siteURL)}
	if production {
		chain = append(chain, NewHTMLMin())
	}
	return chain
}
