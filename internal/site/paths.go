package site

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	pkgconfig "github.com/starford/gazette/pkg/config"
)

// Paths is the directory layout read from paths.json. Src and Output are
// relative to the project root; Includes is relative to Src.
type Paths struct {
	Src      string `json:"src"`
	Includes string `json:"includes"`
	Output   string `json:"output"`
}

// Validate validates the directory layout.
func (p *Paths) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Src, validation.Required),
		validation.Field(&p.Includes, validation.Required),
		validation.Field(&p.Output, validation.Required),
	)
}

// DefaultPaths mirrors the stock layout: src/, src/_includes and dist/.
func DefaultPaths() Paths {
	return Paths{Src: "src", Includes: "_includes", Output: "dist"}
}

// Metadata holds the site-wide settings read from the data directory's
// config.json.
type Metadata struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	URL            string `json:"url"`
	CloudinaryName string `json:"cloudinaryName"`
}

// Layout resolves Paths against a project root.
type Layout struct {
	Root     string
	Src      string
	Includes string
	Layouts  string
	Data     string
	Output   string
}

// Resolve returns the absolute directories of p under root.
func (p Paths) Resolve(root string) Layout {
	src := filepath.Join(root, p.Src)
	includes := filepath.Join(src, p.Includes)
	return Layout{
		Root:     root,
		Src:      src,
		Includes: includes,
		Layouts:  filepath.Join(includes, "layouts"),
		Data:     filepath.Join(src, "_data"),
		Output:   filepath.Join(root, p.Output),
	}
}

// LoadPaths reads <root>/<dataDir>/paths.json. A missing file yields
// DefaultPaths.
func LoadPaths(root, dataDir string) (Paths, error) {
	p := DefaultPaths()
	file := filepath.Join(root, dataDir, "paths.json")
	if _, err := os.Stat(file); os.IsNotExist(err) {
		return p, nil
	}
	if err := pkgconfig.LoadJSON(file, &p); err != nil {
		return Paths{}, err
	}
	return p, nil
}

// LoadMetadata reads config.json from the data directory. A missing file
// yields empty metadata.
func LoadMetadata(dataDir string) (Metadata, error) {
	var m Metadata
	file := filepath.Join(dataDir, "config.json")
	if _, err := os.Stat(file); os.IsNotExist(err) {
		return m, nil
	}
	if err := pkgconfig.LoadJSON(file, &m); err != nil {
		return Metadata{}, err
	}
	return m, nil
}

// LoadGlobalData reads every *.json file in dataDir, keyed by file stem.
func LoadGlobalData(dataDir string) (map[string]any, error) {
	out := make(map[string]any)
	entries, err := os.ReadDir(dataDir)
	if os.IsNotExist(err) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("site: read data dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		var v any
		if err := pkgconfig.LoadJSON(filepath.Join(dataDir, e.Name()), &v); err != nil {
			return nil, fmt.Errorf("site: global data: %w", err)
		}
		out[strings.TrimSuffix(e.Name(), ".json")] = v
	}
	return out, nil
}
