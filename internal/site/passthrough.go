package site

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/starford/gazette/internal/checksum"
)

// Copy maps a source directory onto a directory under the output root.
type Copy struct {
	From string
	To   string
}

// Copies returns the passthrough mappings of a layout: assets/ to assets/,
// static/ to the output root and <src>/admin to admin/.
func Copies(l Layout) []Copy {
	return []Copy{
		{From: filepath.Join(l.Root, "assets"), To: "assets"},
		{From: filepath.Join(l.Root, "static"), To: ""},
		{From: filepath.Join(l.Src, "admin"), To: "admin"},
	}
}

// Passthrough copies every file of every mapping verbatim. Files whose
// destination already has the same checksum are left alone. Missing
// source directories are skipped.
func Passthrough(l Layout) (copied, unchanged int, err error) {
	for _, c := range Copies(l) {
		info, statErr := os.Stat(c.From)
		if statErr != nil || !info.IsDir() {
			continue
		}
		walkErr := doublestar.GlobWalk(os.DirFS(c.From), "**", func(rel string, d fs.DirEntry) error {
			if d.IsDir() {
				return nil
			}
			src := filepath.Join(c.From, filepath.FromSlash(rel))
			dst := filepath.Join(l.Output, c.To, filepath.FromSlash(rel))
			if same(src, dst) {
				unchanged++
				return nil
			}
			if err := copyFile(src, dst); err != nil {
				return err
			}
			copied++
			return nil
		})
		if walkErr != nil {
			return copied, unchanged, fmt.Errorf("site: passthrough %s: %w", c.From, walkErr)
		}
	}
	return copied, unchanged, nil
}

func same(src, dst string) bool {
	a, err := checksum.File(src)
	if err != nil {
		return false
	}
	b, err := checksum.File(dst)
	return err == nil && a == b
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
