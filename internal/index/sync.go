package index

import (
	"log/slog"
	"time"

	"github.com/starford/gazette/internal/checksum"
	"github.com/starford/gazette/internal/parser"
	"github.com/starford/gazette/internal/storage"
)

// SyncStats summarises one Sync pass.
type SyncStats struct {
	Indexed int
	Removed int
	Skipped int
	Failed  int
}

// Sync walks the content tree and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) (SyncStats, error) {
	var stats SyncStats

	metas, err := store.List("")
	if err != nil {
		return stats, err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return stats, err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			stats.Skipped++
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			stats.Failed++
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, data, m.UpdatedAt); err != nil {
			stats.Failed++
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			stats.Indexed++
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteItem(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				stats.Removed++
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return stats, nil
}

// indexFile parses data and upserts it into the DB.
func indexFile(db *DB, path string, data []byte, modTime time.Time) error {
	res, err := parser.Parse(path, data)
	if err != nil {
		return err
	}

	fileSlug := parser.FileSlug(path)
	slug := fileSlug
	if s, ok := res.Frontmatter["slug"].(string); ok && s != "" {
		slug = s
	}

	row := ItemRow{
		Path:      path,
		FileSlug:  fileSlug,
		URL:       parser.URL(path, res.Frontmatter),
		Title:     res.Title,
		Slug:      slug,
		Date:      res.Date,
		Data:      res.Frontmatter,
		Tags:      res.Tags,
		Body:      res.Body,
		Checksum:  checksum.Sum(data),
		UpdatedAt: modTime,
	}
	return db.UpsertItem(row)
}
