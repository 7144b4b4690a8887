package skills

import (
	"context"
	"path/filepath"
)

// CleanupReport summarizes a Tidy run.
type CleanupReport struct {
	// DanglingLinks is the number of links whose target was gone.
	DanglingLinks int
	// Removed is how many of them were deleted.
	Removed int
}

// Tidy deletes skill links under dir whose target no longer exists. A link
// that cannot be removed is logged and left in place.
func (l *Ledger) Tidy(ctx context.Context, dir string) (*CleanupReport, error) {
	dangling, err := l.DanglingLinks(dir)
	if err != nil {
		return nil, err
	}

	report := &CleanupReport{DanglingLinks: len(dangling)}
	for _, link := range dangling {
		if err := ctx.Err(); err != nil {
			return report, &LedgerError{
				Type:    ErrorTypeFilesystem,
				Message: "operation cancelled",
				Err:     err,
			}
		}

		if err := l.fs.Remove(filepath.Join(dir, link.Name)); err != nil {
			l.logger.Error("Failed to remove dangling skill link "+link.Name, err)
			continue
		}
		l.logger.OK("Removed dangling skill link: "+link.Name, "target", link.Target)
		report.Removed++
	}
	return report, nil
}
