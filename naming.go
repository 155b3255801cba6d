package doctoolkit

import (
	"path/filepath"
	"strings"

	"github.com/alnah/go-doctoolkit/internal/fileutil"
)

// Download name suffixes, appended to the cleaned base name of the first input.
const (
	SuffixToPDF        = "-topdf.pdf"
	SuffixImagesToPDF  = "-imagestopdf.pdf"
	SuffixToImages     = "-toimages.zip"
	SuffixMerged       = "-merged.pdf"
	SuffixSplit        = "-split.zip"
	SuffixCompressed   = "-compressed.pdf"
	SuffixPagesRemoved = "-pages-removed.pdf"
	SuffixRotated      = "-rotated.pdf"
)

// fallbackBaseName replaces names that clean down to nothing.
const fallbackBaseName = "document"

// SuffixConverted returns the suffix for an image converted to format.
func SuffixConverted(format ImageFormat) string {
	return "-converted." + strings.ToLower(string(format))
}

// CleanBaseName derives a response file stem from a client-supplied name:
// directories and extension removed, lower case, trimmed, spaces as hyphens.
func CleanBaseName(name string) string {
	base := fileutil.BaseName(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ToLower(strings.TrimSpace(base))
	base = strings.ReplaceAll(base, " ", "-")
	if base == "" {
		return fallbackBaseName
	}
	return base
}

// DownloadName builds the Content-Disposition filename for a response.
func DownloadName(original, suffix string) string {
	return CleanBaseName(original) + suffix
}
