package models

import (
	"errors"
	"slices"
	"strings"
)

// DefaultExtensions are scanned when no extension list is configured.
var DefaultExtensions = Extensions{"js", "jsx", "ts", "tsx", "css"}

var ErrNoExtensions = errors.New("no valid extensions provided")

// Extensions is a normalized list of file extensions: lowercase, no leading dot.
type Extensions []string

// ParseExtensions reads a comma-separated list such as "js, .TSX". Blank
// entries are dropped; an empty result is an error.
func ParseExtensions(list string) (Extensions, error) {
	var exts Extensions
	for _, part := range strings.Split(list, ",") {
		ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(part), "."))
		if ext == "" || slices.Contains(exts, ext) {
			continue
		}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		return nil, ErrNoExtensions
	}
	return exts, nil
}

// Contains reports whether ext (any case, optional leading dot) is listed.
func (e Extensions) Contains(ext string) bool {
	return slices.Contains(e, strings.ToLower(strings.TrimPrefix(ext, ".")))
}

func (e Extensions) String() string {
	return strings.Join(e, ",")
}

// ScanOptions controls which files a scan visits and how results are reported.
type ScanOptions struct {
	AllowedExtensions Extensions
	Include           []string
	Exclude           []string

	// MaxFileSize skips files larger than this many bytes; 0 disables the limit.
	MaxFileSize int64

	// TerseOutput omits files that produced no signatures.
	TerseOutput bool

	// Workers bounds concurrent extraction; values below 1 mean one worker.
	Workers int
}

// DefaultScanOptions returns options equivalent to running without flags.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		AllowedExtensions: slices.Clone(DefaultExtensions),
		Workers:           1,
	}
}
