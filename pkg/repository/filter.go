package repository

import (
	"path/filepath"
	"strings"
)

// DefaultFilter implements the default file-filter policy: reject entries
// whose basename starts with "." (which excludes the repository's own
// marker directory) and files whose suffix is ".tsv". It satisfies
// cache.FilterFunc.
func DefaultFilter(path string, isDir bool) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if !isDir && strings.EqualFold(filepath.Ext(base), ".tsv") {
		return false
	}
	return true
}
