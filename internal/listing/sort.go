package listing

import (
	"cmp"
	"slices"
	"strings"

	"github.com/damacus/bucket-listing/internal/models"
)

// Sort orders accepted by SortFiles.
const (
	SortDefault    = "DEFAULT"
	SortOldToNew   = "OLD2NEW"
	SortNewToOld   = "NEW2OLD"
	SortAToZ       = "A2Z"
	SortZToA       = "Z2A"
	SortBigToSmall = "BIG2SMALL"
	SortSmallToBig = "SMALL2BIG"
)

// SortFiles returns files in the requested order. DEFAULT and unknown
// orders keep the endpoint's order. The input slice is not modified.
func SortFiles(files []models.FileEntry, order string) []models.FileEntry {
	var compare func(a, b models.FileEntry) int
	switch order {
	case SortOldToNew:
		compare = func(a, b models.FileEntry) int { return strings.Compare(a.LastModified, b.LastModified) }
	case SortNewToOld:
		compare = func(a, b models.FileEntry) int { return strings.Compare(b.LastModified, a.LastModified) }
	case SortAToZ:
		compare = func(a, b models.FileEntry) int { return strings.Compare(a.Key, b.Key) }
	case SortZToA:
		compare = func(a, b models.FileEntry) int { return strings.Compare(b.Key, a.Key) }
	case SortBigToSmall:
		compare = func(a, b models.FileEntry) int { return cmp.Compare(b.Size, a.Size) }
	case SortSmallToBig:
		compare = func(a, b models.FileEntry) int { return cmp.Compare(a.Size, b.Size) }
	default:
		return files
	}

	sorted := slices.Clone(files)
	slices.SortStableFunc(sorted, compare)
	return sorted
}
