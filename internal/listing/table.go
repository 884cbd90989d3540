package listing

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/damacus/bucket-listing/internal/config"
	"github.com/damacus/bucket-listing/internal/models"
	"github.com/damacus/bucket-listing/internal/utils"
	"github.com/minio/minio-go/v7/pkg/s3utils"
)

// Column widths of the listing table.
const (
	KeyColumnWidth          = 45
	LastModifiedColumnWidth = 30
	SizeColumnWidth         = 15
)

// ParentLabel is the label of the synthetic parent directory row.
const ParentLabel = "../"

var tableTemplate = template.Must(template.New("table").Funcs(template.FuncMap{
	"pad": utils.PadRight,
}).Parse(`{{ .Header }}
{{ .Separator }}
{{ range .Rows }}{{ pad .LastModified ` + fmt.Sprint(LastModifiedColumnWidth) + ` }}  {{ pad .Size ` + fmt.Sprint(SizeColumnWidth) + ` }}<a href="{{ .Href }}">{{ .Label }}</a>
{{ end }}`))

var (
	tableHeader = utils.PadRight("Last Modified", LastModifiedColumnWidth) + "  " +
		utils.PadRight("Size", SizeColumnWidth) + "Key "
	tableSeparator = strings.Repeat("-", KeyColumnWidth+LastModifiedColumnWidth+SizeColumnWidth+3)
)

// BuildRows converts a page into table rows: the parent directory row when
// below the root, then directories, then files.
func BuildRows(cfg config.BucketConfig, page *models.ListingPage, location *url.URL) []models.Row {
	var rows []models.Row
	prefix := page.Prefix

	if prefix != "" && prefix != NormalizePrefix(cfg.RootDir) {
		rows = append(rows, parentRow(cfg, prefix))
	}

	for _, d := range page.Directories {
		if isExcluded(cfg.ExcludeFiles, d.Key) {
			continue
		}
		label := strings.TrimPrefix(d.Key, prefix)
		href := s3utils.EncodePath(label)
		if cfg.IgnorePath {
			href = location.Path + "?prefix=" + s3utils.EncodePath(d.Key)
		}
		rows = append(rows, models.Row{
			Size:  "0",
			Href:  href,
			Label: label,
		})
	}

	for _, f := range SortFiles(page.Files, cfg.Sort) {
		if isExcluded(cfg.ExcludeFiles, f.Key) {
			continue
		}
		rows = append(rows, models.Row{
			LastModified: f.LastModified,
			Size:         utils.HumanSize(f.Size),
			Href:         cfg.WebsiteBaseURL() + "/" + s3utils.EncodePath(f.Key),
			Label:        strings.TrimPrefix(f.Key, prefix),
		})
	}

	return rows
}

// parentRow links one directory up from prefix.
func parentRow(cfg config.BucketConfig, prefix string) models.Row {
	href := "../"
	if cfg.IgnorePath {
		href = "?prefix=" + s3utils.EncodePath(ParentPrefix(prefix))
	}
	return models.Row{Href: href, Label: ParentLabel}
}

// ParentPrefix returns the prefix one level above prefix ("a/b/" -> "a/", "a/" -> "").
func ParentPrefix(prefix string) string {
	trimmed := strings.TrimSuffix(prefix, Delimiter)
	i := strings.LastIndex(trimmed, Delimiter)
	if i < 0 {
		return ""
	}
	return trimmed[:i+1]
}

// isExcluded reports whether key matches any of patterns. A malformed
// pattern never matches; Validate rejects them when the config is loaded.
func isExcluded(patterns []string, key string) bool {
	for _, pattern := range patterns {
		ok, err := doublestar.Match(pattern, key)
		if err != nil {
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

// RenderTable renders one page as an escaped, column-aligned text block.
func RenderTable(cfg config.BucketConfig, page *models.ListingPage, location *url.URL) (template.HTML, error) {
	var buf bytes.Buffer
	err := tableTemplate.Execute(&buf, map[string]interface{}{
		"Header":    tableHeader,
		"Separator": tableSeparator,
		"Rows":      BuildRows(cfg, page, location),
	})
	if err != nil {
		return "", fmt.Errorf("render table: %w", err)
	}
	// Every value above went through html/template escaping.
	return template.HTML(buf.String()), nil
}
