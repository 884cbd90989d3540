package listing

import (
	"strings"

	"github.com/damacus/bucket-listing/internal/config"
	"github.com/damacus/bucket-listing/internal/models"
	"github.com/minio/minio-go/v7/pkg/s3utils"
)

// BuildBreadcrumbs links the bucket root and every segment of prefix.
func BuildBreadcrumbs(cfg config.BucketConfig, prefix string) []models.Breadcrumb {
	crumbs := []models.Breadcrumb{{
		Name: cfg.WebsiteBaseURL(),
		Href: "?prefix=",
	}}

	path := ""
	for _, segment := range strings.Split(prefix, Delimiter) {
		if segment == "" {
			continue
		}
		path += s3utils.EncodePath(segment) + Delimiter
		crumbs = append(crumbs, models.Breadcrumb{
			Name: segment,
			Href: "?prefix=" + path,
		})
	}
	return crumbs
}
