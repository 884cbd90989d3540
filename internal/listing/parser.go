package listing

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/damacus/bucket-listing/internal/models"
)

// listBucketResult is the ListObjects (v1) response body.
type listBucketResult struct {
	XMLName        xml.Name       `xml:"ListBucketResult"`
	Name           string         `xml:"Name"`
	Prefix         string         `xml:"Prefix"`
	Marker         string         `xml:"Marker"`
	NextMarker     string         `xml:"NextMarker"`
	Delimiter      string         `xml:"Delimiter"`
	IsTruncated    bool           `xml:"IsTruncated"`
	Contents       []content      `xml:"Contents"`
	CommonPrefixes []commonPrefix `xml:"CommonPrefixes"`
}

type content struct {
	Key          string `xml:"Key"`
	LastModified string `xml:"LastModified"`
	Size         int64  `xml:"Size"`
}

type commonPrefix struct {
	Prefix string `xml:"Prefix"`
}

// ParseListing decodes one listing response into a ListingPage.
//
// Providers only return NextMarker when a delimiter is sent, and some omit
// it anyway. A truncated page without one continues after its greatest key;
// a truncated page without any keys is treated as the last page.
func ParseListing(r io.Reader) (*models.ListingPage, error) {
	var result listBucketResult
	if err := xml.NewDecoder(r).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}

	page := &models.ListingPage{
		Prefix:      result.Prefix,
		IsTruncated: result.IsTruncated,
	}
	for _, c := range result.Contents {
		page.Files = append(page.Files, models.FileEntry{
			Key:          c.Key,
			LastModified: c.LastModified,
			Size:         c.Size,
		})
	}
	for _, p := range result.CommonPrefixes {
		page.Directories = append(page.Directories, models.DirectoryEntry{Key: p.Prefix})
	}

	if page.IsTruncated {
		page.NextMarker = result.NextMarker
		if page.NextMarker == "" {
			page.NextMarker = lastKey(page)
		}
		if page.NextMarker == "" {
			page.IsTruncated = false
		}
	}

	return page, nil
}

func lastKey(page *models.ListingPage) string {
	var last string
	for _, f := range page.Files {
		last = max(last, f.Key)
	}
	for _, d := range page.Directories {
		last = max(last, d.Key)
	}
	return last
}
