// Package models contains data structures used across handlers
package models

import "html/template"

// FileEntry is an object returned by the listing endpoint
type FileEntry struct {
	Key          string
	LastModified string
	Size         int64
}

// DirectoryEntry is a common prefix returned by the listing endpoint.
// Key always ends with the delimiter.
type DirectoryEntry struct {
	Key string
}

// ListingPage is the parsed result of a single listing request.
// NextMarker is non-empty exactly when IsTruncated is set.
type ListingPage struct {
	Files       []FileEntry
	Directories []DirectoryEntry
	Prefix      string
	IsTruncated bool
	NextMarker  string
}

// Row is one rendered line of the listing table
type Row struct {
	LastModified string
	Size         string
	Href         string
	Label        string
}

// Breadcrumb for navigation
type Breadcrumb struct {
	Name string
	Href string
}

// Listing is the accumulated output of a full pagination run
type Listing struct {
	Prefix      string
	Navigation  []Breadcrumb
	Table       template.HTML
	Summary     string
	Pages       int
	Files       int
	Directories int
}
