package model

import (
	"net/url"
	"strings"
)

// Query parameter names understood by the download endpoint.
const (
	ParamTableID = "idTabela"
	ParamVersion = "versao"
)

// FileNameFormat is the layout of a downloaded table's local file name.
//
// Available placeholders: {variant}, {type}, {package}, {id}, {version}.
const FileNameFormat = "{variant}-{type}-{package}-{id}-{version}.csv"

// Download describes one table to fetch and where to store it.
//
// Downloads are built by NewDownload and consumed once by the downloader.
type Download struct {
	// Variant is the SPED variant whose manifest listed this table.
	Variant Variant

	// PackageCode is the code of the package that holds the table.
	PackageCode string

	// Record is the table metadata from the manifest.
	Record TableRecord

	// URL is the base download URL taken from the manifest envelope.
	URL string

	// Query holds the idTabela and versao parameters.
	Query url.Values

	// FileName is the computed local file name.
	FileName string
}

// NewDownload builds the download for a table listing.
//
// The mapping is pure: the same inputs always give the same file name, and
// distinct (variant, type, package, id, version) tuples give distinct names.
//
// Example:
//
//	d := NewDownload("http://x/dl", TableListing{
//	    PackageCode: "P1",
//	    Record:      TableRecord{ID: "1", Version: "2", Type: "T"},
//	}, VariantFiscal)
//	// d.FileName = "SpedFiscal-T-P1-1-2.csv"
func NewDownload(baseURL string, listing TableListing, variant Variant) *Download {
	rec := listing.Record
	return &Download{
		Variant:     variant,
		PackageCode: listing.PackageCode,
		Record:      rec,
		URL:         baseURL,
		Query: url.Values{
			ParamTableID: []string{rec.ID},
			ParamVersion: []string{rec.Version},
		},
		FileName: formatFileName(variant, listing.PackageCode, rec),
	}
}

// RequestURL returns URL with the query parameters appended.
func (d *Download) RequestURL() string {
	sep := "?"
	if strings.Contains(d.URL, "?") {
		sep = "&"
	}
	return d.URL + sep + d.Query.Encode()
}

func formatFileName(variant Variant, packageCode string, rec TableRecord) string {
	r := strings.NewReplacer(
		"{variant}", string(variant),
		"{type}", rec.Type,
		"{package}", packageCode,
		"{id}", rec.ID,
		"{version}", rec.Version,
	)
	return r.Replace(FileNameFormat)
}
