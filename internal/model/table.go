package model

// TableRecord identifies one downloadable reference table.
type TableRecord struct {
	// ID is the table identifier used as the idTabela query parameter.
	ID string

	// Version is the table version used as the versao query parameter.
	Version string

	// Type is the table type code, part of the local file name.
	Type string

	// Description is the human readable table name, if the manifest has one.
	Description string
}

// Package is a named group of tables within a manifest.
//
// A package with no tables is valid and produces no downloads.
type Package struct {
	Code        string
	Description string
	Tables      []TableRecord
}

// TableListing pairs a table record with the code of the package it came from.
type TableListing struct {
	PackageCode string
	Record      TableRecord
}

// Listings flattens the package into listings, preserving table order.
func (p Package) Listings() []TableListing {
	if len(p.Tables) == 0 {
		return nil
	}
	listings := make([]TableListing, len(p.Tables))
	for i, t := range p.Tables {
		listings[i] = TableListing{PackageCode: p.Code, Record: t}
	}
	return listings
}
