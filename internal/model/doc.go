// Package model defines the core data structures used throughout
// the sped-tables application.
//
// # Variant
//
// Variant names one SPED report type. Each variant has its own catalog of
// external reference tables on the remote service:
//
//	for _, v := range model.DefaultVariants() {
//	    fmt.Println(v) // SpedFiscal, SpedPisCofins, ...
//	}
//
// # Package and TableRecord
//
// A manifest lists packages, each holding zero or more table records:
//
//	rec := model.TableRecord{ID: "1", Version: "2", Type: "T"}
//	listing := model.TableListing{PackageCode: "P1", Record: rec}
//
// # Download
//
// Download describes one table to fetch. The local file name is computed
// when the download is built:
//
//	d := model.NewDownload("http://x/dl", listing, model.VariantFiscal)
//	fmt.Println(d.FileName) // SpedFiscal-T-P1-1-2.csv
package model
