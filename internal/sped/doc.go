// Package sped talks to the public SPED external-table service and turns its
// listing responses into table records.
//
// The package handles two steps:
//
//  1. Fetching the listing for a variant with a SOAP request built from a
//     template (Fetcher, RenderRequest)
//  2. Parsing the response in two passes: the envelope first, then the
//     manifest document embedded in it as escaped text (Parse)
//
// # Fetching
//
//	fetcher := sped.NewFetcher(client, sped.DefaultServiceURL, sped.DefaultTemplate())
//	body, err := fetcher.Fetch(ctx, model.VariantFiscal)
//
// # Parsing
//
//	baseURL, listings, err := sped.Parse(body)
//	for listing := range listings {
//	    fmt.Println(listing.PackageCode, listing.Record.ID)
//	}
//
// # Response Format
//
// The envelope carries urlDownloadArquivo (the download base URL) and
// metadadosXml, a complete XML document stored as text. That document lists
// packages (pacote) and their tables (tabela). Packages may have no tables
// at all, one table, or many; all three shapes produce an ordered slice.
//
// Non-XML input is reported as *MalformedResponseError. XML with a missing
// node, or a SOAP fault, is reported as *UnexpectedStructureError.
package sped
