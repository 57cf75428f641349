package dto

import "encoding/xml"

// Envelope is the SOAP envelope returned by the table listing service.
//
// Element names are matched by local name only, so the soap: prefix and
// the service namespace do not have to be spelled out. Optional nodes are
// pointers so that a missing node can be told apart from an empty one.
type Envelope struct {
	XMLName xml.Name
	Body    *Body `xml:"Body"`
}

// Body holds either the operation response or a SOAP fault.
type Body struct {
	Response *ListingResponse `xml:"consultarVersoesTabelasExternasResponse"`
	Fault    *Fault           `xml:"Fault"`
}

// ListingResponse wraps the result of consultarVersoesTabelasExternas.
type ListingResponse struct {
	Result *ListingResult `xml:"consultarVersoesTabelasExternasResult"`
}

// ListingResult carries the download base URL and the embedded manifest.
type ListingResult struct {
	// DownloadURL is the base URL tables are fetched from.
	DownloadURL *string `xml:"urlDownloadArquivo"`

	// MetadataXML is a second XML document sent as escaped text.
	MetadataXML *string `xml:"metadadosXml"`
}

// Fault is a SOAP 1.1 fault.
type Fault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}
