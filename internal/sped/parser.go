package sped

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"iter"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/handiism/sped-tables/internal/model"
	"github.com/handiism/sped-tables/internal/sped/dto"
)

// Envelope is the outer listing response after the first parse pass.
type Envelope struct {
	// BaseURL is the URL tables are downloaded from.
	BaseURL string

	// ManifestXML is the embedded manifest document, already unescaped.
	ManifestXML string
}

// Parse runs both parse passes over a listing response.
//
// It returns the base download URL and a sequence of the manifest's tables
// in document order. The whole response is parsed before Parse returns, so
// an error means no listing was produced.
//
// Example:
//
//	baseURL, listings, err := Parse(body)
//	if err != nil {
//	    return err
//	}
//	for listing := range listings {
//	    d := model.NewDownload(baseURL, listing, variant)
//	    ...
//	}
func Parse(envelope []byte) (string, iter.Seq[model.TableListing], error) {
	env, err := ParseEnvelope(envelope)
	if err != nil {
		return "", nil, err
	}

	packages, err := ParseManifest(env.ManifestXML)
	if err != nil {
		return "", nil, err
	}

	return env.BaseURL, Listings(packages), nil
}

// ParseEnvelope parses the SOAP envelope and extracts the base download URL
// and the embedded manifest text.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env dto.Envelope
	if err := decode(bytes.NewReader(data), &env, charsetReader); err != nil {
		return nil, &MalformedResponseError{Reason: "envelope is not valid XML", Err: err}
	}

	path := []string{"Envelope"}
	if env.XMLName.Local != "Envelope" {
		return nil, &UnexpectedStructureError{Path: path, Detail: "root element is " + env.XMLName.Local}
	}

	path = append(path, "Body")
	if env.Body == nil {
		return nil, &UnexpectedStructureError{Path: path}
	}
	if f := env.Body.Fault; f != nil {
		return nil, &UnexpectedStructureError{
			Path:   append(path, "Fault"),
			Detail: strings.TrimSpace(f.Code + " " + f.String),
		}
	}

	path = append(path, "consultarVersoesTabelasExternasResponse")
	if env.Body.Response == nil {
		return nil, &UnexpectedStructureError{Path: path}
	}

	path = append(path, "consultarVersoesTabelasExternasResult")
	result := env.Body.Response.Result
	if result == nil {
		return nil, &UnexpectedStructureError{Path: path}
	}

	if result.DownloadURL == nil {
		return nil, &UnexpectedStructureError{Path: append(path, "urlDownloadArquivo")}
	}
	if result.MetadataXML == nil || strings.TrimSpace(*result.MetadataXML) == "" {
		return nil, &MalformedResponseError{Reason: "metadadosXml is missing"}
	}

	return &Envelope{
		BaseURL:     strings.TrimSpace(*result.DownloadURL),
		ManifestXML: *result.MetadataXML,
	}, nil
}

// ParseManifest parses the embedded manifest into packages, in document order.
func ParseManifest(manifest string) ([]model.Package, error) {
	var sys dto.System
	if err := decode(strings.NewReader(manifest), &sys, passthroughCharset); err != nil {
		return nil, &MalformedResponseError{Reason: "metadadosXml is not valid XML", Err: err}
	}

	path := []string{"sistema"}
	if sys.XMLName.Local != "sistema" {
		return nil, &UnexpectedStructureError{Path: path, Detail: "root element is " + sys.XMLName.Local}
	}

	path = append(path, "tabelas")
	if sys.Tables == nil {
		return nil, &UnexpectedStructureError{Path: path}
	}

	path = append(path, "pacotes")
	if sys.Tables.Packages == nil {
		return nil, &UnexpectedStructureError{Path: path}
	}

	items := sys.Tables.Packages.Items
	packages := make([]model.Package, len(items))
	for i, p := range items {
		tables, err := packageTables(p.Tables)
		if err != nil {
			return nil, err
		}
		packages[i] = model.Package{
			Code:        p.Code,
			Description: p.Description,
			Tables:      tables,
		}
	}
	return packages, nil
}

// Listings yields every table of packages paired with its package code.
// Packages without tables yield nothing.
func Listings(packages []model.Package) iter.Seq[model.TableListing] {
	return func(yield func(model.TableListing) bool) {
		for _, pkg := range packages {
			for _, listing := range pkg.Listings() {
				if !yield(listing) {
					return
				}
			}
		}
	}
}

// packageTables normalizes a package's <tabelas> node into an ordered slice.
// An absent node, an empty node, one <tabela> and many <tabela> children
// all end up here; order and count follow the document.
//
// Every <tabela> must carry id, versao and tipo: they make up the file name.
func packageTables(raw *dto.PackageTables) ([]model.TableRecord, error) {
	if raw == nil || len(raw.Items) == 0 {
		return nil, nil
	}

	tables := make([]model.TableRecord, len(raw.Items))
	for i, t := range raw.Items {
		if attr := missingAttr(t); attr != "" {
			return nil, &UnexpectedStructureError{
				Path:   []string{"sistema", "tabelas", "pacotes", "pacote", "tabelas", "tabela", "@" + attr},
				Detail: fmt.Sprintf("table %d has no %s attribute", i+1, attr),
			}
		}
		tables[i] = model.TableRecord{
			ID:          t.ID,
			Version:     t.Version,
			Type:        t.Type,
			Description: t.Description,
		}
	}
	return tables, nil
}

func missingAttr(t dto.Table) string {
	switch {
	case strings.TrimSpace(t.ID) == "":
		return "id"
	case strings.TrimSpace(t.Version) == "":
		return "versao"
	case strings.TrimSpace(t.Type) == "":
		return "tipo"
	}
	return ""
}

func decode(r io.Reader, v any, cs func(string, io.Reader) (io.Reader, error)) error {
	d := xml.NewDecoder(r)
	d.CharsetReader = cs
	if err := d.Decode(v); err != nil {
		if err == io.EOF {
			return fmt.Errorf("empty document")
		}
		return err
	}
	return nil
}

// charsetReader decodes envelopes declared in a non UTF-8 charset.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, err
	}
	return enc.NewDecoder().Reader(input), nil
}

// passthroughCharset ignores the declared charset of the embedded manifest.
// Its text was already decoded along with the envelope.
func passthroughCharset(_ string, input io.Reader) (io.Reader, error) {
	return input, nil
}
