package sped

import (
	"context"

	"github.com/handiism/sped-tables/internal/model"
)

// DefaultServiceURL is the listing endpoint of the public table service.
const DefaultServiceURL = "http://www.sped.fazenda.gov.br/spedtabelas/WsConsulta/WsConsulta.asmx"

// Poster sends an XML request body and returns the response body.
//
// *http.Client from the internal http package satisfies Poster.
type Poster interface {
	PostXML(ctx context.Context, url string, body []byte) ([]byte, error)
}

// Fetcher requests the table manifest of a variant.
//
// Example usage:
//
//	fetcher := NewFetcher(client, DefaultServiceURL, DefaultTemplate())
//	body, err := fetcher.Fetch(ctx, model.VariantFiscal)
//	if err != nil {
//	    return err
//	}
//	baseURL, listings, err := Parse(body)
type Fetcher struct {
	client     Poster
	serviceURL string
	template   string
}

// NewFetcher creates a Fetcher posting rendered templates to serviceURL.
func NewFetcher(client Poster, serviceURL, template string) *Fetcher {
	return &Fetcher{
		client:     client,
		serviceURL: serviceURL,
		template:   template,
	}
}

// Fetch sends one listing request for variant and returns the raw envelope.
// It does not retry; transport failures come back from the Poster as is.
func (f *Fetcher) Fetch(ctx context.Context, variant model.Variant) ([]byte, error) {
	body, err := RenderRequest(f.template, variant)
	if err != nil {
		return nil, err
	}
	return f.client.PostXML(ctx, f.serviceURL, body)
}
