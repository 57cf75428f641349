package sped

import (
	"bytes"
	_ "embed"
	"encoding/xml"
	"errors"
	"strings"

	"github.com/handiism/sped-tables/internal/model"
)

// VariantPlaceholder is replaced by the variant name in request templates.
const VariantPlaceholder = "{sped_name}"

//go:embed templates/base-post.xml
var defaultTemplate string

// DefaultTemplate returns the built-in SOAP request template.
func DefaultTemplate() string {
	return defaultTemplate
}

// ErrNoPlaceholder is returned when a request template lacks VariantPlaceholder.
var ErrNoPlaceholder = errors.New("request template has no " + VariantPlaceholder + " placeholder")

// RenderRequest substitutes the XML-escaped variant name into template.
func RenderRequest(template string, variant model.Variant) ([]byte, error) {
	if !strings.Contains(template, VariantPlaceholder) {
		return nil, ErrNoPlaceholder
	}

	var escaped bytes.Buffer
	if err := xml.EscapeText(&escaped, []byte(variant)); err != nil {
		return nil, err
	}

	return []byte(strings.ReplaceAll(template, VariantPlaceholder, escaped.String())), nil
}
