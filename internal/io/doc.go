// Package ioutils provides storage and text utilities.
//
// # Storage
//
// Store writes downloaded tables into a gocloud.dev blob bucket. A plain
// path opens a local directory; any registered bucket URL also works:
//
//	store, err := ioutils.OpenStore(ctx, "./tables")
//	defer store.Close()
//
//	err = store.WriteText(ctx, "SpedFiscal-T-P1-1-2.csv", text)
//
// Write failures are returned as *PersistenceError.
//
// # Decoding
//
// Tables are published in ISO-8859-1. DecodeLatin1 converts them to UTF-8
// before they are stored:
//
//	text, _ := ioutils.DecodeLatin1(body)
package ioutils
