// Package normalisers holds the text extractors that turn raw file bytes
// into a domain.Document. PDF is the only format handled; see package pdf.
package normalisers
