// Package html provides a Normaliser implementation for HTML documents.
// Pages are converted to Markdown so headings and paragraphs survive
// as sentence boundaries for the chunker.
package html
