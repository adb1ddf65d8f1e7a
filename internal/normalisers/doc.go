// Package normalisers turns raw files into documents. Each normaliser
// handles a set of MIME types; the Registry picks the one with the
// highest priority.
package normalisers
