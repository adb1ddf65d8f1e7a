// Package connectors holds the sources speeches arrive from. The
// filesystem connector watches a directory of speech files so new
// speeches can be ingested as they land.
package connectors
