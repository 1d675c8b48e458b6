// Package normalisers turns downloaded file content into plain text.
//
// Each subpackage implements driven.Normaliser for one family of MIME types.
// Registry selects the highest priority normaliser for a file and is the
// driven.TextExtractor the indexer uses.
package normalisers
