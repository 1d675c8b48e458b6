// Package html provides a Normaliser for HTML documents.
// Scripts, styles and the document head are dropped, remaining markup is
// stripped with a bluemonday strict policy and entities are decoded.
package html
