// Package normalisers cleans knowledge base text before it is chunked.
package normalisers
