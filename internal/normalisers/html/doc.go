// Package html extracts links and readable text from HTML pages.
//
// Content uses go-readability to isolate the main article and falls back to
// tag stripping when no article is found. Links walks the parsed document
// with golang.org/x/net/html.
package html
