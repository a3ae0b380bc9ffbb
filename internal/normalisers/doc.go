// Package normalisers turns non-plain-text inputs into text.
//
// pdf extracts per-page text for the splitter selector and html converts
// scraped pages into Markdown for the scraper.
package normalisers
