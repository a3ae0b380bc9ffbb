package html

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-shiori/go-readability"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.PageParser = (*Parser)(nil)

// Parser handles HTML pages.
type Parser struct{}

// New creates a new HTML parser.
func New() *Parser {
	return &Parser{}
}

// Links returns the http(s) links of page that start with prefix.
// Relative hrefs resolve against pageURL. Fragments are removed.
func (p *Parser) Links(page, pageURL, prefix string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: page url %q: %v", domain.ErrInvalidInput, pageURL, err)
	}
	doc, err := xhtml.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", domain.ErrUndecodable, err)
	}

	var links []string
	seen := make(map[string]bool)
	for n := range doc.Descendants() {
		if n.Type != xhtml.ElementNode || n.DataAtom != atom.A {
			continue
		}
		href := attr(n, "href")
		if href == "" {
			continue
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			continue
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			continue
		}
		abs.Fragment = ""
		abs.RawFragment = ""

		link := abs.String()
		if !strings.HasPrefix(link, prefix) || seen[link] {
			continue
		}
		seen[link] = true
		links = append(links, link)
	}
	return links, nil
}

// Content returns the readable text of page.
func (p *Parser) Content(page, pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: page url %q: %v", domain.ErrInvalidInput, pageURL, err)
	}

	article, err := readability.FromReader(strings.NewReader(page), u)
	if err == nil {
		if text := tidy(article.TextContent); text != "" {
			return text, nil
		}
	}

	// No article found: keep whatever text the page has.
	return stripHTML(page), nil
}

func attr(n *xhtml.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// Pre-compiled regular expressions for tag stripping.
var (
	scriptTag         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag       = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag           = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag            = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments      = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements     = regexp.MustCompile(`(?i)</(p|div|br|hr|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	openBlockElements = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	brTags            = regexp.MustCompile(`(?i)<br\s*/?>`)
	hrTags            = regexp.MustCompile(`(?i)<hr\s*/?>`)
	allTags           = regexp.MustCompile(`<[^>]+>`)
	multiSpaces       = regexp.MustCompile(`[ \t]+`)
)

// stripHTML removes tags and returns one line per block of text.
func stripHTML(content string) string {
	for _, re := range []*regexp.Regexp{scriptTag, styleTag, noscriptTag, headTag, svgTag, htmlComments} {
		content = re.ReplaceAllString(content, "")
	}

	content = openBlockElements.ReplaceAllString(content, "\n")
	content = blockElements.ReplaceAllString(content, "\n")
	content = brTags.ReplaceAllString(content, "\n")
	content = hrTags.ReplaceAllString(content, "\n")
	content = allTags.ReplaceAllString(content, "")
	content = xhtml.UnescapeString(content)

	return tidy(content)
}

// tidy collapses runs of spaces and drops blank lines.
func tidy(content string) string {
	lines := strings.Split(content, "\n")
	result := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(multiSpaces.ReplaceAllString(line, " "))
		if line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}
