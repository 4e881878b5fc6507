package adservice

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/weppos/publicsuffix-go/publicsuffix"
	"golang.org/x/net/html"

	"github.com/adlabtools/kwopt/internal/utils"
	"github.com/adlabtools/kwopt/pkg/keywords"
)

// URLSeedGenerator scrapes seed pages for candidate terms (title, meta
// keywords, headings and the registrable domain label) and feeds them through
// the ideas service.
type URLSeedGenerator struct {
	finder     *IdeasFinder
	urls       []string
	matchTypes []keywords.MatchType
	config     *keywords.CampaignConfiguration

	http *retryablehttp.Client
}

func NewURLSeedGenerator(finder *IdeasFinder, urls []string,
	matchTypes []keywords.MatchType, config *keywords.CampaignConfiguration) *URLSeedGenerator {
	scrapeClient := retryablehttp.NewClient()
	scrapeClient.Logger = log.New(io.Discard, "", 0)
	scrapeClient.RetryMax = 2
	return &URLSeedGenerator{
		finder:     finder,
		urls:       urls,
		matchTypes: matchTypes,
		config:     config,
		http:       scrapeClient,
	}
}

func (g *URLSeedGenerator) Generate() (*keywords.Population, error) {
	var terms []string
	seen := make(map[string]bool)
	addTerm := func(term string) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" || seen[term] {
			return
		}
		seen[term] = true
		terms = append(terms, term)
	}

	for _, pageURL := range g.urls {
		pageTerms, err := g.scrape(pageURL)
		if err != nil {
			return nil, fmt.Errorf("failed to scrape %s: %w", pageURL, err)
		}
		utils.Log.Debugf("Scraped %d terms from %s", len(pageTerms), pageURL)
		for _, term := range pageTerms {
			addTerm(term)
		}
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("no usable terms found on the seed pages")
	}

	ideas, err := g.finder.Related(terms, g.config)
	if err != nil {
		return nil, err
	}
	return populationFromIdeas(ideas, g.matchTypes, g.config)
}

func (g *URLSeedGenerator) scrape(pageURL string) ([]string, error) {
	req, err := retryablehttp.NewRequest("GET", pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	var terms []string
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		terms = append(terms, title)
	}
	if content, ok := doc.Find(`meta[name="keywords"]`).Attr("content"); ok {
		for _, keyword := range strings.Split(content, ",") {
			terms = append(terms, keyword)
		}
	}
	doc.Find("h1, h2").Each(func(_ int, s *goquery.Selection) {
		for _, node := range s.Nodes {
			terms = append(terms, nodeText(node))
		}
	})

	if domainTerm := domainKeyword(pageURL); domainTerm != "" {
		terms = append(terms, domainTerm)
	}
	return terms, nil
}

// nodeText collects the text content of an HTML node, skipping nested script
// and style elements.
func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return ""
	}
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		sb.WriteString(nodeText(child))
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// domainKeyword turns the page's registrable domain into a seed term, e.g.
// "https://www.acme-plumbing.co.uk/about" -> "acme plumbing".
func domainKeyword(pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Hostname() == "" {
		return ""
	}
	name, err := publicsuffix.Parse(parsed.Hostname())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(name.SLD, "-", " "), "_", " "))
}
