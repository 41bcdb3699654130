package htmldoc

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitemigrate/internal/config"
)

// Card is one listed entry on a hub page.
type Card struct {
	Title       string
	Target      string // unresolved reference; the linker re-points it
	Icon        string
	Description string
	Image       string
}

// Document is the structural model of one parsed page. Body still
// contains unresolved internal references; the linker resolves them in
// place before rendering.
type Document struct {
	Title    string
	SourceID string
	CoverRef string // local or absolute-external reference, unresolved
	Body     *html.Node
	IsHub    bool
	Cards    []Card
}

// BodyHTML serializes the sanitized body content.
func (d *Document) BodyHTML() string {
	if d.Body == nil {
		return ""
	}
	return RenderInner(d.Body)
}

// Parser turns raw export markup into Documents. The lookup tables
// steering the sanitization heuristics are injected at construction.
type Parser struct {
	tables config.TablesConfig
}

// NewParser builds a parser around the configured tables.
func NewParser(tables config.TablesConfig) *Parser {
	return &Parser{tables: tables}
}

// hubTextThreshold is the maximum amount of non-table text a page may
// carry and still be treated as a listing page. Articles that merely
// embed a small listing widget exceed it.
const hubTextThreshold = 1500

// hubCardMinimum is the number of link-card figures above which a page
// without a listing table is still treated as a hub.
const hubCardMinimum = 3

// Parse builds the content model for one document. It never fails on
// malformed input: each transform matches conservatively and no-ops on
// non-match, and a missing body container yields an empty, non-hub
// document.
func (p *Parser) Parse(raw []byte) *Document {
	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		// html.Parse recovers from any malformed byte stream; an error
		// here means an unreadable input, modeled as an empty page.
		return &Document{Body: Element("div")}
	}

	doc := &Document{}

	if h1 := Find(root, ByTagClass("h1", "page-title")); h1 != nil {
		doc.Title = Text(h1)
	}
	if article := Find(root, ByTag("article")); article != nil {
		doc.SourceID = strings.ReplaceAll(Attr(article, "id"), "-", "")
	}
	if cover := Find(root, ByTagClass("img", "page-cover-image")); cover != nil {
		doc.CoverRef = Attr(cover, "src")
	}

	body := Find(root, ByTagClass("div", "page-body"))
	if body == nil {
		doc.Body = Element("div")
		return doc
	}
	doc.Body = body

	// Ordered sanitization and enrichment pipeline. Each step is
	// idempotent; rewriting steps run after the content-shape steps so
	// generated markup is never re-matched.
	p.stripNavHeader(body)
	p.stripFooter(body)
	p.stripPropertiesTables(body)
	p.unwrapDisplayContents(body)
	p.stripEmptyParagraphs(body)
	p.stripContactLines(body)
	p.stripIconImages(body)
	p.stripCDNRefs(root)
	p.embedVideoLinks(body)
	p.groupPodcastLinks(body)
	p.beautifyDownloadLinks(body)
	p.styleExternalLinks(body)
	p.fixFootnoteHrefs(body)
	p.unwrapDataURIAnchors(body)

	p.detectHub(doc)
	return doc
}

// detectHub classifies listing pages and extracts their cards. A page
// with a listing table is a hub only when the surrounding text stays
// under the threshold (rule a, takes precedence); otherwise more than
// hubCardMinimum link-card figures also qualify it (rule b).
func (p *Parser) detectHub(doc *Document) {
	body := doc.Body

	if table := Find(body, ByTagClass("table", "collection-content")); table != nil {
		var surrounding strings.Builder
		for c := body.FirstChild; c != nil; c = c.NextSibling {
			if c == table || containsNode(c, table) {
				continue
			}
			surrounding.WriteString(Text(c))
		}
		if len(surrounding.String()) < hubTextThreshold {
			doc.IsHub = true
			doc.Cards = extractTableCards(table)
			// The rendering layer draws cards separately; the raw
			// table would duplicate them.
			Detach(table)
			return
		}
	}

	figures := FindAll(body, ByTagClass("figure", "link-to-page"))
	if len(figures) > hubCardMinimum {
		doc.IsHub = true
		doc.Cards = extractFigureCards(figures)
	}
}

func containsNode(root, target *html.Node) bool {
	for n := target; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}
