package htmldoc

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitemigrate/internal/config"
	"git.home.luguber.info/inful/sitemigrate/internal/slug"
)

// stripNavHeader removes the export's navigation header: an early h3
// whose text contains any of the configured keywords.
func (p *Parser) stripNavHeader(body *html.Node) {
	headings := FindAll(body, ByTag("h3"))
	if len(headings) > 3 {
		headings = headings[:3]
	}
	for _, h := range headings {
		text := Text(h)
		for _, kw := range p.tables.NavKeywords {
			if strings.Contains(text, kw) {
				Detach(h)
				return
			}
		}
	}
}

// stripFooter removes the call-to-action block (the matching element
// and every following sibling) and the copyright line.
func (p *Parser) stripFooter(body *html.Node) {
	if p.tables.FooterPhrase != "" {
		match := Find(body, func(n *html.Node) bool {
			switch n.Data {
			case "h2", "h3", "p":
				return strings.Contains(Text(n), p.tables.FooterPhrase)
			}
			return false
		})
		if match != nil {
			for sib := match.NextSibling; sib != nil; {
				next := sib.NextSibling
				Detach(sib)
				sib = next
			}
			Detach(match)
		}
	}

	if len(p.tables.CopyrightMarks) == 0 {
		return
	}
	for _, para := range FindAll(body, ByTag("p")) {
		text := Text(para)
		all := true
		for _, mark := range p.tables.CopyrightMarks {
			if !strings.Contains(text, mark) {
				all = false
				break
			}
		}
		if all {
			Detach(para)
		}
	}
}

// stripPropertiesTables removes the raw metadata table the export
// prepends to each page.
func (p *Parser) stripPropertiesTables(body *html.Node) {
	for _, table := range FindAll(body, ByTagClass("table", "properties")) {
		Detach(table)
	}
}

var displayContentsRe = regexp.MustCompile(`display:\s*contents`)

// unwrapDisplayContents removes wrapper divs that exist only for the
// export's layout engine, keeping their children.
func (p *Parser) unwrapDisplayContents(body *html.Node) {
	for _, div := range FindAll(body, ByTag("div")) {
		if displayContentsRe.MatchString(Attr(div, "style")) {
			Unwrap(div)
		}
	}
}

// meaningfulDescendant reports whether the subtree contains an element
// that must survive even without text.
func meaningfulDescendant(n *html.Node) bool {
	return Find(n, func(e *html.Node) bool {
		switch e.Data {
		case "img", "a", "iframe", "video", "audio", "embed":
			return true
		}
		return false
	}) != nil
}

// stripEmptyParagraphs removes paragraphs with no text and no embedded
// media or links, then drops classless wrapper divs left empty by the
// earlier passes. Divs with a class are kept: the export uses classed
// wrappers (columns, callouts) that the stylesheet needs.
func (p *Parser) stripEmptyParagraphs(body *html.Node) {
	for _, para := range FindAll(body, ByTag("p")) {
		if Text(para) == "" && !meaningfulDescendant(para) {
			Detach(para)
		}
	}
	for _, div := range FindAll(body, ByTag("div")) {
		if Attr(div, "class") == "" && Text(div) == "" && !meaningfulDescendant(div) {
			Detach(div)
		}
	}
}

// stripContactLines drops paragraphs starting with a configured prefix
// (physical address and phone lines in the source export).
func (p *Parser) stripContactLines(body *html.Node) {
	for _, para := range FindAll(body, ByTag("p")) {
		text := Text(para)
		for _, prefix := range p.tables.ContactPrefixes {
			if strings.HasPrefix(text, prefix) {
				Detach(para)
				break
			}
		}
	}
}

// stripIconImages removes decorative icon images matched by URL
// substring, plus the span wrapper when it becomes empty.
func (p *Parser) stripIconImages(body *html.Node) {
	if p.tables.IconURLSubstring == "" {
		return
	}
	for _, img := range FindAll(body, ByTag("img")) {
		if !strings.Contains(Attr(img, "src"), p.tables.IconURLSubstring) {
			continue
		}
		parent := img.Parent
		Detach(img)
		if parent != nil && parent.Data == "span" && Text(parent) == "" {
			Detach(parent)
		}
	}
}

// stripCDNRefs removes script and stylesheet tags pointing at CDNs the
// produced site does not use.
func (p *Parser) stripCDNRefs(root *html.Node) {
	for _, script := range FindAll(root, ByTag("script")) {
		if strings.Contains(Attr(script, "src"), "cdnjs.cloudflare.com") {
			Detach(script)
		}
	}
	for _, link := range FindAll(root, ByTag("link")) {
		if strings.Contains(Attr(link, "href"), "cdnjs.cloudflare.com") {
			Detach(link)
		}
	}
}

// videoIDRes match the two known video URL shapes; both capture an
// 11-character video identifier.
var videoIDRes = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?(?:[^#]*&)?v=([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
}

// embedVideoLinks converts bare video-platform links into embedded
// players. Only bookmark-style links qualify: the visible text is
// empty or itself a URL. The produced iframe never re-matches.
func (p *Parser) embedVideoLinks(body *html.Node) {
	for _, a := range FindAll(body, ByTag("a")) {
		href := Attr(a, "href")
		text := Text(a)
		if text != "" && !strings.HasPrefix(text, "http") {
			continue
		}

		var videoID string
		for _, re := range videoIDRes {
			if m := re.FindStringSubmatch(href); m != nil {
				videoID = m[1]
				break
			}
		}
		if videoID == "" {
			continue
		}

		figure := Element("figure", "class", "video-embed")
		iframe := Element("iframe",
			"src", "https://www.youtube.com/embed/"+videoID,
			"loading", "lazy",
			"allowfullscreen", "")
		figure.AppendChild(iframe)
		ReplaceWith(a, figure)
	}
}

// episodeSlugRe splits an episode path segment into its display slug
// and the platform's trailing short code.
var episodeSlugRe = regexp.MustCompile(`^(.*?)-(e[a-z0-9]{4,})$`)

// groupPodcastLinks collapses a contiguous run of podcast episode
// links into a single visual grid. Episode titles come from the
// curated table keyed by the URL slug, with a title-cased fallback.
func (p *Parser) groupPodcastLinks(body *html.Node) {
	var run []*html.Node // top-level containers holding one episode link each
	flush := func() {
		if len(run) < 2 {
			run = nil
			return
		}
		grid := Element("div", "class", "podcast-grid")
		for _, container := range run {
			a := Find(container, ByTag("a"))
			href := Attr(a, "href")
			entry := Element("a",
				"class", "podcast-episode",
				"href", href,
				"target", "_blank",
				"rel", "noopener noreferrer")
			title := Element("span", "class", "podcast-episode__title")
			title.AppendChild(TextNode(p.episodeTitle(href)))
			entry.AppendChild(title)
			grid.AppendChild(entry)
		}
		ReplaceWith(run[0], grid)
		for _, container := range run[1:] {
			Detach(container)
		}
		run = nil
	}

	for child := body.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode && strings.TrimSpace(child.Data) == "" {
			continue // whitespace between siblings does not break a run
		}
		if child.Type == html.ElementNode && p.isPodcastContainer(child) {
			run = append(run, child)
			continue
		}
		flush()
	}
	flush()
}

// isPodcastContainer reports whether a top-level element holds exactly
// one podcast episode link and nothing else of substance. Already
// converted grids never match.
func (p *Parser) isPodcastContainer(n *html.Node) bool {
	if HasClass(n, "podcast-grid") {
		return false
	}
	anchors := FindAll(n, ByTag("a"))
	if len(anchors) != 1 {
		return false
	}
	return p.isPodcastEpisodeURL(Attr(anchors[0], "href"))
}

func (p *Parser) isPodcastEpisodeURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || !strings.Contains(u.Path, "/episodes/") {
		return false
	}
	for _, host := range p.tables.PodcastHosts {
		if u.Host == host || strings.HasSuffix(u.Host, "."+host) {
			return true
		}
	}
	return false
}

// episodeTitle derives the display title for one episode URL.
func (p *Parser) episodeTitle(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	seg := path.Base(u.Path)
	if m := episodeSlugRe.FindStringSubmatch(seg); m != nil {
		seg = m[1]
	}
	if title, ok := p.tables.PodcastTitles[seg]; ok {
		return title
	}
	return slug.Humanize(seg)
}

// beautifyDownloadLinks replaces links whose visible text is a raw
// storage URL with a styled download card. The icon and label derive
// from the target's file extension.
func (p *Parser) beautifyDownloadLinks(body *html.Node) {
	for _, a := range FindAll(body, ByTag("a")) {
		text := Text(a)
		matched := false
		for _, pattern := range p.tables.UglyLinkPatterns {
			if strings.Contains(text, pattern) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		href := Attr(a, "href")
		filename := path.Base(href)
		if href == "" {
			filename = path.Base(strings.TrimRight(text, "/"))
		}
		ext := strings.ToLower(path.Ext(filename))
		stem := strings.TrimSuffix(filename, path.Ext(filename))

		ft, ok := p.tables.FileTypes[ext]
		if !ok {
			label := strings.ToUpper(strings.TrimPrefix(ext, "."))
			if label == "" {
				label = "Archivo"
			}
			ft.Category, ft.Label = "file", label
		}

		Clear(a)
		AddClass(a, "download-card")
		SetAttr(a, "download", "")

		icon := Element("span", "class", "download-card__icon download-card__icon--"+ft.Category)
		info := Element("span", "class", "download-card__info")
		name := Element("span", "class", "download-card__name")
		name.AppendChild(TextNode(slug.Humanize(stem)))
		kind := Element("span", "class", "download-card__type")
		kind.AppendChild(TextNode("Descargar " + ft.Label))
		info.AppendChild(name)
		info.AppendChild(kind)
		a.AppendChild(icon)
		a.AppendChild(info)

		restyleDownloadWrapper(a)
	}
}

// restyleDownloadWrapper adjusts the export's figure/source wrapper
// around a converted download card.
func restyleDownloadWrapper(a *html.Node) {
	for n := a.Parent; n != nil; n = n.Parent {
		if n.Data == "div" && HasClass(n, "source") {
			SetAttr(n, "class", "download-card-wrapper")
			if fig := findAncestor(n, "figure"); fig != nil {
				AddClass(fig, "download-figure")
			}
			return
		}
	}
}

func findAncestor(n *html.Node, tag string) *html.Node {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if cur.Type == html.ElementNode && cur.Data == tag {
			return cur
		}
	}
	return nil
}

// styleExternalLinks converts links matching the domain table into
// styled external-link cards. Domains marked Remove hold widget
// placeholders that cannot render without live script; those elements
// are dropped entirely.
func (p *Parser) styleExternalLinks(body *html.Node) {
	for _, a := range FindAll(body, ByTag("a")) {
		if HasClass(a, "external-link-card") || HasClass(a, "download-card") || HasClass(a, "podcast-episode") {
			continue
		}
		u, err := url.Parse(Attr(a, "href"))
		if err != nil || u.Host == "" {
			continue
		}
		card, ok := matchDomain(p.tables.DomainCards, u.Host)
		if !ok {
			continue
		}

		if card.Remove {
			container := a
			if fig := findAncestor(a, "figure"); fig != nil {
				container = fig
			}
			Detach(container)
			continue
		}

		Clear(a)
		AddClass(a, "external-link-card")
		SetAttr(a, "target", "_blank")
		SetAttr(a, "rel", "noopener noreferrer")
		if card.Icon != "" {
			icon := Element("span", "class", "external-link-card__icon")
			icon.AppendChild(TextNode(card.Icon))
			a.AppendChild(icon)
		}
		label := Element("span", "class", "external-link-card__label")
		label.AppendChild(TextNode(card.Label))
		a.AppendChild(label)
	}
}

func matchDomain(table map[string]config.DomainCard, host string) (config.DomainCard, bool) {
	host = strings.TrimPrefix(host, "www.")
	if card, ok := table[host]; ok {
		return card, true
	}
	return config.DomainCard{}, false
}

// fixFootnoteHrefs repairs the export's malformed footnote targets,
// which prefix the fragment with a dead about:blank URL.
func (p *Parser) fixFootnoteHrefs(body *html.Node) {
	for _, a := range FindAll(body, ByTag("a")) {
		href := Attr(a, "href")
		if strings.HasPrefix(href, "about:blank#") {
			SetAttr(a, "href", "#"+strings.TrimPrefix(href, "about:blank#"))
		}
	}
}

// unwrapDataURIAnchors keeps the visible content of anchors whose
// target is an inline data URI, discarding the unusable link wrapper.
func (p *Parser) unwrapDataURIAnchors(body *html.Node) {
	for _, a := range FindAll(body, ByTag("a")) {
		if strings.HasPrefix(Attr(a, "href"), "data:") {
			Unwrap(a)
		}
	}
}
