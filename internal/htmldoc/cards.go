package htmldoc

import (
	"regexp"

	"golang.org/x/net/html"
)

// timestampRe matches the export's raw date markers ("@May 3, 2021",
// "2021-05-03T10:00") which show up in listing table cells but are not
// useful card descriptions.
var timestampRe = regexp.MustCompile(`^@?[A-Z][a-z]+ \d{1,2}, \d{4}|^\d{4}-\d{2}-\d{2}`)

// extractTableCards pulls one card per row from a listing table. The
// first link in the leading cell supplies title and target; later
// cells may supply an icon and a description.
func extractTableCards(table *html.Node) []Card {
	var cards []Card
	for _, row := range FindAll(table, ByTag("tr")) {
		cells := FindAll(row, ByTag("td"))
		if len(cells) == 0 {
			continue
		}

		link := Find(cells[0], ByTag("a"))
		if link == nil {
			continue
		}
		card := Card{
			Title:  Text(link),
			Target: Attr(link, "href"),
		}
		if card.Title == "" {
			continue
		}

		if iconSpan := Find(cells[0], ByTagClass("span", "icon")); iconSpan != nil {
			if img := Find(iconSpan, ByTag("img")); img != nil {
				card.Icon = Attr(img, "src")
			}
		}
		if len(cells) > 1 {
			if desc := Text(cells[1]); !timestampRe.MatchString(desc) {
				card.Description = desc
			}
		}
		cards = append(cards, card)
	}
	return cards
}

// extractFigureCards pulls cards from link-to-page figures on pages
// that are lists of links rather than listing tables.
func extractFigureCards(figures []*html.Node) []Card {
	var cards []Card
	for _, fig := range figures {
		link := Find(fig, ByTag("a"))
		if link == nil {
			continue
		}
		title := Text(link)
		if title == "" {
			continue
		}
		cards = append(cards, Card{Title: title, Target: Attr(link, "href")})
	}
	return cards
}
