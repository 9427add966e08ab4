package lookup

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var innRe = regexp.MustCompile(`ИНН[:\s]+(\d{10}|\d{12})`)

// parseListItem извлекает кандидата из первого элемента списка результатов.
// Возвращает nil, если списка нет или в элементе не нашлось ИНН.
func parseListItem(html string) *Candidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	item := doc.Find("div.list-element").First()
	if item.Length() == 0 {
		return nil
	}

	name := strings.TrimSpace(item.Find("a.list-element__title").First().Text())

	var inn string
	item.Find("div.list-element__row-info span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if m := innRe.FindStringSubmatch(s.Text()); m != nil {
			inn = m[1]
			return false
		}
		return true
	})
	if inn == "" {
		// ИНН бывает в общем тексте элемента, не в отдельном span
		if m := innRe.FindStringSubmatch(item.Text()); m != nil {
			inn = m[1]
		}
	}
	if inn == "" {
		return nil
	}

	address := strings.TrimSpace(item.Find("div.list-element__address").First().Text())

	return &Candidate{Name: name, INN: inn, Address: address, Source: "list"}
}

// cardLink возвращает относительную ссылку на карточку первой организации из списка.
func cardLink(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	href, ok := doc.Find("div.list-element a.list-element__title").First().Attr("href")
	if !ok {
		return ""
	}
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "http") {
		return ""
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return href
}

// parseCard извлекает кандидата со страницы карточки организации.
func parseCard(html string) *Candidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var inn string
	doc.Find(`[id^="clip_inn"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if len(text) == 10 || len(text) == 12 {
			inn = text
			return false
		}
		return true
	})
	if inn == "" {
		return nil
	}

	name := strings.TrimSpace(doc.Find("h1").First().Text())
	if name == "" {
		if title, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
			name = strings.TrimSpace(title)
		}
	}

	address := strings.TrimSpace(doc.Find("#clip_address").First().Text())

	return &Candidate{Name: name, INN: inn, Address: address, Source: "card"}
}

// parseRaw последний слой: обходит дерево страницы и ищет ИНН в текстовых
// узлах. Название и адрес при этом недоступны, кандидат остаётся безымянным.
func parseRaw(page string) *Candidate {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil
	}
	if inn := findINNNode(doc); inn != "" {
		return &Candidate{INN: inn, Source: "raw"}
	}
	return nil
}

// findINNNode рекурсивно ищет первый текстовый узел с ИНН,
// пропуская скрипты и стили.
func findINNNode(n *html.Node) string {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return ""
	}
	if n.Type == html.TextNode {
		if m := innRe.FindStringSubmatch(n.Data); m != nil {
			return m[1]
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if inn := findINNNode(c); inn != "" {
			return inn
		}
	}
	return ""
}
