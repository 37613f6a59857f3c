package handelsregister

import (
	"regexp"
	"strings"

	"resolver/pkg/domain"

	"github.com/PuerkitoBio/goquery"
)

var (
	registrationRe = regexp.MustCompile(`(?i)\b(HRB|HRA|GnR|GuR|G\x{fc}R|PR|VR|EWIV|SCE|SPE|SE)\s*:?\s*[0-9]{1,8}\s?[A-Za-z]?\b`)
	courtRe        = regexp.MustCompile(`(?i)(?:Amtsgericht|District court)\s+([\p{L}\p{N} .()/-]+)`)
	spaceRe        = regexp.MustCompile(`\s+`)
)

// parseResults extracts candidate companies from a rendered results page.
//
// The portal renders one table row per register entry; the row carries the
// company name, a "court HRB number" style cell and a set of short anchors
// (AD, CD, HD, ...) linking to the downloadable documents. Row order is kept
// because the matcher breaks ties by it. Rows without any document anchor are
// navigation chrome and skipped.
func parseResults(doc *goquery.Document) []domain.Company {
	var companies []domain.Company

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		links := documentLinks(row)
		if len(links) == 0 {
			return
		}

		company := domain.Company{DocumentLinks: links}

		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			text := spaceRe.ReplaceAllString(strings.TrimSpace(cell.Text()), " ")
			if text == "" {
				return
			}

			if m := registrationRe.FindString(text); m != "" && company.RegistrationNumber == "" {
				company.RegistrationNumber = m
			}
			if m := courtRe.FindStringSubmatch(text); m != nil && company.Court == "" {
				// the court cell usually carries the register number too
				company.Court = strings.TrimSpace(registrationRe.ReplaceAllString(m[1], ""))
			}

			if name := companyName(text); name != "" && len(name) > len(company.Name) {
				company.Name = name
			}
		})

		if company.Name != "" {
			companies = append(companies, company)
		}
	})

	return companies
}

// documentLinks collects the short document anchors (AD, CD, ...) of a result
// row, keyed by their document type. The anchor's JSF component id is what the
// download post needs.
func documentLinks(row *goquery.Selection) map[domain.DocumentType]string {
	var links map[domain.DocumentType]string

	row.Find("a").Each(func(_ int, a *goquery.Selection) {
		dt, ok := domain.ParseDocumentType(strings.TrimSpace(a.Text()))
		if !ok {
			return
		}
		id, ok := a.Attr("id")
		if !ok || id == "" {
			return
		}

		if links == nil {
			links = make(map[domain.DocumentType]string)
		}
		if _, exists := links[dt]; !exists {
			links[dt] = id
		}
	})

	return links
}

// companyName decides whether a cell's text looks like the company name. The
// results table mixes name cells with court cells, history markers and
// language switches; everything recognizably non-name is rejected and the
// longest survivor wins.
func companyName(text string) string {
	if len(text) < 4 || !strings.ContainsFunc(text, isLetter) {
		return ""
	}
	if registrationRe.MatchString(text) || courtRe.MatchString(text) {
		return ""
	}

	lower := strings.ToLower(text)
	for _, noise := range []string{"historie", "amtsgericht", "district court", "dokumentart", "ui-", "j_idt"} {
		if strings.Contains(lower, noise) {
			return ""
		}
	}
	// language switcher cells are short uppercase codes
	if len(text) <= 3 && strings.ToUpper(text) == text {
		return ""
	}
	// cells holding only the document anchors render as "AD CD HD ..."
	if allDocumentCodes(strings.Fields(text)) {
		return ""
	}

	return text
}

func allDocumentCodes(tokens []string) bool {
	for _, tok := range tokens {
		if _, ok := domain.ParseDocumentType(tok); !ok {
			return false
		}
	}

	return len(tokens) > 0
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 0x7f
}
