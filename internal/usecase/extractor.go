package usecase

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/linkedin-connector/internal/entity"
	"github.com/user/linkedin-connector/pkg/utils"
)

// ExtractCandidate parses the outer HTML of a result card.
// Missing fields are left empty; only unparsable HTML is an error.
func ExtractCandidate(html string, sel Selectors, baseURL string) (entity.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return entity.Candidate{}, err
	}

	fullName := cleanText(doc.Find(sel.Name).First().Text())
	c := entity.Candidate{
		Subtitle:  cleanText(doc.Find(sel.Subtitle).First().Text()),
		FullName:  fullName,
		FirstName: entity.FirstNameOf(fullName),
	}

	if href, ok := doc.Find(sel.ProfileLink).First().Attr("href"); ok && href != "" {
		c.ProfileURL = href
		if base, err := url.Parse(baseURL); err == nil {
			if abs, err := utils.ToAbsoluteURL(base, href); err == nil {
				c.ProfileURL = abs
			}
		}
	}
	return c, nil
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
