// Package parser extracts image references from tweet pages.
package parser

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	errs "tweetscraper/pkg/errors"
)

const (
	contentSelector = ".permalink-container"
	imageSelector   = "img[data-aria-label-part]"
	profileMarker   = "profile_images"
)

var imageProperties = map[string]bool{
	"twitter:image": true,
	"og:image":      true,
}

// MediaReference is an image URL found on a tweet page
type MediaReference struct {
	SourceURL string
}

// Extract returns the images in the page's permalink container: first the
// tweet's inline images, then twitter:image and og:image meta tags that are
// not profile pictures. A page without the container yields no references.
func Extract(body []byte) ([]MediaReference, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeParsing, err, "failed to parse tweet page")
	}
	return ExtractDocument(doc), nil
}

// ExtractDocument is Extract for an already parsed document
func ExtractDocument(doc *goquery.Document) []MediaReference {
	region := doc.Find(contentSelector).First()
	if region.Length() == 0 {
		return nil
	}

	var refs []MediaReference
	region.Find(imageSelector).Each(func(_ int, s *goquery.Selection) {
		if src := strings.TrimSpace(s.AttrOr("src", "")); src != "" {
			refs = append(refs, MediaReference{SourceURL: src})
		}
	})

	region.Find("meta").Each(func(_ int, s *goquery.Selection) {
		property, ok := s.Attr("property")
		if !ok || !imageProperties[property] {
			return
		}
		content := strings.TrimSpace(s.AttrOr("content", ""))
		if content == "" || strings.Contains(content, profileMarker) {
			return
		}
		refs = append(refs, MediaReference{SourceURL: content})
	})

	return refs
}
