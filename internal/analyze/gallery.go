package analyze

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/webinventory/internal/model"
)

// galleryRule matches blocks presenting multiple images.
type galleryRule struct{}

// Name returns the rule name.
func (galleryRule) Name() string { return model.ComponentMediaGallery }

// Match requires at least two images; a single stray image is page
// furniture, not a gallery. Images without a src are skipped and alt text
// defaults to "Image" when the attribute is missing entirely.
func (galleryRule) Match(block *goquery.Selection) (model.Component, bool) {
	imgs := block.Find("img")
	if imgs.Length() < 2 {
		return model.Component{}, false
	}

	images := make([]model.GalleryImage, 0, model.MaxGalleryImages)
	imgs.EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src := strings.TrimSpace(img.AttrOr("src", ""))
		if src == "" {
			return true
		}

		alt, ok := img.Attr("alt")
		if !ok {
			alt = "Image"
		}
		images = append(images, model.GalleryImage{Alt: strings.TrimSpace(alt), Src: src})
		return len(images) < model.MaxGalleryImages
	})

	if len(images) == 0 {
		return model.Component{}, false
	}
	return model.Component{Type: model.ComponentMediaGallery, Images: images}, true
}
