package entity

import "strings"

// ImageSource names the shape a product stores its pictures in.
type ImageSource int

const (
	// ImagesNone: no usable picture in any field.
	ImagesNone ImageSource = iota
	// ImagesList: the current images array.
	ImagesList
	// ImagesLegacyURL: a single imageUrl string.
	ImagesLegacyURL
	// ImagesLegacyObject: an image{url, altText} object.
	ImagesLegacyObject
)

func (s ImageSource) String() string {
	switch s {
	case ImagesList:
		return "images"
	case ImagesLegacyURL:
		return "imageUrl"
	case ImagesLegacyObject:
		return "image.url"
	default:
		return "none"
	}
}

// ImageVariant is the classified picture data of one product.
type ImageVariant struct {
	Source ImageSource
	URLs   []string
}

// ClassifyImages picks the variant a product's pictures come from.
// Precedence: non-empty images, then imageUrl, then image.url.
func ClassifyImages(p *Product) ImageVariant {
	if len(p.Images) > 0 {
		return ImageVariant{Source: ImagesList, URLs: p.Images}
	}
	if u := strings.TrimSpace(p.ImageURL); u != "" {
		return ImageVariant{Source: ImagesLegacyURL, URLs: []string{u}}
	}
	if p.Image != nil {
		if u := strings.TrimSpace(p.Image.URL); u != "" {
			return ImageVariant{Source: ImagesLegacyObject, URLs: []string{u}}
		}
	}
	return ImageVariant{Source: ImagesNone}
}

// Normalize returns the canonical images list. Never nil.
func (v ImageVariant) Normalize() []string {
	out := make([]string, len(v.URLs))
	copy(out, v.URLs)
	return out
}

// NeedsMigration reports whether the canonical list came from a legacy field
// and should be written back to the images array.
func (v ImageVariant) NeedsMigration() bool {
	return v.Source == ImagesLegacyURL || v.Source == ImagesLegacyObject
}

// NormalizeImages replaces p.Images with the canonical list and reports
// whether it was derived from a legacy field.
func NormalizeImages(p *Product) bool {
	v := ClassifyImages(p)
	p.Images = v.Normalize()
	return v.NeedsMigration()
}
