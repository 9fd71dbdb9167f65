package services

import (
	"fmt"

	"ghardwar-web/models"
)

// MetaService builds the per-page SEO metadata the layout template renders.
type MetaService struct {
	siteName string
	baseURL  string
}

func NewMetaService(siteName, baseURL string) *MetaService {
	return &MetaService{siteName: siteName, baseURL: baseURL}
}

// PageMeta is consumed by the layout's <head> block.
type PageMeta struct {
	Title       string
	Description string
	Canonical   string
	Image       string
	Type        string
}

func (s *MetaService) Default(title, description, path string) PageMeta {
	if title == "" {
		title = s.siteName
	} else {
		title = title + " | " + s.siteName
	}
	return PageMeta{
		Title:       title,
		Description: description,
		Canonical:   s.baseURL + path,
		Type:        "website",
	}
}

func (s *MetaService) ForProperty(p *models.Property) PageMeta {
	meta := s.Default(p.Title, fmt.Sprintf("%s in %s, %s", p.Title, p.Locality, p.City),
		fmt.Sprintf("/properties/%d", p.ID))
	meta.Type = "product"
	if len(p.Images) > 0 {
		meta.Image = p.Images[0]
	}
	return meta
}

func (s *MetaService) ForBlog(post *models.BlogPost) PageMeta {
	meta := s.Default(post.Title, post.Summary, "/blog/"+post.Slug)
	meta.Type = "article"
	meta.Image = post.CoverImage
	return meta
}
