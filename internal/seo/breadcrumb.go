package seo

import (
	"net/url"
	"strings"

	"github.com/inkwell/internal/db"
)

type Crumb struct {
	Name string
	URL  string
}

type ListItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item,omitempty"`
}

type BreadcrumbList struct {
	Context         string     `json:"@context"`
	Type            string     `json:"@type"`
	ItemListElement []ListItem `json:"itemListElement"`
}

// BuildBreadcrumb numbers items from 1 in the order given.
func BuildBreadcrumb(items []Crumb) BreadcrumbList {
	list := BreadcrumbList{
		Context:         schemaContext,
		Type:            "BreadcrumbList",
		ItemListElement: make([]ListItem, 0, len(items)),
	}
	for i, item := range items {
		list.ItemListElement = append(list.ItemListElement, ListItem{
			Type:     "ListItem",
			Position: i + 1,
			Name:     item.Name,
			Item:     item.URL,
		})
	}
	return list
}

// PostCrumbs is the Home > Blog > Category > Post trail used on the detail page.
func PostCrumbs(post db.Post, site Site) []Crumb {
	base := strings.TrimRight(site.BaseURL, "/")
	crumbs := []Crumb{
		{Name: "Home", URL: base + "/"},
		{Name: "Blog", URL: base + "/blog"},
	}
	if post.Category != "" {
		crumbs = append(crumbs, Crumb{
			Name: post.Category,
			URL:  base + "/blog?category=" + url.QueryEscape(post.Category),
		})
	}
	return append(crumbs, Crumb{Name: post.Title, URL: site.PostURL(post.Slug)})
}
