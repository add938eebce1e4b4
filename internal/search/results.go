package search

import (
	"net/url"

	"paygateway/internal/domain"
	"paygateway/internal/uris"
)

// PageLink is a pagination link.
type PageLink struct {
	Href string `json:"href"`
}

// PageLinks navigates a result set. Only self, first_page and last_page are
// always present.
type PageLinks struct {
	Self      *PageLink `json:"self"`
	FirstPage *PageLink `json:"first_page"`
	LastPage  *PageLink `json:"last_page"`
	PrevPage  *PageLink `json:"prev_page,omitempty"`
	NextPage  *PageLink `json:"next_page,omitempty"`
}

// Results is one page of search results.
type Results[T any] struct {
	Total   int64     `json:"total"`
	Count   int       `json:"count"`
	Page    int       `json:"page"`
	Results []T       `json:"results"`
	Links   PageLinks `json:"_links"`
}

// pageLinks computes the navigation links for page of a collection holding
// total records shown displaySize at a time.
func pageLinks(collection string, filters url.Values, page, displaySize int, total int64) PageLinks {
	href := func(n int) *PageLink {
		return &PageLink{Href: uris.Page(collection, filters, n, displaySize)}
	}

	last := int((total + int64(displaySize) - 1) / int64(displaySize))
	if last < 1 {
		last = 1
	}

	links := PageLinks{
		Self:      href(page),
		FirstPage: href(1),
		LastPage:  href(last),
	}
	if page > 1 {
		links.PrevPage = href(page - 1)
	}
	if int64(page)*int64(displaySize) < total {
		links.NextPage = href(page + 1)
	}
	return links
}

// paginate assembles a backend page into Results.
func paginate[W, T any](
	page domain.Page[W],
	convert func([]W) []T,
	collection string,
	filters url.Values,
	p paging,
) Results[T] {
	results := convert(page.Results)

	current := page.Page
	if current < 1 {
		current = p.page
	}

	return Results[T]{
		Total:   page.Total,
		Count:   len(results),
		Page:    current,
		Results: results,
		Links:   pageLinks(collection, filters, current, p.displaySize, page.Total),
	}
}
