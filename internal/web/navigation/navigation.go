// Package navigation provides utilities for managing navigation state and sidebar visibility.
package navigation

import "github.com/GoShelf-Admin/GoShelf-Admin/internal/db/models"

// Item represents a single sidebar navigation entry.
type Item struct {
	Title string
	URL   string
	// Bit is the sidebar visibility bit gating this entry, zero for always visible.
	Bit uint
}

// Context represents the navigation context for a page.
type Context struct {
	PageTitle  string
	ActivePage string
	Items      []Item
}

// sidebar is the full set of library sections in render order.
var sidebar = []Item{
	{Title: "Recently Added", URL: "/dashboard", Bit: models.SidebarRecent},
	{Title: "Authors", URL: "/dashboard?view=authors", Bit: models.SidebarAuthor},
	{Title: "Series", URL: "/dashboard?view=series", Bit: models.SidebarSeries},
	{Title: "Categories", URL: "/dashboard?view=categories", Bit: models.SidebarCategory},
	{Title: "Languages", URL: "/dashboard?view=languages", Bit: models.SidebarLanguage},
	{Title: "Hot Books", URL: "/dashboard?view=hot", Bit: models.SidebarHot},
	{Title: "Top Rated", URL: "/dashboard?view=rated", Bit: models.SidebarBestRated},
	{Title: "Random", URL: "/dashboard?view=random", Bit: models.SidebarRandom},
	{Title: "Publishers", URL: "/dashboard?view=publishers", Bit: models.SidebarPublisher},
	{Title: "Archived", URL: "/dashboard?view=archived", Bit: models.SidebarArchived},
	{Title: "Downloads", URL: "/dashboard?view=downloads", Bit: models.SidebarDownload},
	{Title: "Book List", URL: "/dashboard?view=list", Bit: models.SidebarList},
}

// NewContext creates a navigation context with the sidebar entries the
// user's visibility bitmask allows.
func NewContext(pageTitle, activePage string, user *models.User) *Context {
	ctx := &Context{
		PageTitle:  pageTitle,
		ActivePage: activePage,
	}

	for _, item := range sidebar {
		if item.Bit == 0 || user.SidebarView&item.Bit != 0 {
			ctx.Items = append(ctx.Items, item)
		}
	}

	return ctx
}

// IsActive checks if the given page matches the current context.
func (c *Context) IsActive(page string) bool {
	return c.ActivePage == page
}
