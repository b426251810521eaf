package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/models"
)

func TestNewContext(t *testing.T) {
	user := &models.User{SidebarView: models.SidebarRecent | models.SidebarAuthor}

	ctx := NewContext("Library", "dashboard", user)

	assert.Equal(t, "Library", ctx.PageTitle)
	assert.Equal(t, "dashboard", ctx.ActivePage)

	titles := make([]string, 0, len(ctx.Items))
	for _, item := range ctx.Items {
		titles = append(titles, item.Title)
	}
	assert.Equal(t, []string{"Recently Added", "Authors"}, titles)
}

func TestNewContextDefaultSidebar(t *testing.T) {
	user := &models.User{SidebarView: models.DefaultSidebar}

	ctx := NewContext("Library", "dashboard", user)

	for _, item := range ctx.Items {
		assert.NotEqual(t, "Downloads", item.Title, "download view is admin sidebar only")
		assert.NotEqual(t, "Book List", item.Title, "list view is admin sidebar only")
	}
}

func TestContextIsActive(t *testing.T) {
	ctx := NewContext("Profile", "profile", &models.User{})

	assert.True(t, ctx.IsActive("profile"))
	assert.False(t, ctx.IsActive("dashboard"))
}
