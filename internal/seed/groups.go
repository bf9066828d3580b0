package seed

import (
	"fmt"

	"quill/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInGroup is a permanent editorial community.
type BuiltInGroup struct {
	Title       string
	Slug        string
	Description string
}

// BuiltInGroups defines the permanent communities available out of the box.
var BuiltInGroups = []BuiltInGroup{
	{Title: "The Commons", Slug: "commons", Description: "General writing, open to every topic."},
	{Title: "Field Notes", Slug: "field-notes", Description: "Short observations from daily life."},
	{Title: "Long Reads", Slug: "long-reads", Description: "Essays and longer form pieces."},
	{Title: "The Darkroom", Slug: "darkroom", Description: "Photography and image-led posts."},
	{Title: "Press Room", Slug: "press-room", Description: "News commentary and analysis."},
	{Title: "The Workshop", Slug: "workshop", Description: "Craft, process, and works in progress."},
	{Title: "Verse", Slug: "verse", Description: "Poetry and experimental writing."},
	{Title: "The Stacks", Slug: "stacks", Description: "Book notes and reading lists."},
}

// Groups seeds the permanent built-in groups. Re-running is harmless:
// existing slugs are left untouched.
func Groups(db *gorm.DB) error {
	for _, item := range BuiltInGroups {
		group := models.Group{
			Title:       item.Title,
			Slug:        item.Slug,
			Description: item.Description,
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).Create(&group).Error
		if err != nil {
			return fmt.Errorf("seed group %q: %w", item.Slug, err)
		}
	}
	return nil
}
