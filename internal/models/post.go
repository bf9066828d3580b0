package models

import "time"

// Post represents a published text post, optionally attached to a group
// and carrying an optional image.
//
// CreatedAt is set once on insert and never updated afterwards; every feed
// orders posts by CreatedAt descending with ID ascending as the stable
// tiebreak, so the absolute order is deterministic across repeated reads.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	GroupID   *uint     `gorm:"index" json:"group_id,omitempty"`
	Group     *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `gorm:"<-:create;index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Comments  []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
}
