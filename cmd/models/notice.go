package models

import "gorm.io/gorm"

// Notice is a club announcement. Position is the display order; reordering a
// batch of notices is applied all-or-nothing.
type Notice struct {
    gorm.Model
    Title    string `gorm:"column:title;size:255;not null" json:"title"`
    Body     string `gorm:"column:body;type:text;not null" json:"body"`
    AuthorID uint   `gorm:"column:author_id;not null" json:"author_id"`
    Position int    `gorm:"column:position;default:0" json:"position"`
    Author   *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}
