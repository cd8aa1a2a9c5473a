package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Series groups events into a season-long competition (e.g. the Wednesday
// evening series). Deleting a series removes its events first.
type Series struct {
    gorm.Model
    Title       string  `gorm:"column:title;size:255;not null" json:"title"`
    Description string  `gorm:"column:description;type:text" json:"description,omitempty"`
    Season      string  `gorm:"column:season;size:50" json:"season,omitempty"`
    Events      []Event `gorm:"foreignKey:SeriesID" json:"events,omitempty"`
}

type Event struct {
    gorm.Model
    Title       string    `gorm:"column:title;size:255;not null" json:"title"`
    Description string    `gorm:"column:description;type:text" json:"description,omitempty"`
    Slug        string    `gorm:"column:slug;size:255;uniqueIndex" json:"slug"`
    OrganizerID uint      `gorm:"column:organizer_id;not null;index" json:"organizer_id"`
    SeriesID    *uint     `gorm:"column:series_id;index" json:"series_id,omitempty"`
    Location    string    `gorm:"column:location;size:255" json:"location,omitempty"`
    StartsAt    time.Time `gorm:"column:starts_at" json:"starts_at"`

    Divisions pq.StringArray `gorm:"type:text[];column:divisions" json:"divisions,omitempty"`

    Organizer *User     `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"`
    Timeline  *Timeline `gorm:"foreignKey:EventID" json:"timeline,omitempty"`
}

type RaceResult struct {
    gorm.Model
    EventID    uint    `gorm:"column:event_id;not null;index" json:"event_id"`
    SailNumber string  `gorm:"column:sail_number;size:50;not null" json:"sail_number"`
    Skipper    string  `gorm:"column:skipper;size:255" json:"skipper,omitempty"`
    Division   string  `gorm:"column:division;size:100" json:"division,omitempty"`
    Position   int     `gorm:"column:position;not null" json:"position"`
    Points     float64 `gorm:"column:points;default:0" json:"points"`
}
