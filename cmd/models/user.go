package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
    gorm.Model
    FullName           string    `gorm:"column:full_name;size:255;not null" json:"full_name"`
    Username           string    `gorm:"column:username;size:100;not null;uniqueIndex" json:"username"`
    Email              string    `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
    PasswordHash       string    `gorm:"column:password_hash;size:255;not null" json:"-"`
    Role               string    `gorm:"column:role;size:50;not null;default:member" json:"role"`
    Bio                string    `gorm:"column:bio;type:text" json:"bio,omitempty"`
    SailNumber         string    `gorm:"column:sail_number;size:50" json:"sail_number,omitempty"`
    ProfilePicturePath string    `gorm:"column:profile_picture_path;size:255" json:"profile_picture_path,omitempty"`
    Refresh            string    `gorm:"column:refresh_token;size:255" json:"-"`
    RefreshExpiredAt   time.Time `gorm:"column:refresh_token_expired_at" json:"-"`

    Links []ProfileLink `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"links,omitempty"`
}

type PasswordResetToken struct {
    ID        uint      `gorm:"primaryKey"`
    UserID    uint      `gorm:"not null"`
    Token     string    `gorm:"not null"`
    ExpiresAt time.Time `gorm:"not null"`
}

// ProfileLink is a single entry on a member's public link page. Position
// controls display order, lowest first.
type ProfileLink struct {
    gorm.Model
    UserID   uint   `gorm:"column:user_id;not null;index" json:"user_id"`
    Title    string `gorm:"column:title;size:255;not null" json:"title"`
    URL      string `gorm:"column:url;size:500;not null" json:"url"`
    Position int    `gorm:"column:position;default:0" json:"position"`
    User     *User  `gorm:"foreignKey:UserID" json:"-"`
}
