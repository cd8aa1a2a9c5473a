package models

import "gorm.io/gorm"

// Timeline is the per-event social feed configuration. A missing row means
// "use the defaults"; rows are only ever created by a settings write or an
// access grant, never by a read.
type Timeline struct {
    gorm.Model
    EventID                 uint `gorm:"column:event_id;not null;uniqueIndex" json:"event_id"`
    IsActive                bool `gorm:"column:is_active;default:false" json:"is_active"`
    RequireApproval         bool `gorm:"column:require_approval;default:true" json:"require_approval"`
    AllowPublicViewing      bool `gorm:"column:allow_public_viewing;default:false" json:"allow_public_viewing"`
    AllowParticipantPosting bool `gorm:"column:allow_participant_posting;default:true" json:"allow_participant_posting"`

    Posts []TimelinePost `gorm:"foreignKey:TimelineID" json:"posts,omitempty"`
}

type TimelinePost struct {
    gorm.Model
    TimelineID uint   `gorm:"column:timeline_id;not null;index" json:"timeline_id"`
    AuthorID   uint   `gorm:"column:author_id;not null" json:"author_id"`
    Content    string `gorm:"column:content;type:text;not null" json:"content"`
    MediaURL   string `gorm:"column:media_url;size:500" json:"media_url,omitempty"`
    MediaType  string `gorm:"column:media_type;size:50" json:"media_type,omitempty"`
    IsApproved bool   `gorm:"column:is_approved;default:false" json:"is_approved"`

    Author   *User             `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
    Likes    []TimelineLike    `gorm:"foreignKey:PostID" json:"likes,omitempty"`
    Comments []TimelineComment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
}

// TimelineComment is append-only and carries no moderation state of its own.
type TimelineComment struct {
    gorm.Model
    PostID   uint   `gorm:"column:post_id;not null;index" json:"post_id"`
    AuthorID uint   `gorm:"column:author_id;not null" json:"author_id"`
    Content  string `gorm:"column:content;type:text;not null" json:"content"`
    Author   *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

// TimelineLike is a set-membership fact: at most one row per (post, user).
// The like count is always derived by counting rows.
type TimelineLike struct {
    gorm.Model
    PostID uint  `gorm:"column:post_id;not null;uniqueIndex:idx_post_user_like" json:"post_id"`
    UserID uint  `gorm:"column:user_id;not null;uniqueIndex:idx_post_user_like" json:"user_id"`
    User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TimelineAccess grants a named role on one timeline, independent of general
// site authentication.
type TimelineAccess struct {
    gorm.Model
    TimelineID uint   `gorm:"column:timeline_id;not null;uniqueIndex:idx_timeline_user_access" json:"timeline_id"`
    UserID     uint   `gorm:"column:user_id;not null;uniqueIndex:idx_timeline_user_access" json:"user_id"`
    Role       string `gorm:"column:role;size:50;not null;default:viewer" json:"role"`
    User       *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
