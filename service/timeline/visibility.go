package timeline

import (
	"sort"

	"github.com/kvejborg/regatta-server/cmd/models"
)

// VisiblePosts returns the subset of posts the viewer may see, newest first.
// The event owner sees every post; all other viewers (including anonymous
// ones) only see approved posts. Ties on creation time break on descending
// ID so the order stays deterministic.
func VisiblePosts(posts []models.TimelinePost, viewerID *uint, ownerID uint) []models.TimelinePost {
    isOwner := viewerID != nil && *viewerID == ownerID

    visible := make([]models.TimelinePost, 0, len(posts))
    for _, post := range posts {
        if isOwner || post.IsApproved {
            visible = append(visible, post)
        }
    }

    sort.SliceStable(visible, func(i, j int) bool {
        if visible[i].CreatedAt.Equal(visible[j].CreatedAt) {
            return visible[i].ID > visible[j].ID
        }
        return visible[i].CreatedAt.After(visible[j].CreatedAt)
    })
    return visible
}
