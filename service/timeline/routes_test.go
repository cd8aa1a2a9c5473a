package timeline

import (
	"testing"
	"time"

	"github.com/kvejborg/regatta-server/cmd/models"
	"gorm.io/gorm"
)

func TestPostResponse(t *testing.T) {
	createdAt := time.Date(2026, 6, 14, 12, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	p := models.TimelinePost{
		Model:      gorm.Model{ID: 7, CreatedAt: createdAt},
		TimelineID: 3,
		AuthorID:   2,
		Content:    "Rounding the top mark",
		IsApproved: true,
		Author: &models.User{
			Model:    gorm.Model{ID: 2},
			Username: "skipper",
			FullName: "Kim Vejborg",
			Role:     "member",
		},
	}

	resp := newPostResponse(p)
	if resp.CreatedAt != "2026-06-14T10:30:00Z" {
		t.Errorf("created_at = %q, want UTC RFC3339", resp.CreatedAt)
	}
	if resp.Author == nil || resp.Author.Username != "skipper" {
		t.Errorf("author not carried into response: %+v", resp.Author)
	}
}

// A post whose author relation was never loaded still renders completely;
// the author field is simply omitted.
func TestPostResponseWithoutAuthor(t *testing.T) {
	p := models.TimelinePost{
		Model:      gorm.Model{ID: 7, CreatedAt: time.Now()},
		TimelineID: 3,
		AuthorID:   2,
		Content:    "Rounding the top mark",
	}

	resp := newPostResponse(p)
	if resp.Author != nil {
		t.Fatalf("author should be nil when the relation is not loaded, got %+v", resp.Author)
	}
	if resp.Content != p.Content || resp.AuthorID != p.AuthorID || resp.ID != p.ID {
		t.Fatalf("response dropped post fields: %+v", resp)
	}
}
