package timeline

import (
	"testing"
	"time"

	"github.com/kvejborg/regatta-server/cmd/models"
	"gorm.io/gorm"
)

func post(id uint, authorID uint, approved bool, createdAt time.Time) models.TimelinePost {
	return models.TimelinePost{
		Model:      gorm.Model{ID: id, CreatedAt: createdAt},
		AuthorID:   authorID,
		Content:    "post",
		IsApproved: approved,
	}
}

func postIDs(posts []models.TimelinePost) []uint {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func equalIDs(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestVisiblePosts(t *testing.T) {
	const owner, participant = uint(1), uint(2)
	base := time.Date(2026, 6, 14, 10, 0, 0, 0, time.UTC)

	posts := []models.TimelinePost{
		post(1, participant, true, base),
		post(2, participant, false, base.Add(time.Minute)),
		post(3, owner, true, base.Add(2*time.Minute)),
	}

	tests := []struct {
		name     string
		viewerID *uint
		want     []uint
	}{
		{"owner sees everything", uintPtr(owner), []uint{3, 2, 1}},
		{"participant sees approved only", uintPtr(participant), []uint{3, 1}},
		{"anonymous sees approved only", nil, []uint{3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := postIDs(VisiblePosts(posts, tt.viewerID, owner))
			if !equalIDs(got, tt.want) {
				t.Fatalf("VisiblePosts ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisiblePostsNewestFirst(t *testing.T) {
	base := time.Date(2026, 6, 14, 10, 0, 0, 0, time.UTC)
	posts := []models.TimelinePost{
		post(1, 2, true, base.Add(time.Hour)),
		post(2, 2, true, base),
		post(3, 2, true, base.Add(2*time.Hour)),
	}

	got := postIDs(VisiblePosts(posts, nil, 1))
	if !equalIDs(got, []uint{3, 1, 2}) {
		t.Fatalf("order = %v, want newest first [3 1 2]", got)
	}
}

func TestVisiblePostsTieBreakOnID(t *testing.T) {
	at := time.Date(2026, 6, 14, 10, 0, 0, 0, time.UTC)
	posts := []models.TimelinePost{
		post(5, 2, true, at),
		post(9, 2, true, at),
		post(7, 2, true, at),
	}

	got := postIDs(VisiblePosts(posts, nil, 1))
	if !equalIDs(got, []uint{9, 7, 5}) {
		t.Fatalf("order = %v, want descending IDs on equal timestamps", got)
	}
}

func TestVisiblePostsEmpty(t *testing.T) {
	got := VisiblePosts(nil, nil, 1)
	if got == nil || len(got) != 0 {
		t.Fatalf("VisiblePosts(nil) = %v, want empty non-nil slice", got)
	}
}

func uintPtr(v uint) *uint { return &v }

// A pending post is hidden from its own author until the owner approves it,
// then every viewer sees it.
func TestModerationFlow(t *testing.T) {
	const owner, author = uint(1), uint(2)

	settings := MergeSettings(DefaultSettings(), SettingsPatch{IsActive: boolPtr(true)})
	if !settings.RequireApproval {
		t.Fatalf("activating a timeline should leave approval required")
	}

	tl := &models.Timeline{
		IsActive:                settings.IsActive,
		RequireApproval:         settings.RequireApproval,
		AllowParticipantPosting: settings.AllowParticipantPosting,
	}
	if err := CheckAdmission(tl); err != nil {
		t.Fatalf("active open timeline should admit posts, got %v", err)
	}

	p := post(1, author, AutoApprove(settings.RequireApproval, author, owner), time.Now())
	if p.IsApproved {
		t.Fatalf("participant post should enter the queue unapproved")
	}

	posts := []models.TimelinePost{p}
	if got := VisiblePosts(posts, uintPtr(author), owner); len(got) != 0 {
		t.Fatalf("author should not see own pending post, got %d posts", len(got))
	}
	if got := VisiblePosts(posts, uintPtr(owner), owner); len(got) != 1 {
		t.Fatalf("owner should see the pending post, got %d posts", len(got))
	}

	posts[0].IsApproved = true
	if got := VisiblePosts(posts, uintPtr(author), owner); len(got) != 1 {
		t.Fatalf("author should see the post after approval, got %d posts", len(got))
	}
	if got := VisiblePosts(posts, nil, owner); len(got) != 1 {
		t.Fatalf("anonymous viewer should see the post after approval, got %d posts", len(got))
	}
}
