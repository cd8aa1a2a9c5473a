package timeline

import (
	"testing"

	"github.com/kvejborg/regatta-server/cmd/models"
	"github.com/kvejborg/regatta-server/cmd/utils"
)

func TestCheckAdmission(t *testing.T) {
	tests := []struct {
		name     string
		timeline *models.Timeline
		wantKind utils.ErrorKind
		wantOK   bool
	}{
		{
			name:     "missing timeline",
			timeline: nil,
			wantKind: utils.ErrNotFound,
		},
		{
			name:     "inactive timeline",
			timeline: &models.Timeline{IsActive: false, AllowParticipantPosting: true},
			wantKind: utils.ErrForbidden,
		},
		{
			name:     "posting disabled",
			timeline: &models.Timeline{IsActive: true, AllowParticipantPosting: false},
			wantKind: utils.ErrForbidden,
		},
		{
			name:     "active and open",
			timeline: &models.Timeline{IsActive: true, AllowParticipantPosting: true},
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAdmission(tt.timeline)
			if tt.wantOK {
				if err != nil {
					t.Fatalf("CheckAdmission = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("CheckAdmission = nil, want kind %s", tt.wantKind)
			}
			if err.Kind != tt.wantKind {
				t.Fatalf("CheckAdmission kind = %s, want %s", err.Kind, tt.wantKind)
			}
		})
	}
}

// The missing-timeline check runs before the activity check, so an
// inactive flag on a timeline that does not exist is never reported
// as forbidden.
func TestCheckAdmissionOrdering(t *testing.T) {
	err := CheckAdmission(nil)
	if err == nil || err.Kind != utils.ErrNotFound {
		t.Fatalf("nil timeline should report not_found first, got %v", err)
	}
}

func TestAutoApprove(t *testing.T) {
	const owner, participant = uint(1), uint(2)

	tests := []struct {
		name            string
		requireApproval bool
		authorID        uint
		want            bool
	}{
		{"approval off, participant", false, participant, true},
		{"approval off, owner", false, owner, true},
		{"approval on, participant", true, participant, false},
		{"approval on, owner bypasses queue", true, owner, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AutoApprove(tt.requireApproval, tt.authorID, owner); got != tt.want {
				t.Fatalf("AutoApprove(%v, %d, %d) = %v, want %v",
					tt.requireApproval, tt.authorID, owner, got, tt.want)
			}
		})
	}
}
