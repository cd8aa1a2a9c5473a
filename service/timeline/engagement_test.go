package timeline

import (
	"errors"
	"fmt"
	"testing"

	"github.com/kvejborg/regatta-server/cmd/utils"
	"gorm.io/gorm"
)

func TestLikeOutcome(t *testing.T) {
	if out := likeOutcome(nil); out != nil {
		t.Fatalf("successful insert should have no outcome, got %v", out)
	}

	if out := likeOutcome(gorm.ErrDuplicatedKey); out == nil || out.Kind != utils.ErrConflict {
		t.Fatalf("duplicate like should be a conflict, got %v", out)
	}

	wrapped := fmt.Errorf("creating like: %w", gorm.ErrDuplicatedKey)
	if out := likeOutcome(wrapped); out == nil || out.Kind != utils.ErrConflict {
		t.Fatalf("wrapped duplicate should be a conflict, got %v", out)
	}

	if out := likeOutcome(errors.New("connection reset")); out == nil || out.Kind != utils.ErrInternal {
		t.Fatalf("store failure should stay internal, not conflict, got %v", out)
	}
}

func TestUnlikeOutcome(t *testing.T) {
	if out := unlikeOutcome(1, nil); out != nil {
		t.Fatalf("successful delete should have no outcome, got %v", out)
	}

	if out := unlikeOutcome(0, nil); out == nil || out.Kind != utils.ErrNotFound {
		t.Fatalf("removing an absent like should be not_found, got %v", out)
	}

	if out := unlikeOutcome(0, errors.New("connection reset")); out == nil || out.Kind != utils.ErrInternal {
		t.Fatalf("store failure should be internal, got %v", out)
	}
}
