package timeline

import (
	"testing"

	"github.com/kvejborg/regatta-server/cmd/models"
)

func TestDefaultSettings(t *testing.T) {
    got := DefaultSettings()
    want := Settings{
        IsActive:                false,
        RequireApproval:         true,
        AllowPublicViewing:      false,
        AllowParticipantPosting: true,
    }
    if got != want {
        t.Fatalf("DefaultSettings() = %+v, want %+v", got, want)
    }
}

func TestSettingsFromModelMissingRow(t *testing.T) {
    if got := SettingsFromModel(nil); got != DefaultSettings() {
        t.Fatalf("missing timeline row should resolve to the defaults, got %+v", got)
    }
}

func TestSettingsFromModelRow(t *testing.T) {
    tl := &models.Timeline{
        IsActive:                true,
        RequireApproval:         false,
        AllowPublicViewing:      true,
        AllowParticipantPosting: false,
    }
    got := SettingsFromModel(tl)
    want := Settings{
        IsActive:                true,
        RequireApproval:         false,
        AllowPublicViewing:      true,
        AllowParticipantPosting: false,
    }
    if got != want {
        t.Fatalf("SettingsFromModel = %+v, want %+v", got, want)
    }
}

func boolPtr(b bool) *bool { return &b }

func TestMergeSettings(t *testing.T) {
    tests := []struct {
        name  string
        patch SettingsPatch
        want  Settings
    }{
        {
            name:  "empty patch keeps defaults",
            patch: SettingsPatch{},
            want:  DefaultSettings(),
        },
        {
            name:  "single field set",
            patch: SettingsPatch{IsActive: boolPtr(true)},
            want: Settings{
                IsActive:                true,
                RequireApproval:         true,
                AllowPublicViewing:      false,
                AllowParticipantPosting: true,
            },
        },
        {
            name: "all fields set",
            patch: SettingsPatch{
                IsActive:                boolPtr(true),
                RequireApproval:         boolPtr(false),
                AllowPublicViewing:      boolPtr(true),
                AllowParticipantPosting: boolPtr(false),
            },
            want: Settings{
                IsActive:                true,
                RequireApproval:         false,
                AllowPublicViewing:      true,
                AllowParticipantPosting: false,
            },
        },
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            if got := MergeSettings(DefaultSettings(), tt.patch); got != tt.want {
                t.Fatalf("MergeSettings = %+v, want %+v", got, tt.want)
            }
        })
    }
}

// An update that omits a field resets it to the default, it does not keep
// the previously stored value.
func TestMergeSettingsOmittedFieldResets(t *testing.T) {
    // Stored state differs from the defaults in every field.
    stored := Settings{
        IsActive:                true,
        RequireApproval:         false,
        AllowPublicViewing:      true,
        AllowParticipantPosting: false,
    }
    _ = stored // the merge deliberately ignores it

    patch := SettingsPatch{AllowPublicViewing: boolPtr(true)}
    got := MergeSettings(DefaultSettings(), patch)

    if !got.RequireApproval {
        t.Errorf("omitted require_approval should reset to default true")
    }
    if got.IsActive {
        t.Errorf("omitted is_active should reset to default false")
    }
    if !got.AllowParticipantPosting {
        t.Errorf("omitted allow_participant_posting should reset to default true")
    }
    if !got.AllowPublicViewing {
        t.Errorf("provided allow_public_viewing should be applied")
    }
}
