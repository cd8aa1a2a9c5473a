package timeline

import "github.com/kvejborg/regatta-server/cmd/models"

// Settings is the effective configuration of an event's timeline.
type Settings struct {
    IsActive                bool `json:"is_active"`
    RequireApproval         bool `json:"require_approval"`
    AllowPublicViewing      bool `json:"allow_public_viewing"`
    AllowParticipantPosting bool `json:"allow_participant_posting"`
}

// DefaultSettings is what an event without a timeline row resolves to.
// Reading it never creates a row.
func DefaultSettings() Settings {
    return Settings{
        IsActive:                false,
        RequireApproval:         true,
        AllowPublicViewing:      false,
        AllowParticipantPosting: true,
    }
}

// SettingsPatch is a partial settings update. A nil field counts as omitted.
type SettingsPatch struct {
    IsActive                *bool `json:"is_active"`
    RequireApproval         *bool `json:"require_approval"`
    AllowPublicViewing      *bool `json:"allow_public_viewing"`
    AllowParticipantPosting *bool `json:"allow_participant_posting"`
}

// MergeSettings applies a patch on top of base. Callers pass
// DefaultSettings() as base, so a field omitted from an update resets to its
// default rather than keeping the previously stored value.
func MergeSettings(base Settings, patch SettingsPatch) Settings {
    merged := base
    if patch.IsActive != nil {
        merged.IsActive = *patch.IsActive
    }
    if patch.RequireApproval != nil {
        merged.RequireApproval = *patch.RequireApproval
    }
    if patch.AllowPublicViewing != nil {
        merged.AllowPublicViewing = *patch.AllowPublicViewing
    }
    if patch.AllowParticipantPosting != nil {
        merged.AllowParticipantPosting = *patch.AllowParticipantPosting
    }
    return merged
}

// SettingsFromModel resolves the effective settings for a timeline row that
// may be absent.
func SettingsFromModel(t *models.Timeline) Settings {
    if t == nil {
        return DefaultSettings()
    }
    return Settings{
        IsActive:                t.IsActive,
        RequireApproval:         t.RequireApproval,
        AllowPublicViewing:      t.AllowPublicViewing,
        AllowParticipantPosting: t.AllowParticipantPosting,
    }
}
