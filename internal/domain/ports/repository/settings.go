package repository

import "context"

// Settings keys read by the engine.
const (
	SettingLabelMode      = "approve_flow_label_mode" // "platform" | "name"
	SettingPlatformLabel  = "platform_label"          // legacy boolean fallback
	SettingFeaturesPrefix = "features:"               // features:<platform>
)

// PlatformFeatures are the per-platform capability flags surfaced on a lease
// view: which auxiliary actions are enabled for its platform.
type PlatformFeatures struct {
	Refresh  bool `json:"refresh"`
	TimeCode bool `json:"time_code"`
	MailCode bool `json:"mail_code"`
	Invite   bool `json:"invite"`
}

// SettingsRepository reads configuration written by the administrative
// collaborator.
type SettingsRepository interface {
	// GetString returns the raw setting value or domain.ErrNotFound.
	GetString(ctx context.Context, key string) (string, error)
	// GetBool returns a boolean setting; absent keys read as false.
	GetBool(ctx context.Context, key string) (bool, error)
	// PlatformFeatures returns the capability flags for a platform. Platforms
	// without explicit configuration get all flags enabled.
	PlatformFeatures(ctx context.Context, platform string) (PlatformFeatures, error)
}
