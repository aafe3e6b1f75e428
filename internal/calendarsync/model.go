package calendarsync

import "time"

// ============================
// 🔷 ProviderEventMapping links one local event to its remote twin.
type ProviderEventMapping struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	EventID  uint   `gorm:"not null;uniqueIndex:idx_mapping_event_provider" json:"event_id"`
	Provider string `gorm:"type:varchar(50);not null;uniqueIndex:idx_mapping_event_provider" json:"provider"`

	ProviderEventID string `gorm:"type:varchar(255);not null;index" json:"provider_event_id"`
	ProviderEtag    string `gorm:"type:varchar(255)" json:"provider_etag"` // last applied remote version

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ProviderEventMapping) TableName() string {
	return "provider_event_mappings"
}

// ============================
// 🔷 CalendarSyncState is the durable cursor of one (calendar, provider)
// sync relationship. SyncToken advances only after a fully applied run.
type CalendarSyncState struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	CalendarID string `gorm:"type:varchar(255);not null;uniqueIndex:idx_sync_calendar_provider" json:"calendar_id"`
	Provider   string `gorm:"type:varchar(50);not null;uniqueIndex:idx_sync_calendar_provider" json:"provider"`

	SyncToken  string     `gorm:"type:text" json:"sync_token"`
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
	LastError  string     `gorm:"type:text" json:"last_error,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CalendarSyncState) TableName() string {
	return "calendar_sync_states"
}
