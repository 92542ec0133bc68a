package models

// AuditLog records sensitive ledger and account operations.
type AuditLog struct {
	Base
	Username     string `gorm:"not null;index" json:"username"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   int64  `json:"resource_id"`
	IPAddress    string `json:"ip_address"`
	Changes      string `json:"changes,omitempty"`
}

// KVEntry is one row of the SQL-backed key-value store.
type KVEntry struct {
	Key       string `gorm:"column:store_key;primaryKey;size:255"`
	Value     string `gorm:"column:store_value;type:text;not null"`
	UpdatedAt int64  `gorm:"autoUpdateTime:milli"`
}

// TableName pins the table name shared with the SQL migrations.
func (KVEntry) TableName() string {
	return "kv_entries"
}
