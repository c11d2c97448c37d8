package models

import "time"

// Audit action constants for admin panel operations.
const (
	AuditActionAdminLogin     = "ADMIN_LOGIN"
	AuditActionAdminCreate    = "ADMIN_CREATE"
	AuditActionAdminDelete    = "ADMIN_DELETE"
	AuditActionRoundUpdate    = "ROUND_UPDATE"
	AuditActionBulkSchedule   = "BULK_SCHEDULE"
	AuditActionGroupMove      = "GROUP_MOVE"
	AuditActionShortlist      = "SHORTLIST_TOGGLE"
	AuditActionSlotAssign     = "SLOT_ASSIGN"
	AuditActionSettingsChange = "SETTINGS_CHANGE"
	AuditActionEmailSend      = "EMAIL_SEND"
)

// AdminActionLog is one audit trail entry for an admin panel operation.
type AdminActionLog struct {
	ID         string    `db:"id" json:"id"`
	AdminID    *string   `db:"admin_id" json:"admin_id,omitempty"`
	AdminEmail *string   `db:"admin_email" json:"admin_email,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	Endpoint   string    `db:"endpoint" json:"endpoint"`
	Method     string    `db:"method" json:"method"`
	Payload    []byte    `db:"payload" json:"payload,omitempty"`
	Status     string    `db:"status" json:"status"`
	StatusCode int       `db:"status_code" json:"status_code"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
