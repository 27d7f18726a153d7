package model

import "time"

// NotificationCategory categoría de la notificación.
type NotificationCategory string

const (
	NotificationCategoryClockOutReminder NotificationCategory = "clock_out_reminder"
	NotificationCategoryMissingClockOut  NotificationCategory = "missing_clockout_email"
)

// NotificationStatus estado de entrega.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
	NotificationStatusSkipped NotificationStatus = "skipped"
)

// NotificationTask registro de cada notificación programada o enviada.
// Sirve también de deduplicación en base de datos por usuario y día.
type NotificationTask struct {
	BaseModel
	UserID      int64                `gorm:"not null;index:idx_notification_tasks_user_sched,priority:1" json:"user_id"`
	Category    NotificationCategory `gorm:"type:varchar(32);not null" json:"category"`
	Status      NotificationStatus   `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	ScheduledAt time.Time            `gorm:"type:timestamptz;not null;index:idx_notification_tasks_user_sched,priority:2" json:"scheduled_at"`
	SentAt      *time.Time           `gorm:"type:timestamptz" json:"sent_at,omitempty"`
	Detail      string               `gorm:"type:text" json:"detail,omitempty"`
}

func (NotificationTask) TableName() string {
	return "notification_tasks"
}
