package model

// Role rol del empleado.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// Profile perfil de empleado. El alta la hace un administrador.
type Profile struct {
	BaseModel
	PublicID     int64  `gorm:"uniqueIndex;not null" json:"public_id"`
	Email        string `gorm:"uniqueIndex;type:varchar(255);not null" json:"email"`
	FullName     string `gorm:"type:varchar(128);not null" json:"full_name"`
	PasswordHash []byte `gorm:"type:bytea;not null" json:"-"`
	Role         Role   `gorm:"type:varchar(16);not null;default:'employee';index:idx_profiles_role" json:"role"`
}

func (Profile) TableName() string {
	return "profiles"
}
