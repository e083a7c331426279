package model

import "time"

// 账号角色
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account 管理端账号表 — 对应 accounts
type Account struct {
	ID           int64      `gorm:"primaryKey;autoIncrement"                  json:"id"`
	Username     string     `gorm:"type:varchar(64);not null;uniqueIndex"     json:"username"`
	PasswordHash string     `gorm:"type:varchar(255);not null"                json:"-"`
	Name         string     `gorm:"type:varchar(100);not null;default:''"     json:"name"`
	Role         string     `gorm:"type:varchar(20);not null;default:'user'"  json:"role"` // user | admin
	LastSignedIn *time.Time `json:"last_signed_in,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Account) TableName() string { return "accounts" }
