package models

import (
	"gorm.io/gorm"
)

// User 是本地身分提供者使用的帳號，正式環境由 Cognito 管理
type User struct {
	gorm.Model                 // 內嵌 gorm.Model，提供 ID、CreatedAt、UpdatedAt 和 DeletedAt 字段
	Username            string `gorm:"uniqueIndex;not null" json:"username"` // 用戶名，必須唯一
	Password            string `gorm:"not null" json:"-"`                    // bcrypt 雜湊，json 序列化時會被忽略
	NewPasswordRequired bool   `gorm:"not null;default:false" json:"-"`      // 下次登入必須更換密碼
}
