package model

type UserRole string

const (
	Admin  UserRole = "admin"
	Author UserRole = "author"
)

// swagger:model User
type User struct {
	BaseModel
	Name     string   `gorm:"size:100;not null" json:"name"`
	Email    string   `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password string   `gorm:"size:255;not null" json:"-"`
	Role     UserRole `gorm:"size:20;default:'author'" json:"role"`
}

func (User) TableName() string {
	return "users"
}
