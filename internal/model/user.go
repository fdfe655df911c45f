package model

import "time"

type UserRole string

const (
	Student           UserRole = "student"
	TeachingAssistant UserRole = "teaching_assistant"
	Instructor        UserRole = "instructor"
	Admin             UserRole = "administrator"
	SuperAdmin        UserRole = "super_administrator"
)

var roleRank = map[UserRole]int{
	Student:           1,
	TeachingAssistant: 2,
	Instructor:        3,
	Admin:             4,
	SuperAdmin:        5,
}

// Rank 角色等级，未知角色为 0
func (r UserRole) Rank() int {
	return roleRank[r]
}

// AtLeast 是否拥有不低于 min 的权限
func (r UserRole) AtLeast(min UserRole) bool {
	return r.Rank() > 0 && r.Rank() >= min.Rank()
}

func (r UserRole) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// swagger:model User
type User struct {
	BaseModel
	Name     string   `gorm:"size:100;not null" json:"name"`
	Email    string   `gorm:"size:100;unique;not null" json:"email"`
	Password string   `gorm:"size:100;not null" json:"-"`
	Role     UserRole `gorm:"size:32;not null" json:"role"`
	// 助教所属的教师；教师本人为空
	InstructorID *uint      `gorm:"index" json:"instructorId,omitempty"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// EffectiveInstructorID 助教以其教师身份创建问卷，其余角色使用本人ID
func (u *User) EffectiveInstructorID() uint {
	if u.Role == TeachingAssistant && u.InstructorID != nil {
		return *u.InstructorID
	}
	return u.ID
}
