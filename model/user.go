package model

// SystemUserID is the sentinel owner of wellness records whose recorder was deleted.
const SystemUserID uint = 0

// User is an account that can sign in.
// @Description User account
type User struct {
	ID        uint    `gorm:"column:U_ID;primaryKey;autoIncrement" json:"id" example:"1"`
	Username  string  `gorm:"column:U_Username;type:varchar(100);uniqueIndex;not null" json:"username" example:"alice"`
	Role      Role    `gorm:"column:U_Role;type:varchar(20);not null" json:"role" example:"Student"`
	Password  string  `gorm:"column:Password;type:varchar(255);not null" json:"-"`
	FirstName *string `gorm:"column:U_FirstName;type:varchar(100)" json:"firstName" example:"Alice"`
	LastName  *string `gorm:"column:U_LastName;type:varchar(100)" json:"lastName" example:"Smith"`
	Email     *string `gorm:"column:U_Email;type:varchar(191)" json:"email" example:"alice@school.edu"`
}

func (User) TableName() string { return "USER" }

// DisplayName returns "First Last" when both are set, otherwise the username.
func (u User) DisplayName() string {
	if u.FirstName != nil && u.LastName != nil && *u.FirstName != "" && *u.LastName != "" {
		return *u.FirstName + " " + *u.LastName
	}
	return u.Username
}
