package model

import "fmt"

// Patient is a person whose wellness is tracked. UserID optionally links the
// patient to the account that owns the profile.
// @Description Patient information
type Patient struct {
	ID        uint          `gorm:"column:P_ID;primaryKey;autoIncrement" json:"patientId" example:"1"`
	UserID    *uint         `gorm:"column:U_ID;index" json:"userId" example:"3"`
	Name      string        `gorm:"column:P_Name;type:varchar(200);not null" json:"name" example:"Alice Smith"`
	StudentID *string       `gorm:"column:P_StudentId;type:varchar(50)" json:"studentId" example:"S1234567"`
	Age       *int          `gorm:"column:P_Age" json:"age" example:"19"`
	DOB       *string       `gorm:"column:P_DOB;type:varchar(20)" json:"dob" example:"2006-04-01"`
	Sex       *string       `gorm:"column:P_Sex;type:varchar(20)" json:"sex" example:"F"`
	Ethnicity *string       `gorm:"column:P_Ethnicity;type:varchar(100)" json:"ethnicity"`
	Phone     *string       `gorm:"column:P_Phone;type:varchar(30)" json:"phone" example:"555-0100"`
	BloodType *string       `gorm:"column:P_BloodType;type:varchar(5)" json:"bloodType" example:"O+"`
	Status    PatientStatus `gorm:"column:P_Status;type:varchar(10);not null" json:"status" example:"Student"`
}

func (Patient) TableName() string { return "PATIENT" }

// PatientCode formats a patient id for display, e.g. 7 -> "P007".
func PatientCode(id uint) string {
	return fmt.Sprintf("P%03d", id)
}
