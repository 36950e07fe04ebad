package model

import "time"

// WellnessRecord is one timestamped observation of a patient, recorded by a user.
// UserID may be SystemUserID after the recording user was deleted, so no
// foreign key is declared on it.
// @Description Wellness record
type WellnessRecord struct {
	ID              uint       `gorm:"column:Record_ID;primaryKey;autoIncrement" json:"recordId"`
	PatientID       uint       `gorm:"column:P_ID;not null;index" json:"patientId"`
	UserID          uint       `gorm:"column:U_ID;not null;index" json:"userId"`
	RecordDate      *time.Time `gorm:"column:Record_Date" json:"recordDate"`
	SleepHours      *float64   `gorm:"column:Sleep_Hours" json:"sleepHours"`
	StudyHours      *float64   `gorm:"column:Study_Hours" json:"studyHours"`
	ExerciseMinutes *int       `gorm:"column:Exercise_Minutes" json:"exerciseMinutes"`
	Mood            *string    `gorm:"column:Mood;type:varchar(100)" json:"mood"`
	HeartRate       *int       `gorm:"column:Heart_Rate" json:"heartRate"`
	Temperature     *float64   `gorm:"column:Temperature" json:"temperature"`
	Pulse           *int       `gorm:"column:Pulse" json:"pulse"`
	Complaint       *string    `gorm:"column:Complaint;type:text" json:"complaint"`
	FollowUpDate    *string    `gorm:"column:Follow_Up_Date;type:varchar(20)" json:"followUpDate"`
	ReferralTo      *string    `gorm:"column:Referral_To;type:varchar(200)" json:"referralTo"`
	ProgramCode     *string    `gorm:"column:Program_Code;type:varchar(50)" json:"programCode"`
	Comments        *string    `gorm:"column:Comments;type:text" json:"comments"`
}

func (WellnessRecord) TableName() string { return "WELLNESS_RECORD" }
