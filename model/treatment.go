package model

// Treatment is a catalog entry naming a kind of intervention.
// @Description Treatment catalog entry
type Treatment struct {
	ID          uint   `gorm:"column:T_ID;primaryKey;autoIncrement" json:"T_ID" example:"1"`
	Description string `gorm:"column:T_Description;type:varchar(255);not null" json:"T_Description" example:"Breathing exercises"`
}

func (Treatment) TableName() string { return "TREATMENT" }

// RecordTreatment links a treatment to the wellness record (visit) it was applied in.
// Both references are checked by the handlers before insert.
// @Description Treatment applied during a visit
type RecordTreatment struct {
	ID          uint    `gorm:"column:RT_ID;primaryKey;autoIncrement" json:"recordTreatmentId"`
	RecordID    uint    `gorm:"column:Record_ID;not null;index" json:"recordId"`
	TreatmentID uint    `gorm:"column:T_ID;not null;index" json:"treatmentId"`
	Details     *string `gorm:"column:Treatment_Details;type:text" json:"details"`
}

func (RecordTreatment) TableName() string { return "RECORD_TREATMENT" }
