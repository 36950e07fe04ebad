package endpoint

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jagwell/jagwell/model"
	"github.com/jagwell/jagwell/util"
	"gorm.io/gorm"
)

// StudentWellnessRequest is the self-logged observation body. Keys follow the column names.
type StudentWellnessRequest struct {
	HeartRate       *int     `json:"Heart_Rate" example:"72"`
	Temperature     *float64 `json:"Temperature" example:"36.6"`
	SleepHours      *float64 `json:"Sleep_Hours" example:"7.5"`
	StudyHours      *float64 `json:"Study_Hours" example:"3"`
	ExerciseMinutes *int     `json:"Exercise_Minutes" example:"30"`
	Mood            *string  `json:"Mood" example:"ok"`
	Complaint       *string  `json:"Complaint"`
}

type CreateWellnessRequest struct {
	PatientID       uint     `json:"patientId" binding:"required" example:"1"`
	Date            *string  `json:"date" example:"2025-03-01T10:00:00Z"`
	HeartRate       *int     `json:"heartRate"`
	Temperature     *float64 `json:"temperature"`
	Pulse           *int     `json:"pulse"`
	SleepHours      *float64 `json:"sleepHours"`
	StudyHours      *float64 `json:"studyHours"`
	ExerciseMinutes *int     `json:"exerciseMinutes"`
	Mood            *string  `json:"mood"`
	Complaint       *string  `json:"complaint"`
	FollowUpDate    *string  `json:"followUpDate"`
	ReferralTo      *string  `json:"referralTo"`
	ProgramCode     *string  `json:"programCode"`
	Comments        *string  `json:"comments"`
}

// UpdateWellnessRequest is a partial update of a record's observations.
// The patient and recorder cannot be changed.
type UpdateWellnessRequest struct {
	Date            model.Optional[string]  `json:"date" swaggertype:"string"`
	SleepHours      model.Optional[float64] `json:"sleepHours" swaggertype:"number"`
	StudyHours      model.Optional[float64] `json:"studyHours" swaggertype:"number"`
	ExerciseMinutes model.Optional[int]     `json:"exerciseMinutes" swaggertype:"integer"`
	Mood            model.Optional[string]  `json:"mood" swaggertype:"string"`
	HeartRate       model.Optional[int]     `json:"heartRate" swaggertype:"integer"`
	Temperature     model.Optional[float64] `json:"temperature" swaggertype:"number"`
	Pulse           model.Optional[int]     `json:"pulse" swaggertype:"integer"`
	Complaint       model.Optional[string]  `json:"complaint" swaggertype:"string"`
	FollowUpDate    model.Optional[string]  `json:"followUpDate" swaggertype:"string"`
	ReferralTo      model.Optional[string]  `json:"referralTo" swaggertype:"string"`
	ProgramCode     model.Optional[string]  `json:"programCode" swaggertype:"string"`
	Comments        model.Optional[string]  `json:"comments" swaggertype:"string"`
}

// LogStudentWellness godoc
// @Summary      Log own wellness data
// @Description  Records an observation for the calling student's patient profile, creating the profile on first use.
// @Tags         Student
// @Accept       json
// @Produce      json
// @Param        request body StudentWellnessRequest true "Observation"
// @Success      200 {object} util.APIResponse{data=object} "Wellness data logged"
// @Failure      403 {object} util.APIResponse "Only students can log wellness data"
// @Router       /wellness [post]
func LogStudentWellness(c *gin.Context) {
	ident, ok := identityOrRespond(c)
	if !ok {
		return
	}
	var req StudentWellnessRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	now := time.Now().UTC()
	record := model.WellnessRecord{
		UserID:          ident.ID,
		RecordDate:      &now,
		HeartRate:       req.HeartRate,
		Temperature:     req.Temperature,
		SleepHours:      req.SleepHours,
		StudyHours:      req.StudyHours,
		ExerciseMinutes: req.ExerciseMinutes,
		Mood:            req.Mood,
		Complaint:       req.Complaint,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		patient, err := patientForUser(tx, ident.ID)
		if err != nil {
			return err
		}
		record.PatientID = patient.ID
		return tx.Create(&record).Error
	})
	if err != nil {
		util.CallError(c, util.APIErrorParams{Msg: "Failed to log wellness data", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Wellness data logged",
		Data: map[string]interface{}{"recordId": record.ID, "patientId": record.PatientID},
	})
}

// patientForUser returns the patient linked to userID, creating one when the
// user has none yet. A new profile takes P_ID = U_ID when that id is free.
func patientForUser(tx *gorm.DB, userID uint) (model.Patient, error) {
	var patient model.Patient
	err := tx.Where("U_ID = ?", userID).Order("P_ID").First(&patient).Error
	if err == nil {
		return patient, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return patient, err
	}

	user, err := findUser(tx, userID)
	if err != nil {
		return patient, err
	}

	uid := userID
	patient = model.Patient{
		UserID: &uid,
		Name:   user.DisplayName(),
		Status: model.StatusStudent,
	}
	var clash int64
	if err := tx.Model(&model.Patient{}).Where("P_ID = ?", userID).Count(&clash).Error; err != nil {
		return patient, err
	}
	if clash == 0 {
		patient.ID = userID
	}
	if err := tx.Create(&patient).Error; err != nil {
		return patient, fmt.Errorf("create patient profile: %w", err)
	}
	return patient, nil
}

// CreateWellnessRecord godoc
// @Summary      Log wellness record for a patient
// @Tags         Doctor
// @Accept       json
// @Produce      json
// @Param        request body CreateWellnessRequest true "Record"
// @Success      200 {object} util.APIResponse{data=object} "Wellness record logged"
// @Failure      400 {object} util.APIResponse "Patient not found or invalid field"
// @Router       /doctor/wellness [post]
func CreateWellnessRecord(c *gin.Context) {
	ident, ok := identityOrRespond(c)
	if !ok {
		return
	}
	var req CreateWellnessRequest
	if !bindJSONOrRespond(c, &req, "Patient ID is required") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	if _, err := findPatient(db, req.PatientID); err != nil {
		if errors.Is(err, util.ErrNotFound) {
			err = util.Validationf("patient %d not found", req.PatientID)
		}
		util.CallError(c, util.APIErrorParams{Msg: "Patient not found", Err: err})
		return
	}

	recordDate := time.Now().UTC()
	if req.Date != nil && *req.Date != "" {
		t, err := parseDate(*req.Date)
		if err != nil {
			util.CallError(c, util.APIErrorParams{Msg: "Invalid date", Err: err})
			return
		}
		recordDate = t
	}

	record := model.WellnessRecord{
		PatientID:       req.PatientID,
		UserID:          ident.ID,
		RecordDate:      &recordDate,
		SleepHours:      req.SleepHours,
		StudyHours:      req.StudyHours,
		ExerciseMinutes: req.ExerciseMinutes,
		Mood:            req.Mood,
		HeartRate:       req.HeartRate,
		Temperature:     req.Temperature,
		Pulse:           req.Pulse,
		Complaint:       req.Complaint,
		FollowUpDate:    req.FollowUpDate,
		ReferralTo:      req.ReferralTo,
		ProgramCode:     req.ProgramCode,
		Comments:        req.Comments,
	}
	if err := db.Create(&record).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to log wellness record", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Wellness record logged successfully",
		Data: map[string]interface{}{"recordId": record.ID},
	})
}

// UpdateWellnessRecord godoc
// @Summary      Update wellness record
// @Description  Partial update. Only keys present in the body are written; null clears a field.
// @Tags         Doctor,Admin
// @Accept       json
// @Produce      json
// @Param        id path int true "Record ID"
// @Param        request body UpdateWellnessRequest true "Fields to change"
// @Success      200 {object} util.APIResponse "Wellness record updated"
// @Failure      400 {object} util.APIResponse "No fields or invalid field"
// @Failure      404 {object} util.APIResponse "Wellness record not found"
// @Router       /doctor/wellness/{id} [put]
// @Router       /admin/wellness/{id} [put]
func UpdateWellnessRecord(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "record")
	if !ok {
		return
	}
	var req UpdateWellnessRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	fields, err := wellnessUpdateFields(req)
	if err != nil {
		util.CallError(c, util.APIErrorParams{Msg: "Invalid wellness update", Err: err})
		return
	}
	if !execPartialUpdate(c, db, "WELLNESS_RECORD", "Record_ID", id, fields, "wellness record") {
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Wellness record updated successfully"})
}

func wellnessUpdateFields(req UpdateWellnessRequest) ([]util.Field, error) {
	var p partialFields
	optionalDate(&p, "Record_Date", req.Date)
	optionalField(&p, "Sleep_Hours", req.SleepHours)
	optionalField(&p, "Study_Hours", req.StudyHours)
	optionalField(&p, "Exercise_Minutes", req.ExerciseMinutes)
	optionalField(&p, "Mood", req.Mood)
	optionalField(&p, "Heart_Rate", req.HeartRate)
	optionalField(&p, "Temperature", req.Temperature)
	optionalField(&p, "Pulse", req.Pulse)
	optionalField(&p, "Complaint", req.Complaint)
	optionalField(&p, "Follow_Up_Date", req.FollowUpDate)
	optionalField(&p, "Referral_To", req.ReferralTo)
	optionalField(&p, "Program_Code", req.ProgramCode)
	optionalField(&p, "Comments", req.Comments)
	return p.result()
}
