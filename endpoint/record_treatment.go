package endpoint

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jagwell/jagwell/model"
	"github.com/jagwell/jagwell/util"
	"gorm.io/gorm"
)

type CreateRecordTreatmentRequest struct {
	RecordID    uint    `json:"recordId" binding:"required" example:"10"`
	TreatmentID uint    `json:"treatmentId" binding:"required" example:"2"`
	Details     *string `json:"details" example:"10 minutes, twice daily"`
}

type UpdateRecordTreatmentRequest struct {
	Details model.Optional[string] `json:"details" swaggertype:"string"`
}

// ListRecordTreatments godoc
// @Summary      Treatments applied during a visit
// @Tags         Doctor
// @Produce      json
// @Param        recordId query int true "Wellness record ID"
// @Success      200 {object} util.APIResponse{data=[]AppliedTreatment}
// @Failure      400 {object} util.APIResponse "Valid record ID is required"
// @Failure      404 {object} util.APIResponse "Wellness record not found"
// @Router       /doctor/record-treatments [get]
func ListRecordTreatments(c *gin.Context) {
	recordID, err := strconv.ParseUint(c.Query("recordId"), 10, 64)
	if err != nil || recordID == 0 {
		util.CallUserError(c, util.APIErrorParams{Msg: "Valid record ID is required", Err: util.Validationf("invalid recordId %q", c.Query("recordId"))})
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	record, err := findRecord(db, uint(recordID))
	if err != nil {
		util.CallError(c, util.APIErrorParams{Msg: "Wellness record not found", Err: err})
		return
	}
	treatments, err := appliedTreatments(db, []model.WellnessRecord{record})
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve treatments", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Treatments retrieved", Data: treatments})
}

func findRecord(db *gorm.DB, id uint) (model.WellnessRecord, error) {
	var r model.WellnessRecord
	err := db.First(&r, "Record_ID = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r, fmt.Errorf("wellness record %d: %w", id, util.ErrNotFound)
	}
	return r, err
}

// CreateRecordTreatment godoc
// @Summary      Apply treatment to a record
// @Tags         Doctor
// @Accept       json
// @Produce      json
// @Param        request body CreateRecordTreatmentRequest true "Link"
// @Success      200 {object} util.APIResponse{data=object} "Treatment applied"
// @Failure      400 {object} util.APIResponse "Record or treatment not found"
// @Router       /doctor/record-treatments [post]
func CreateRecordTreatment(c *gin.Context) {
	var req CreateRecordTreatmentRequest
	if !bindJSONOrRespond(c, &req, "Record ID and Treatment ID are required") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	if err := ensureRecordAndTreatment(db, req.RecordID, req.TreatmentID); err != nil {
		util.CallError(c, util.APIErrorParams{Msg: "Record or treatment not found", Err: err})
		return
	}

	link := model.RecordTreatment{RecordID: req.RecordID, TreatmentID: req.TreatmentID, Details: req.Details}
	if err := db.Create(&link).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to apply treatment", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Treatment applied to record successfully",
		Data: map[string]interface{}{"recordTreatmentId": link.ID},
	})
}

func ensureRecordAndTreatment(db *gorm.DB, recordID, treatmentID uint) error {
	if _, err := findRecord(db, recordID); err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return util.Validationf("wellness record %d not found", recordID)
		}
		return err
	}
	if _, err := findTreatment(db, treatmentID); err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return util.Validationf("treatment %d not found", treatmentID)
		}
		return err
	}
	return nil
}

// UpdateRecordTreatment godoc
// @Summary      Update applied treatment details
// @Tags         Doctor
// @Accept       json
// @Produce      json
// @Param        id path int true "Record-treatment ID"
// @Param        request body UpdateRecordTreatmentRequest true "Fields to change"
// @Success      200 {object} util.APIResponse "Treatment record updated"
// @Failure      400 {object} util.APIResponse "No fields provided"
// @Failure      404 {object} util.APIResponse "Record-treatment link not found"
// @Router       /doctor/record-treatments/{id} [put]
func UpdateRecordTreatment(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "record-treatment")
	if !ok {
		return
	}
	var req UpdateRecordTreatmentRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var p partialFields
	optionalField(&p, "Treatment_Details", req.Details)
	fields, err := p.result()
	if err != nil {
		util.CallError(c, util.APIErrorParams{Msg: "Invalid treatment record update", Err: err})
		return
	}
	if !execPartialUpdate(c, db, "RECORD_TREATMENT", "RT_ID", id, fields, "record-treatment link") {
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Treatment record updated successfully"})
}

// DeleteRecordTreatment godoc
// @Summary      Remove applied treatment
// @Tags         Doctor
// @Produce      json
// @Param        id path int true "Record-treatment ID"
// @Success      200 {object} util.APIResponse "Treatment removed from record"
// @Failure      404 {object} util.APIResponse "Record-treatment link not found"
// @Router       /doctor/record-treatments/{id} [delete]
func DeleteRecordTreatment(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "record-treatment")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	res := db.Where("RT_ID = ?", id).Delete(&model.RecordTreatment{})
	if res.Error != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to remove treatment", Err: res.Error})
		return
	}
	if res.RowsAffected == 0 {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Record-treatment link not found", Err: util.ErrNotFound})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Treatment removed from record"})
}
