package endpoint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jagwell/jagwell/middleware"
	"github.com/jagwell/jagwell/model"
	"github.com/jagwell/jagwell/util"
	cache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

const treatmentCachePrefix = "treatments:"

type CreateTreatmentRequest struct {
	Description string `json:"description" binding:"required" example:"Breathing exercises"`
}

type UpdateTreatmentRequest struct {
	Description model.Optional[string] `json:"description" swaggertype:"string"`
}

type treatmentListResponse struct {
	Treatments []model.Treatment `json:"treatments"`
}

// ListTreatments godoc
// @Summary      Treatment catalog
// @Tags         Doctor
// @Produce      json
// @Param        search query string false "Matches the description"
// @Success      200 {object} util.APIResponse{data=treatmentListResponse}
// @Router       /doctor/treatments [get]
func ListTreatments(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	search := strings.TrimSpace(c.Query("search"))
	store := middleware.GetCache(c)
	key := treatmentCachePrefix + strings.ToLower(search)

	if store != nil {
		if cached, found := store.Get(key); found {
			if treatments, ok := cached.([]model.Treatment); ok {
				util.CallSuccessOK(c, util.APISuccessParams{Msg: "Treatments retrieved", Data: treatmentListResponse{Treatments: treatments}})
				return
			}
		}
	}

	query := db.Model(&model.Treatment{})
	if search != "" {
		query = query.Where("T_Description LIKE ?", likePattern(search))
	}
	treatments := []model.Treatment{}
	if err := query.Order("T_Description").Find(&treatments).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve treatments", Err: err})
		return
	}
	if store != nil {
		store.Set(key, treatments, cache.DefaultExpiration)
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Treatments retrieved", Data: treatmentListResponse{Treatments: treatments}})
}

// invalidateTreatmentCache drops every cached catalog listing.
func invalidateTreatmentCache(c *gin.Context) {
	store := middleware.GetCache(c)
	if store == nil {
		return
	}
	for key := range store.Items() {
		if strings.HasPrefix(key, treatmentCachePrefix) {
			store.Delete(key)
		}
	}
}

// CreateTreatment godoc
// @Summary      Add treatment
// @Tags         Doctor
// @Accept       json
// @Produce      json
// @Param        request body CreateTreatmentRequest true "Treatment"
// @Success      200 {object} util.APIResponse{data=object} "Treatment added"
// @Failure      400 {object} util.APIResponse "Treatment description is required"
// @Router       /doctor/treatments [post]
func CreateTreatment(c *gin.Context) {
	var req CreateTreatmentRequest
	if !bindJSONOrRespond(c, &req, "Treatment description is required") {
		return
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		util.CallUserError(c, util.APIErrorParams{Msg: "Treatment description is required", Err: util.Validationf("description cannot be empty")})
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	treatment := model.Treatment{Description: description}
	if err := db.Create(&treatment).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to add treatment", Err: err})
		return
	}
	invalidateTreatmentCache(c)

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Treatment added successfully",
		Data: map[string]interface{}{"treatmentId": treatment.ID},
	})
}

// UpdateTreatment godoc
// @Summary      Update treatment
// @Tags         Doctor,Admin
// @Accept       json
// @Produce      json
// @Param        id path int true "Treatment ID"
// @Param        request body UpdateTreatmentRequest true "Fields to change"
// @Success      200 {object} util.APIResponse "Treatment updated"
// @Failure      400 {object} util.APIResponse "No fields provided"
// @Failure      404 {object} util.APIResponse "Treatment not found"
// @Router       /doctor/treatments/{id} [put]
// @Router       /admin/treatments/{id} [put]
func UpdateTreatment(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "treatment")
	if !ok {
		return
	}
	var req UpdateTreatmentRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var p partialFields
	requiredText(&p, "T_Description", "description", req.Description)
	fields, err := p.result()
	if err != nil {
		util.CallError(c, util.APIErrorParams{Msg: "Invalid treatment update", Err: err})
		return
	}
	if !execPartialUpdate(c, db, "TREATMENT", "T_ID", id, fields, "treatment") {
		return
	}
	invalidateTreatmentCache(c)
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Treatment updated successfully"})
}

// DeleteTreatment godoc
// @Summary      Delete treatment
// @Description  Fails while any record still references the treatment.
// @Tags         Admin
// @Produce      json
// @Param        id path int true "Treatment ID"
// @Success      200 {object} util.APIResponse "Treatment deleted"
// @Failure      400 {object} util.APIResponse "Treatment is in use"
// @Failure      404 {object} util.APIResponse "Treatment not found"
// @Router       /admin/treatments/{id} [delete]
func DeleteTreatment(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "treatment")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	if err := DeleteUnreferencedTreatment(db, id); err != nil {
		util.CallError(c, util.APIErrorParams{Msg: "Failed to delete treatment", Err: err})
		return
	}
	invalidateTreatmentCache(c)
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Treatment deleted successfully"})
}

// DeleteUnreferencedTreatment deletes a catalog entry that no record uses.
func DeleteUnreferencedTreatment(db *gorm.DB, id uint) error {
	var refs int64
	if err := db.Model(&model.RecordTreatment{}).Where("T_ID = ?", id).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return fmt.Errorf("treatment %d is applied in %d record(s): %w", id, refs, util.ErrReferenced)
	}
	res := db.Where("T_ID = ?", id).Delete(&model.Treatment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("treatment %d: %w", id, util.ErrNotFound)
	}
	return nil
}

func findTreatment(db *gorm.DB, id uint) (model.Treatment, error) {
	var t model.Treatment
	err := db.First(&t, "T_ID = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return t, fmt.Errorf("treatment %d: %w", id, util.ErrNotFound)
	}
	return t, err
}
