package endpoint

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jagwell/jagwell/model"
	"github.com/jagwell/jagwell/util"
	"gorm.io/gorm"
)

// PatientSummary is one row of the doctor's patient list.
type PatientSummary struct {
	PatientID     uint                `json:"patientId"`
	ID            string              `json:"id" example:"P001"`
	Name          string              `json:"name"`
	StudentID     *string             `json:"studentId"`
	Age           *int                `json:"age"`
	Status        model.PatientStatus `json:"status"`
	LastVisitDate *time.Time          `json:"lastVisitDate"`
}

type patientListResponse struct {
	Patients   []PatientSummary `json:"patients"`
	Pagination util.Pagination  `json:"pagination"`
}

type PatientOption struct {
	PatientID uint    `json:"P_ID"`
	Name      string  `json:"P_Name"`
	StudentID *string `json:"P_StudentId"`
}

type PatientDetail struct {
	model.Patient
	ID            string     `json:"id"`
	LastVisitDate *time.Time `json:"lastVisitDate"`
}

type CreatePatientRequest struct {
	FirstName string  `json:"firstName" binding:"required" example:"Alice"`
	LastName  string  `json:"lastName" binding:"required" example:"Smith"`
	Status    string  `json:"status" binding:"required" example:"Student"`
	UserID    *uint   `json:"userId" example:"3"`
	Phone     *string `json:"phone"`
	StudentID *string `json:"studentId"`
	Age       *int    `json:"age"`
	DOB       *string `json:"dob"`
	Sex       *string `json:"sex"`
	Ethnicity *string `json:"ethnicity"`
	BloodType *string `json:"bloodType"`
}

// UpdatePatientRequest is a partial update of everything except the patient id.
type UpdatePatientRequest struct {
	StudentID model.Optional[string] `json:"studentId" swaggertype:"string"`
	Name      model.Optional[string] `json:"name" swaggertype:"string"`
	Age       model.Optional[int]    `json:"age" swaggertype:"integer"`
	DOB       model.Optional[string] `json:"dob" swaggertype:"string"`
	Sex       model.Optional[string] `json:"sex" swaggertype:"string"`
	Ethnicity model.Optional[string] `json:"ethnicity" swaggertype:"string"`
	Phone     model.Optional[string] `json:"phone" swaggertype:"string"`
	BloodType model.Optional[string] `json:"bloodType" swaggertype:"string"`
	Status    model.Optional[string] `json:"status" swaggertype:"string"`
}

var patientSortOrders = map[string]string{
	"name":   "P_Name",
	"id":     "P_ID",
	"status": "P_Status, P_Name",
}

// ListPatients godoc
// @Summary      List patients
// @Description  Paginated patients with their most recent visit
// @Tags         Doctor
// @Produce      json
// @Param        search query string false "Matches name or patient id"
// @Param        status query string false "Student|Staff|all"
// @Param        sort   query string false "name|id|status"
// @Param        page   query int false "Page number (default 1)"
// @Param        limit  query int false "Page size (default 10)"
// @Success      200 {object} util.APIResponse{data=patientListResponse}
// @Router       /doctor/patients [get]
func ListPatients(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	page := pageRequest(c)

	query := db.Model(&model.Patient{})
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		kw := likePattern(search)
		query = query.Where("P_Name LIKE ? OR P_ID LIKE ?", kw, kw)
	}
	if status := c.Query("status"); status != "" && status != "all" {
		query = query.Where("P_Status = ?", status)
	}

	query = query.Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count patients", Err: err})
		return
	}

	order, ok := patientSortOrders[c.Query("sort")]
	if !ok {
		order = patientSortOrders["name"]
	}
	var patients []model.Patient
	if err := query.Order(order).Limit(page.Limit).Offset(page.Offset()).Find(&patients).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve patients", Err: err})
		return
	}

	ids := make([]uint, len(patients))
	for i, p := range patients {
		ids[i] = p.ID
	}
	lastVisits, err := lastVisitDates(db, ids)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve visits", Err: err})
		return
	}

	summaries := make([]PatientSummary, 0, len(patients))
	for _, p := range patients {
		summaries = append(summaries, PatientSummary{
			PatientID:     p.ID,
			ID:            model.PatientCode(p.ID),
			Name:          p.Name,
			StudentID:     p.StudentID,
			Age:           p.Age,
			Status:        p.Status,
			LastVisitDate: lastVisits[p.ID],
		})
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Patients retrieved",
		Data: patientListResponse{Patients: summaries, Pagination: util.NewPagination(page, total)},
	})
}

// lastVisitDates returns the latest record date per patient id.
func lastVisitDates(db *gorm.DB, patientIDs []uint) (map[uint]*time.Time, error) {
	out := make(map[uint]*time.Time, len(patientIDs))
	if len(patientIDs) == 0 {
		return out, nil
	}
	var visits []model.WellnessRecord
	err := db.Select("P_ID", "Record_Date").
		Where("P_ID IN ? AND Record_Date IS NOT NULL", patientIDs).
		Find(&visits).Error
	if err != nil {
		return nil, err
	}
	for _, v := range visits {
		if cur, ok := out[v.PatientID]; !ok || v.RecordDate.After(*cur) {
			out[v.PatientID] = v.RecordDate
		}
	}
	return out, nil
}

// ListPatientOptions godoc
// @Summary      Patients for selection lists
// @Tags         Doctor
// @Produce      json
// @Success      200 {object} util.APIResponse{data=[]PatientOption}
// @Router       /doctor/patients/dropdown [get]
func ListPatientOptions(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	var patients []model.Patient
	if err := db.Select("P_ID", "P_Name", "P_StudentId").Order("P_Name").Find(&patients).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve patients", Err: err})
		return
	}
	options := make([]PatientOption, 0, len(patients))
	for _, p := range patients {
		options = append(options, PatientOption{PatientID: p.ID, Name: p.Name, StudentID: p.StudentID})
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patients retrieved", Data: options})
}

func findPatient(db *gorm.DB, id uint) (model.Patient, error) {
	var patient model.Patient
	err := db.First(&patient, "P_ID = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return patient, fmt.Errorf("patient %d: %w", id, util.ErrNotFound)
	}
	return patient, err
}

// GetPatient godoc
// @Summary      Get patient
// @Tags         Doctor
// @Produce      json
// @Param        id path int true "Patient ID"
// @Success      200 {object} util.APIResponse{data=PatientDetail}
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /doctor/patients/{id} [get]
func GetPatient(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "patient")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	patient, err := findPatient(db, id)
	if err != nil {
		util.CallError(c, util.APIErrorParams{Msg: "Patient not found", Err: err})
		return
	}
	visits, err := lastVisitDates(db, []uint{id})
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve visits", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Patient retrieved",
		Data: PatientDetail{Patient: patient, ID: model.PatientCode(id), LastVisitDate: visits[id]},
	})
}

// CreatePatient godoc
// @Summary      Register patient
// @Tags         Doctor
// @Accept       json
// @Produce      json
// @Param        request body CreatePatientRequest true "Patient"
// @Success      200 {object} util.APIResponse{data=object} "Patient registered"
// @Failure      400 {object} util.APIResponse "Validation error"
// @Router       /doctor/patients [post]
func CreatePatient(c *gin.Context) {
	var req CreatePatientRequest
	if !bindJSONOrRespond(c, &req, "First name, last name, and status are required") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	patient, err := buildPatient(db, req)
	if err != nil {
		util.CallError(c, util.APIErrorParams{Msg: "Invalid patient", Err: err})
		return
	}
	if err := db.Create(&patient).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to register patient", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Patient registered successfully",
		Data: map[string]interface{}{"patientId": patient.ID, "id": model.PatientCode(patient.ID)},
	})
}

func buildPatient(db *gorm.DB, req CreatePatientRequest) (model.Patient, error) {
	first, last := util.NormalizeName(req.FirstName), util.NormalizeName(req.LastName)
	if first == "" || last == "" {
		return model.Patient{}, util.Validationf("first name and last name are required")
	}
	status := model.PatientStatus(req.Status)
	if !status.Valid() {
		return model.Patient{}, util.Validationf("status must be either Student or Staff")
	}
	if req.UserID != nil {
		if _, err := findUser(db, *req.UserID); err != nil {
			if errors.Is(err, util.ErrNotFound) {
				return model.Patient{}, util.Validationf("user %d does not exist", *req.UserID)
			}
			return model.Patient{}, err
		}
	}
	return model.Patient{
		UserID:    req.UserID,
		Name:      first + " " + last,
		StudentID: req.StudentID,
		Age:       req.Age,
		DOB:       req.DOB,
		Sex:       req.Sex,
		Ethnicity: req.Ethnicity,
		Phone:     req.Phone,
		BloodType: req.BloodType,
		Status:    status,
	}, nil
}

// UpdatePatient godoc
// @Summary      Update patient
// @Description  Partial update of everything except the patient id
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id path int true "Patient ID"
// @Param        request body UpdatePatientRequest true "Fields to change"
// @Success      200 {object} util.APIResponse "Patient updated"
// @Failure      400 {object} util.APIResponse "No fields or invalid field"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /admin/patients/{id} [put]
func UpdatePatient(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "patient")
	if !ok {
		return
	}
	var req UpdatePatientRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	fields, err := patientUpdateFields(req)
	if err != nil {
		util.CallError(c, util.APIErrorParams{Msg: "Invalid patient update", Err: err})
		return
	}
	if !execPartialUpdate(c, db, "PATIENT", "P_ID", id, fields, "patient") {
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient updated successfully"})
}

func patientUpdateFields(req UpdatePatientRequest) ([]util.Field, error) {
	var p partialFields
	optionalField(&p, "P_StudentId", req.StudentID)
	requiredText(&p, "P_Name", "name", req.Name)
	optionalField(&p, "P_Age", req.Age)
	optionalField(&p, "P_DOB", req.DOB)
	optionalField(&p, "P_Sex", req.Sex)
	optionalField(&p, "P_Ethnicity", req.Ethnicity)
	optionalField(&p, "P_Phone", req.Phone)
	optionalField(&p, "P_BloodType", req.BloodType)
	if req.Status.Set {
		if req.Status.Null || !model.PatientStatus(req.Status.Val).Valid() {
			p.fail(util.Validationf("status must be Student or Staff"))
		} else {
			p.add("P_Status", req.Status.Val)
		}
	}
	return p.result()
}

// RecordView is a wellness record with the username of whoever recorded it.
type RecordView struct {
	model.WellnessRecord
	RecordedBy *string `json:"recordedBy"`
}

type patientRecordsResponse struct {
	PatientID uint         `json:"patientId"`
	Records   []RecordView `json:"records"`
}

// ListPatientRecords godoc
// @Summary      Patient wellness records
// @Tags         Doctor
// @Produce      json
// @Param        id path int true "Patient ID"
// @Success      200 {object} util.APIResponse{data=patientRecordsResponse}
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /doctor/patient/{id}/records [get]
func ListPatientRecords(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "patient")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	if _, err := findPatient(db, id); err != nil {
		util.CallError(c, util.APIErrorParams{Msg: "Patient not found", Err: err})
		return
	}

	var records []model.WellnessRecord
	if err := db.Where("P_ID = ?", id).Order("Record_Date DESC").Order("Record_ID DESC").Find(&records).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve records", Err: err})
		return
	}
	names, err := usernamesByID(db, records)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve records", Err: err})
		return
	}

	views := make([]RecordView, 0, len(records))
	for _, r := range records {
		view := RecordView{WellnessRecord: r}
		if name, ok := names[r.UserID]; ok {
			n := name
			view.RecordedBy = &n
		}
		views = append(views, view)
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Records retrieved",
		Data: patientRecordsResponse{PatientID: id, Records: views},
	})
}

func usernamesByID(db *gorm.DB, records []model.WellnessRecord) (map[uint]string, error) {
	seen := map[uint]bool{}
	var ids []uint
	for _, r := range records {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			ids = append(ids, r.UserID)
		}
	}
	out := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []model.User
	if err := db.Select("U_ID", "U_Username").Where("U_ID IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u.Username
	}
	return out, nil
}

// AppliedTreatment is a treatment given during one of the patient's visits.
type AppliedTreatment struct {
	RecordTreatmentID uint       `json:"recordTreatmentId"`
	TreatmentID       uint       `json:"treatmentId"`
	TreatmentName     string     `json:"treatmentName"`
	Details           *string    `json:"details"`
	TreatmentDate     *time.Time `json:"treatmentDate"`
	RecordID          uint       `json:"recordId"`
}

type patientTreatmentsResponse struct {
	PatientID  uint               `json:"patientId"`
	Treatments []AppliedTreatment `json:"treatments"`
}

// ListPatientTreatments godoc
// @Summary      Patient treatments
// @Tags         Doctor
// @Produce      json
// @Param        id path int true "Patient ID"
// @Success      200 {object} util.APIResponse{data=patientTreatmentsResponse}
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /doctor/patient/{id}/treatments [get]
func ListPatientTreatments(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "patient")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	if _, err := findPatient(db, id); err != nil {
		util.CallError(c, util.APIErrorParams{Msg: "Patient not found", Err: err})
		return
	}

	var records []model.WellnessRecord
	if err := db.Select("Record_ID", "Record_Date").Where("P_ID = ?", id).Find(&records).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve treatments", Err: err})
		return
	}
	treatments, err := appliedTreatments(db, records)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve treatments", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Treatments retrieved",
		Data: patientTreatmentsResponse{PatientID: id, Treatments: treatments},
	})
}

// appliedTreatments joins RECORD_TREATMENT rows of the given records with the
// catalog, newest visit first.
func appliedTreatments(db *gorm.DB, records []model.WellnessRecord) ([]AppliedTreatment, error) {
	out := []AppliedTreatment{}
	if len(records) == 0 {
		return out, nil
	}
	dates := make(map[uint]*time.Time, len(records))
	recordIDs := make([]uint, 0, len(records))
	for _, r := range records {
		dates[r.ID] = r.RecordDate
		recordIDs = append(recordIDs, r.ID)
	}

	var links []model.RecordTreatment
	if err := db.Where("Record_ID IN ?", recordIDs).Find(&links).Error; err != nil {
		return nil, err
	}
	catalog, err := treatmentNames(db, links)
	if err != nil {
		return nil, err
	}

	for _, l := range links {
		out = append(out, AppliedTreatment{
			RecordTreatmentID: l.ID,
			TreatmentID:       l.TreatmentID,
			TreatmentName:     catalog[l.TreatmentID],
			Details:           l.Details,
			TreatmentDate:     dates[l.RecordID],
			RecordID:          l.RecordID,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].TreatmentDate, out[j].TreatmentDate
		if di != nil && dj != nil && !di.Equal(*dj) {
			return di.After(*dj)
		}
		if (di == nil) != (dj == nil) {
			return di != nil
		}
		return out[i].TreatmentName < out[j].TreatmentName
	})
	return out, nil
}

func treatmentNames(db *gorm.DB, links []model.RecordTreatment) (map[uint]string, error) {
	ids := make([]uint, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.TreatmentID)
	}
	out := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var treatments []model.Treatment
	if err := db.Where("T_ID IN ?", ids).Find(&treatments).Error; err != nil {
		return nil, err
	}
	for _, t := range treatments {
		out[t.ID] = t.Description
	}
	return out, nil
}
