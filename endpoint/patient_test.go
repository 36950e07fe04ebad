package endpoint_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/jagwell/jagwell/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patientRow struct {
	PatientID     uint       `json:"patientId"`
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Status        string     `json:"status"`
	LastVisitDate *time.Time `json:"lastVisitDate"`
}

type patientPage struct {
	Patients   []patientRow `json:"patients"`
	Pagination struct {
		TotalItems int64 `json:"totalItems"`
		TotalPages int   `json:"totalPages"`
	} `json:"pagination"`
}

func TestCreatePatient(t *testing.T) {
	s := SetupTestServer(t)
	_, doctor := s.loginAs(t, "doc", model.RoleDoctor)

	rr, resp := s.do(t, requestParams{
		method: http.MethodPost,
		path:   "/api/doctor/patients",
		cookie: doctor,
		body:   map[string]interface{}{"firstName": "  Alice ", "lastName": "Smith", "status": "Student", "age": 19, "studentId": "S-1"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var out struct {
		PatientID uint   `json:"patientId"`
		ID        string `json:"id"`
	}
	decodeData(t, resp, &out)
	assert.Equal(t, model.PatientCode(out.PatientID), out.ID)

	var p model.Patient
	require.NoError(t, s.db.First(&p, "P_ID = ?", out.PatientID).Error)
	assert.Equal(t, "Alice Smith", p.Name)
	assert.Equal(t, 19, *p.Age)
	assert.Nil(t, p.UserID)
}

func TestCreatePatientValidation(t *testing.T) {
	s := SetupTestServer(t)
	_, doctor := s.loginAs(t, "doc", model.RoleDoctor)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing status", map[string]interface{}{"firstName": "A", "lastName": "B"}},
		{"bad status", map[string]interface{}{"firstName": "A", "lastName": "B", "status": "Visitor"}},
		{"blank name", map[string]interface{}{"firstName": "  ", "lastName": "B", "status": "Staff"}},
		{"unknown user", map[string]interface{}{"firstName": "A", "lastName": "B", "status": "Staff", "userId": 42}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr, resp := s.do(t, requestParams{method: http.MethodPost, path: "/api/doctor/patients", cookie: doctor, body: tc.body})
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.False(t, resp.Success)
		})
	}

	var count int64
	s.db.Model(&model.Patient{}).Count(&count)
	assert.Zero(t, count)
}

func TestListPatients(t *testing.T) {
	s := SetupTestServer(t)
	_, doctor := s.loginAs(t, "doc", model.RoleDoctor)
	ann := seedPatient(t, s.db, "Ann Lee", model.StatusStudent)
	seedPatient(t, s.db, "Ben Ode", model.StatusStaff)
	seedPatient(t, s.db, "Cal Ray", model.StatusStudent)

	older := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 2, 20, 9, 0, 0, 0, time.UTC)
	seedRecord(t, s.db, ann.ID, 1, older)
	seedRecord(t, s.db, ann.ID, 1, newer)

	rr, resp := s.do(t, requestParams{method: http.MethodGet, path: "/api/doctor/patients?status=Student", cookie: doctor})
	require.Equal(t, http.StatusOK, rr.Code)
	var page patientPage
	decodeData(t, resp, &page)
	require.Len(t, page.Patients, 2)
	assert.Equal(t, int64(2), page.Pagination.TotalItems)
	assert.Equal(t, "Ann Lee", page.Patients[0].Name)
	assert.Equal(t, model.PatientCode(ann.ID), page.Patients[0].ID)
	require.NotNil(t, page.Patients[0].LastVisitDate)
	assert.True(t, newer.Equal(*page.Patients[0].LastVisitDate))
	assert.Nil(t, page.Patients[1].LastVisitDate)

	rr, resp = s.do(t, requestParams{method: http.MethodGet, path: "/api/doctor/patients?search=ode", cookie: doctor})
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, resp, &page)
	require.Len(t, page.Patients, 1)
	assert.Equal(t, "Ben Ode", page.Patients[0].Name)

	rr, resp = s.do(t, requestParams{method: http.MethodGet, path: "/api/doctor/patients?limit=1&page=3", cookie: doctor})
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, resp, &page)
	require.Len(t, page.Patients, 1)
	assert.Equal(t, "Cal Ray", page.Patients[0].Name)
	assert.Equal(t, 3, page.Pagination.TotalPages)
}

func TestPatientRoutesAllowAdminButNotStudent(t *testing.T) {
	s := SetupTestServer(t)
	_, admin := s.loginAs(t, "admin", model.RoleAdmin)
	_, student := s.loginAs(t, "stud", model.RoleStudent)

	rr, _ := s.do(t, requestParams{method: http.MethodGet, path: "/api/doctor/patients", cookie: admin})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, _ = s.do(t, requestParams{method: http.MethodGet, path: "/api/doctor/patients", cookie: student})
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestPatientDropdownAndDetail(t *testing.T) {
	s := SetupTestServer(t)
	_, doctor := s.loginAs(t, "doc", model.RoleDoctor)
	zed := seedPatient(t, s.db, "Zed Ray", model.StatusStaff)
	seedPatient(t, s.db, "Amy Fox", model.StatusStudent)
	visit := time.Date(2025, 5, 1, 8, 30, 0, 0, time.UTC)
	seedRecord(t, s.db, zed.ID, 1, visit)

	rr, resp := s.do(t, requestParams{method: http.MethodGet, path: "/api/doctor/patients/dropdown", cookie: doctor})
	require.Equal(t, http.StatusOK, rr.Code)
	var options []struct {
		PatientID uint   `json:"P_ID"`
		Name      string `json:"P_Name"`
	}
	decodeData(t, resp, &options)
	require.Len(t, options, 2)
	assert.Equal(t, "Amy Fox", options[0].Name)

	rr, resp = s.do(t, requestParams{method: http.MethodGet, path: urlf("/api/doctor/patients/%d", zed.ID), cookie: doctor})
	require.Equal(t, http.StatusOK, rr.Code)
	var detail struct {
		PatientID     uint       `json:"patientId"`
		ID            string     `json:"id"`
		Name          string     `json:"name"`
		LastVisitDate *time.Time `json:"lastVisitDate"`
	}
	decodeData(t, resp, &detail)
	assert.Equal(t, zed.ID, detail.PatientID)
	assert.Equal(t, "Zed Ray", detail.Name)
	require.NotNil(t, detail.LastVisitDate)
	assert.True(t, visit.Equal(*detail.LastVisitDate))

	rr, _ = s.do(t, requestParams{method: http.MethodGet, path: "/api/doctor/patients/999", cookie: doctor})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdatePatient(t *testing.T) {
	s := SetupTestServer(t)
	_, admin := s.loginAs(t, "admin", model.RoleAdmin)
	age := 20
	p := model.Patient{Name: "Ann Lee", Age: &age, Status: model.StatusStudent}
	require.NoError(t, s.db.Create(&p).Error)

	rr, _ := s.do(t, requestParams{method: http.MethodPut, path: urlf("/api/admin/patients/%d", p.ID), cookie: admin, body: `{"age":null,"phone":"555-0100","status":"Staff"}`})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var after model.Patient
	require.NoError(t, s.db.First(&after, "P_ID = ?", p.ID).Error)
	assert.Nil(t, after.Age)
	assert.Equal(t, "555-0100", *after.Phone)
	assert.Equal(t, model.StatusStaff, after.Status)
	assert.Equal(t, "Ann Lee", after.Name)

	rr, _ = s.do(t, requestParams{method: http.MethodPut, path: urlf("/api/admin/patients/%d", p.ID), cookie: admin, body: `{}`})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = s.do(t, requestParams{method: http.MethodPut, path: urlf("/api/admin/patients/%d", p.ID), cookie: admin, body: `{"name":""}`})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = s.do(t, requestParams{method: http.MethodPut, path: urlf("/api/admin/patients/%d", p.ID), cookie: admin, body: `{"status":"Alumni"}`})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = s.do(t, requestParams{method: http.MethodPut, path: "/api/admin/patients/999", cookie: admin, body: `{"phone":"1"}`})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	require.NoError(t, s.db.First(&after, "P_ID = ?", p.ID).Error)
	assert.Equal(t, "Ann Lee", after.Name)
	assert.Equal(t, model.StatusStaff, after.Status)
}

func TestPatientRecordsAndTreatments(t *testing.T) {
	s := SetupTestServer(t)
	doctor, cookie := s.loginAs(t, "doc", model.RoleDoctor)
	p := seedPatient(t, s.db, "Ann Lee", model.StatusStudent)
	first := seedRecord(t, s.db, p.ID, doctor.ID, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	second := seedRecord(t, s.db, p.ID, model.SystemUserID, time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC))
	rest := seedTreatment(t, s.db, "Rest")
	fluids := seedTreatment(t, s.db, "Fluids")
	require.NoError(t, s.db.Create(&model.RecordTreatment{RecordID: first.ID, TreatmentID: rest.ID}).Error)
	require.NoError(t, s.db.Create(&model.RecordTreatment{RecordID: second.ID, TreatmentID: rest.ID}).Error)
	require.NoError(t, s.db.Create(&model.RecordTreatment{RecordID: second.ID, TreatmentID: fluids.ID}).Error)

	rr, resp := s.do(t, requestParams{method: http.MethodGet, path: urlf("/api/doctor/patient/%d/records", p.ID), cookie: cookie})
	require.Equal(t, http.StatusOK, rr.Code)
	var records struct {
		Records []struct {
			RecordID   uint    `json:"recordId"`
			RecordedBy *string `json:"recordedBy"`
		} `json:"records"`
	}
	decodeData(t, resp, &records)
	require.Len(t, records.Records, 2)
	assert.Equal(t, second.ID, records.Records[0].RecordID)
	assert.Nil(t, records.Records[0].RecordedBy)
	require.NotNil(t, records.Records[1].RecordedBy)
	assert.Equal(t, "doc", *records.Records[1].RecordedBy)

	rr, resp = s.do(t, requestParams{method: http.MethodGet, path: urlf("/api/doctor/patient/%d/treatments", p.ID), cookie: cookie})
	require.Equal(t, http.StatusOK, rr.Code)
	var treatments struct {
		Treatments []struct {
			TreatmentName string `json:"treatmentName"`
			RecordID      uint   `json:"recordId"`
		} `json:"treatments"`
	}
	decodeData(t, resp, &treatments)
	require.Len(t, treatments.Treatments, 3)
	assert.Equal(t, "Fluids", treatments.Treatments[0].TreatmentName)
	assert.Equal(t, second.ID, treatments.Treatments[0].RecordID)
	assert.Equal(t, "Rest", treatments.Treatments[1].TreatmentName)
	assert.Equal(t, first.ID, treatments.Treatments[2].RecordID)

	rr, _ = s.do(t, requestParams{method: http.MethodGet, path: "/api/doctor/patient/999/records", cookie: cookie})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr, _ = s.do(t, requestParams{method: http.MethodGet, path: "/api/doctor/patient/999/treatments", cookie: cookie})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
