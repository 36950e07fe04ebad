package endpoint_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jagwell/jagwell/endpoint"
	"github.com/jagwell/jagwell/model"
	"github.com/jagwell/jagwell/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type userList struct {
	Users      []model.User `json:"users"`
	Pagination struct {
		CurrentPage  int   `json:"currentPage"`
		TotalPages   int   `json:"totalPages"`
		TotalItems   int64 `json:"totalItems"`
		ItemsPerPage int   `json:"itemsPerPage"`
	} `json:"pagination"`
}

func TestListUsersPaginatesAndFilters(t *testing.T) {
	s := SetupTestServer(t)
	_, admin := s.loginAs(t, "admin", model.RoleAdmin)
	for _, name := range []string{"stud1", "stud2", "stud3"} {
		s.createUser(t, name, "pw", model.RoleStudent)
	}
	s.createUser(t, "doc", "pw", model.RoleDoctor)

	rr, resp := s.do(t, requestParams{method: http.MethodGet, path: "/api/admin/users?role=Student&limit=2&sort=username", cookie: admin})
	require.Equal(t, http.StatusOK, rr.Code)
	var page userList
	decodeData(t, resp, &page)
	require.Len(t, page.Users, 2)
	assert.Equal(t, "stud1", page.Users[0].Username)
	assert.Equal(t, int64(3), page.Pagination.TotalItems)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.Equal(t, 1, page.Pagination.CurrentPage)
	assert.Equal(t, 2, page.Pagination.ItemsPerPage)

	rr, resp = s.do(t, requestParams{method: http.MethodGet, path: "/api/admin/users?search=doc", cookie: admin})
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, resp, &page)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "doc", page.Users[0].Username)
	assert.NotContains(t, string(resp.Data), "password")
}

func TestAdminRoutesRejectOtherRoles(t *testing.T) {
	s := SetupTestServer(t)
	_, doctor := s.loginAs(t, "doc", model.RoleDoctor)

	rr, resp := s.do(t, requestParams{method: http.MethodGet, path: "/api/admin/users", cookie: doctor})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Access denied: insufficient role", resp.Msg)

	rr, _ = s.do(t, requestParams{method: http.MethodGet, path: "/api/admin/users"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCreateUser(t *testing.T) {
	s := SetupTestServer(t)
	_, admin := s.loginAs(t, "admin", model.RoleAdmin)

	rr, resp := s.do(t, requestParams{
		method: http.MethodPost,
		path:   "/api/admin/users",
		cookie: admin,
		body:   map[string]string{"username": "newdoc", "password": "pw-1", "role": "Doctor", "firstName": "Meredith"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var created struct {
		UserID uint `json:"userId"`
	}
	decodeData(t, resp, &created)
	assert.NotZero(t, created.UserID)

	s.login(t, "newdoc", "pw-1")

	rr, _ = s.do(t, requestParams{
		method: http.MethodPost,
		path:   "/api/admin/users",
		cookie: admin,
		body:   map[string]string{"username": "newdoc", "password": "x", "role": "Doctor"},
	})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr, _ = s.do(t, requestParams{
		method: http.MethodPost,
		path:   "/api/admin/users",
		cookie: admin,
		body:   map[string]string{"username": "nurse", "password": "x", "role": "Nurse"},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetUser(t *testing.T) {
	s := SetupTestServer(t)
	adminUser, admin := s.loginAs(t, "admin", model.RoleAdmin)

	rr, resp := s.do(t, requestParams{method: http.MethodGet, path: urlf("/api/admin/users/%d", adminUser.ID), cookie: admin})
	require.Equal(t, http.StatusOK, rr.Code)
	var u model.User
	decodeData(t, resp, &u)
	assert.Equal(t, "admin", u.Username)

	rr, _ = s.do(t, requestParams{method: http.MethodGet, path: "/api/admin/users/999", cookie: admin})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, _ = s.do(t, requestParams{method: http.MethodGet, path: "/api/admin/users/abc", cookie: admin})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateUserEmptyBodyLeavesRowUnchanged(t *testing.T) {
	s := SetupTestServer(t)
	_, admin := s.loginAs(t, "admin", model.RoleAdmin)
	target := s.createUser(t, "stud", "pw", model.RoleStudent)

	rr, resp := s.do(t, requestParams{method: http.MethodPut, path: urlf("/api/admin/users/%d", target.ID), cookie: admin, body: map[string]string{}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, resp.Error, util.ErrNoFieldsProvided.Error())

	var after model.User
	require.NoError(t, s.db.First(&after, "U_ID = ?", target.ID).Error)
	assert.Equal(t, target.Username, after.Username)
	assert.Equal(t, target.Role, after.Role)
	assert.Equal(t, target.Password, after.Password)
}

func TestUpdateUserPartial(t *testing.T) {
	s := SetupTestServer(t)
	_, admin := s.loginAs(t, "admin", model.RoleAdmin)
	target := s.createUser(t, "stud", "pw", model.RoleStudent)
	s.createUser(t, "taken", "pw", model.RoleStudent)

	rr, _ := s.do(t, requestParams{
		method: http.MethodPut,
		path:   urlf("/api/admin/users/%d", target.ID),
		cookie: admin,
		body:   `{"firstName":"Sam","email":null,"password":"new-pw"}`,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var after model.User
	require.NoError(t, s.db.First(&after, "U_ID = ?", target.ID).Error)
	require.NotNil(t, after.FirstName)
	assert.Equal(t, "Sam", *after.FirstName)
	assert.Nil(t, after.Email)
	assert.Equal(t, model.RoleStudent, after.Role)
	assert.True(t, util.CheckPassword(after.Password, "new-pw"))

	rr, _ = s.do(t, requestParams{method: http.MethodPut, path: urlf("/api/admin/users/%d", target.ID), cookie: admin, body: map[string]string{"username": "taken"}})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr, _ = s.do(t, requestParams{method: http.MethodPut, path: urlf("/api/admin/users/%d", target.ID), cookie: admin, body: map[string]string{"role": "Janitor"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = s.do(t, requestParams{method: http.MethodPut, path: urlf("/api/admin/users/%d", target.ID), cookie: admin, body: `{"username":null}`})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = s.do(t, requestParams{method: http.MethodPut, path: urlf("/api/admin/users/%d", target.ID), cookie: admin, body: map[string]string{"email": "not-an-email"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	require.NoError(t, s.db.First(&after, "U_ID = ?", target.ID).Error)
	assert.Nil(t, after.Email)
}

func TestUpdateUserMissingID(t *testing.T) {
	s := SetupTestServer(t)
	_, admin := s.loginAs(t, "admin", model.RoleAdmin)

	rr, _ := s.do(t, requestParams{method: http.MethodPut, path: "/api/admin/users/999", cookie: admin, body: map[string]string{"firstName": "X"}})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteUserReassignsRecords(t *testing.T) {
	s := SetupTestServer(t)
	_, admin := s.loginAs(t, "admin", model.RoleAdmin)
	doctor := s.createUser(t, "doc", "pw", model.RoleDoctor)
	patient := seedPatient(t, s.db, "Pat One", model.StatusStudent)
	seedRecord(t, s.db, patient.ID, doctor.ID, time.Now())
	seedRecord(t, s.db, patient.ID, doctor.ID, time.Now())

	rr, resp := s.do(t, requestParams{method: http.MethodDelete, path: urlf("/api/admin/users/%d", doctor.ID), cookie: admin})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var out struct {
		ReassignedRecords int64 `json:"reassignedRecords"`
	}
	decodeData(t, resp, &out)
	assert.Equal(t, int64(2), out.ReassignedRecords)

	var users int64
	s.db.Model(&model.User{}).Where("U_ID = ?", doctor.ID).Count(&users)
	assert.Zero(t, users)

	var system int64
	s.db.Model(&model.WellnessRecord{}).Where("U_ID = ?", model.SystemUserID).Count(&system)
	assert.Equal(t, int64(2), system)

	rr, _ = s.do(t, requestParams{method: http.MethodDelete, path: urlf("/api/admin/users/%d", doctor.ID), cookie: admin})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteUserRejectsSystemAndSelf(t *testing.T) {
	s := SetupTestServer(t)
	adminUser, admin := s.loginAs(t, "admin", model.RoleAdmin)

	rr, _ := s.do(t, requestParams{method: http.MethodDelete, path: urlf("/api/admin/users/%d", adminUser.ID), cookie: admin})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = s.do(t, requestParams{method: http.MethodDelete, path: "/api/admin/users/0", cookie: admin})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	_, err := endpoint.DeleteUserAndReassign(s.db, model.SystemUserID, adminUser.ID)
	assert.ErrorIs(t, err, util.ErrInvalidOperation)
	_, err = endpoint.DeleteUserAndReassign(s.db, adminUser.ID, adminUser.ID)
	assert.ErrorIs(t, err, util.ErrInvalidOperation)

	var users int64
	s.db.Model(&model.User{}).Count(&users)
	assert.Equal(t, int64(1), users)
}

func TestDeleteUserRollsBackWhenUserDeleteFails(t *testing.T) {
	s := SetupTestServer(t)
	admin := s.createUser(t, "admin", "pw", model.RoleAdmin)
	doctor := s.createUser(t, "doc", "pw", model.RoleDoctor)
	patient := seedPatient(t, s.db, "Pat One", model.StatusStudent)
	record := seedRecord(t, s.db, patient.ID, doctor.ID, time.Now())

	forced := errors.New("forced delete failure")
	require.NoError(t, s.db.Callback().Delete().Before("gorm:delete").Register("test:fail_user_delete", func(tx *gorm.DB) {
		if tx.Statement.Table == "USER" {
			_ = tx.AddError(forced)
		}
	}))

	_, err := endpoint.DeleteUserAndReassign(s.db, doctor.ID, admin.ID)
	require.ErrorIs(t, err, forced)

	var after model.WellnessRecord
	require.NoError(t, s.db.First(&after, "Record_ID = ?", record.ID).Error)
	assert.Equal(t, doctor.ID, after.UserID)

	var users int64
	s.db.Model(&model.User{}).Where("U_ID = ?", doctor.ID).Count(&users)
	assert.Equal(t, int64(1), users)
}

func TestDeleteUserRollsBackWhenReassignFails(t *testing.T) {
	s := SetupTestServer(t)
	admin := s.createUser(t, "admin", "pw", model.RoleAdmin)
	doctor := s.createUser(t, "doc", "pw", model.RoleDoctor)
	patient := seedPatient(t, s.db, "Pat One", model.StatusStudent)
	seedRecord(t, s.db, patient.ID, doctor.ID, time.Now())

	forced := errors.New("forced reassign failure")
	require.NoError(t, s.db.Callback().Update().Before("gorm:update").Register("test:fail_reassign", func(tx *gorm.DB) {
		if tx.Statement.Table == "WELLNESS_RECORD" {
			_ = tx.AddError(forced)
		}
	}))

	_, err := endpoint.DeleteUserAndReassign(s.db, doctor.ID, admin.ID)
	require.ErrorIs(t, err, forced)

	var users int64
	s.db.Model(&model.User{}).Where("U_ID = ?", doctor.ID).Count(&users)
	assert.Equal(t, int64(1), users)

	var owned int64
	s.db.Model(&model.WellnessRecord{}).Where("U_ID = ?", doctor.ID).Count(&owned)
	assert.Equal(t, int64(1), owned)
}
