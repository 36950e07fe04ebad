package endpoint

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jagwell/jagwell/model"
	"github.com/jagwell/jagwell/util"
	"gorm.io/gorm"
)

type CreateUserRequest struct {
	Username  string  `json:"username" binding:"required" example:"alice"`
	Password  string  `json:"password" binding:"required" example:"password123"`
	Role      string  `json:"role" binding:"required" example:"Student"`
	FirstName *string `json:"firstName" example:"Alice"`
	LastName  *string `json:"lastName" example:"Smith"`
	Email     *string `json:"email" binding:"omitempty,email" example:"alice@school.edu"`
}

// UpdateUserRequest is a partial update: absent keys are left unchanged.
type UpdateUserRequest struct {
	Username  model.Optional[string] `json:"username" swaggertype:"string"`
	Role      model.Optional[string] `json:"role" swaggertype:"string"`
	FirstName model.Optional[string] `json:"firstName" swaggertype:"string"`
	LastName  model.Optional[string] `json:"lastName" swaggertype:"string"`
	Email     model.Optional[string] `json:"email" swaggertype:"string"`
	Password  model.Optional[string] `json:"password" swaggertype:"string"`
}

type userListResponse struct {
	Users      []model.User    `json:"users"`
	Pagination util.Pagination `json:"pagination"`
}

var userSortColumns = map[string]string{
	"username": "U_Username",
	"id":       "U_ID",
	"role":     "U_Role",
}

// ListUsers godoc
// @Summary      List users
// @Tags         Admin
// @Produce      json
// @Param        search query string false "Matches username, names or email"
// @Param        role   query string false "Admin|Doctor|Student"
// @Param        sort   query string false "username|id|role"
// @Param        page   query int false "Page number (default 1)"
// @Param        limit  query int false "Page size (default 10)"
// @Success      200 {object} util.APIResponse{data=userListResponse}
// @Failure      403 {object} util.APIResponse "Forbidden"
// @Router       /admin/users [get]
func ListUsers(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	page := pageRequest(c)

	query := db.Model(&model.User{})
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		kw := likePattern(search)
		query = query.Where("U_Username LIKE ? OR U_FirstName LIKE ? OR U_LastName LIKE ? OR U_Email LIKE ?", kw, kw, kw, kw)
	}
	if role := c.Query("role"); role != "" && role != "all" {
		query = query.Where("U_Role = ?", role)
	}

	query = query.Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count users", Err: err})
		return
	}

	sortColumn, ok := userSortColumns[c.Query("sort")]
	if !ok {
		sortColumn = "U_Username"
	}
	users := []model.User{}
	if err := query.Order(sortColumn).Limit(page.Limit).Offset(page.Offset()).Find(&users).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve users", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Users retrieved",
		Data: userListResponse{Users: users, Pagination: util.NewPagination(page, total)},
	})
}

// GetUser godoc
// @Summary      Get user
// @Tags         Admin
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200 {object} util.APIResponse{data=model.User}
// @Failure      404 {object} util.APIResponse "User not found"
// @Router       /admin/users/{id} [get]
func GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	user, err := findUser(db, id)
	if err != nil {
		util.CallError(c, util.APIErrorParams{Msg: "User not found", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "User retrieved", Data: user})
}

func findUser(db *gorm.DB, id uint) (model.User, error) {
	var user model.User
	err := db.First(&user, "U_ID = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, fmt.Errorf("user %d: %w", id, util.ErrNotFound)
	}
	return user, err
}

func usernameTaken(db *gorm.DB, username string, exceptID uint) (bool, error) {
	var count int64
	err := db.Model(&model.User{}).Where("U_Username = ? AND U_ID <> ?", username, exceptID).Count(&count).Error
	return count > 0, err
}

// CreateUser godoc
// @Summary      Create user
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "New user"
// @Success      200 {object} util.APIResponse{data=object} "User created"
// @Failure      400 {object} util.APIResponse "Validation error"
// @Failure      409 {object} util.APIResponse "Username already exists"
// @Router       /admin/users [post]
func CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !bindJSONOrRespond(c, &req, "Username, password, and role are required") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	user, err := NewUser(db, req)
	if err != nil {
		util.CallError(c, util.APIErrorParams{Msg: "Failed to create user", Err: err})
		return
	}

	util.LogSecurityEvent(db, util.SecurityEvent{
		EventType: util.EventUserCreated,
		UserID:    fmt.Sprintf("%d", user.ID),
		Username:  user.Username,
		IP:        c.ClientIP(),
		Message:   fmt.Sprintf("User created with role %s", user.Role),
	})
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "User created successfully",
		Data: map[string]interface{}{"userId": user.ID},
	})
}

// NewUser validates req, hashes the password and inserts the account.
func NewUser(db *gorm.DB, req CreateUserRequest) (model.User, error) {
	if err := util.ValidateStruct(req); err != nil {
		return model.User{}, err
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return model.User{}, util.Validationf("username and password are required")
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %s", util.ErrValidation, err.Error())
	}

	taken, err := usernameTaken(db, username, 0)
	if err != nil {
		return model.User{}, err
	}
	if taken {
		return model.User{}, fmt.Errorf("username already exists: %w", util.ErrConflict)
	}

	hashed, err := util.HashPassword(req.Password)
	if err != nil {
		return model.User{}, err
	}
	user := model.User{
		Username:  username,
		Role:      role,
		Password:  hashed,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.User{}, fmt.Errorf("username already exists: %w", util.ErrConflict)
		}
		return model.User{}, err
	}
	return user, nil
}

// UpdateUser godoc
// @Summary      Update user
// @Description  Partial update. Only keys present in the body are written.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id path int true "User ID"
// @Param        request body UpdateUserRequest true "Fields to change"
// @Success      200 {object} util.APIResponse "User updated"
// @Failure      400 {object} util.APIResponse "No fields or invalid field"
// @Failure      404 {object} util.APIResponse "User not found"
// @Failure      409 {object} util.APIResponse "Username already exists"
// @Router       /admin/users/{id} [put]
func UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	fields, err := userUpdateFields(req)
	if err != nil {
		util.CallError(c, util.APIErrorParams{Msg: "Invalid user update", Err: err})
		return
	}

	if req.Username.Set {
		taken, err := usernameTaken(db, strings.TrimSpace(req.Username.Val), id)
		if err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to validate username", Err: err})
			return
		}
		if taken {
			util.CallConflict(c, util.APIErrorParams{Msg: "Username already exists", Err: util.ErrConflict})
			return
		}
	}

	if !execPartialUpdate(c, db, "USER", "U_ID", id, fields, "user") {
		return
	}

	if req.Username.Set || req.Role.Set || req.Password.Set {
		if err := util.RevokeUserTokens(c.Request.Context(), id, time.Now()); err != nil {
			util.Log().Warn().Err(err).Uint("user_id", id).Msg("failed to revoke user tokens")
		}
		util.LogSecurityEvent(db, util.SecurityEvent{
			EventType: util.EventCredentialsChanged,
			UserID:    fmt.Sprintf("%d", id),
			IP:        c.ClientIP(),
			Message:   "User credentials or role changed",
		})
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "User updated successfully"})
}

func userUpdateFields(req UpdateUserRequest) ([]util.Field, error) {
	var p partialFields
	requiredText(&p, "U_Username", "username", req.Username)
	if req.Role.Set {
		if req.Role.Null {
			p.fail(util.Validationf("role cannot be empty"))
		} else if role, err := model.ParseRole(req.Role.Val); err != nil {
			p.fail(fmt.Errorf("%w: %s", util.ErrValidation, err.Error()))
		} else {
			p.add("U_Role", string(role))
		}
	}
	optionalField(&p, "U_FirstName", req.FirstName)
	optionalField(&p, "U_LastName", req.LastName)
	if req.Email.Set && !req.Email.Null && req.Email.Val != "" {
		if err := util.ValidateEmail(req.Email.Val); err != nil {
			p.fail(err)
		}
	}
	optionalField(&p, "U_Email", req.Email)
	if req.Password.Set {
		if req.Password.Null || req.Password.Val == "" {
			p.fail(util.Validationf("password cannot be empty"))
		} else if hashed, err := util.HashPassword(req.Password.Val); err != nil {
			p.fail(err)
		} else {
			p.add("Password", hashed)
		}
	}
	return p.result()
}

// DeleteUser godoc
// @Summary      Delete user
// @Description  Deletes the user and reassigns their wellness records to the system user (id 0) in one transaction.
// @Tags         Admin
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200 {object} util.APIResponse "User deleted"
// @Failure      400 {object} util.APIResponse "Cannot delete system user or current user"
// @Failure      404 {object} util.APIResponse "User not found"
// @Router       /admin/users/{id} [delete]
func DeleteUser(c *gin.Context) {
	ident, ok := identityOrRespond(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	reassigned, err := DeleteUserAndReassign(db, id, ident.ID)
	if err != nil {
		util.CallError(c, util.APIErrorParams{Msg: "Failed to delete user", Err: err})
		return
	}

	if err := util.RevokeUserTokens(c.Request.Context(), id, time.Now()); err != nil {
		util.Log().Warn().Err(err).Uint("user_id", id).Msg("failed to revoke user tokens")
	}
	util.LogUserDeleted(db, ident.ID, id, c.ClientIP(), reassigned)
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "User deleted successfully and records reassigned to system user",
		Data: map[string]interface{}{"reassignedRecords": reassigned},
	})
}

// DeleteUserAndReassign removes a user, handing their wellness records to
// model.SystemUserID. Both writes commit together or not at all.
func DeleteUserAndReassign(db *gorm.DB, targetID, callerID uint) (int64, error) {
	if targetID == model.SystemUserID || targetID == callerID {
		return 0, fmt.Errorf("cannot delete system user or current user: %w", util.ErrInvalidOperation)
	}
	if _, err := findUser(db, targetID); err != nil {
		return 0, err
	}

	var reassigned int64
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.WellnessRecord{}).Where("U_ID = ?", targetID).Update("U_ID", model.SystemUserID)
		if res.Error != nil {
			return fmt.Errorf("reassign records: %w", res.Error)
		}
		reassigned = res.RowsAffected

		res = tx.Where("U_ID = ?", targetID).Delete(&model.User{})
		if res.Error != nil {
			return fmt.Errorf("delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user %d: %w", targetID, util.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return reassigned, nil
}
