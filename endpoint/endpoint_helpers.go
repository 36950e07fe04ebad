package endpoint

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jagwell/jagwell/middleware"
	"github.com/jagwell/jagwell/model"
	"github.com/jagwell/jagwell/util"
	"gorm.io/gorm"
)

func bindJSONOrRespond(c *gin.Context, dst interface{}, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: util.BindError(err)})
		return false
	}
	return true
}

func getDBOrRespond(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
		return nil, false
	}
	return db, true
}

func identityOrRespond(c *gin.Context) (util.Identity, bool) {
	ident, ok := middleware.GetIdentity(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Authentication required", Err: util.ErrUnauthenticated})
		return util.Identity{}, false
	}
	return ident, true
}

// parseIDParam reads a positive integer path parameter.
func parseIDParam(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: fmt.Sprintf("Valid %s ID is required", label),
			Err: util.Validationf("invalid %s id %q", label, c.Param(name)),
		})
		return 0, false
	}
	return uint(id), true
}

func pageRequest(c *gin.Context) util.PageRequest {
	return util.ParsePageRequest(c.Query("page"), c.Query("limit"), middleware.GetConfig(c).MaxPageLimit)
}

func likePattern(s string) string {
	return "%" + strings.TrimSpace(s) + "%"
}

// Accepted layouts for client supplied dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, util.Validationf("invalid date %q", s)
}

// partialFields collects the present fields of a partial update body.
type partialFields struct {
	fields []util.Field
	err    error
}

func (p *partialFields) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *partialFields) add(column string, value interface{}) {
	p.fields = append(p.fields, util.Field{Column: column, Value: value})
}

func optionalField[T any](p *partialFields, column string, o model.Optional[T]) {
	if o.Set {
		p.add(column, o.Value())
	}
}

// requiredText accepts a present value only when it is a non-blank string.
func requiredText(p *partialFields, column, label string, o model.Optional[string]) {
	if !o.Set {
		return
	}
	v := strings.TrimSpace(o.Val)
	if o.Null || v == "" {
		p.fail(util.Validationf("%s cannot be empty", label))
		return
	}
	p.add(column, v)
}

func optionalDate(p *partialFields, column string, o model.Optional[string]) {
	if !o.Set {
		return
	}
	if o.Null {
		p.add(column, nil)
		return
	}
	t, err := parseDate(o.Val)
	if err != nil {
		p.fail(err)
		return
	}
	p.add(column, t)
}

func (p *partialFields) result() ([]util.Field, error) {
	if p.err != nil {
		return nil, p.err
	}
	if len(p.fields) == 0 {
		return nil, util.ErrNoFieldsProvided
	}
	return p.fields, nil
}

// execPartialUpdate applies a validated field list and answers the request.
func execPartialUpdate(c *gin.Context, db *gorm.DB, table, idColumn string, id uint, fields []util.Field, label string) bool {
	if err := util.ExecPartialUpdate(db, table, idColumn, id, fields); err != nil {
		util.CallError(c, util.APIErrorParams{Msg: fmt.Sprintf("Failed to update %s", label), Err: err})
		return false
	}
	return true
}
