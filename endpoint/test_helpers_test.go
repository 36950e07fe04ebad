package endpoint_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jagwell/jagwell/config"
	"github.com/jagwell/jagwell/endpoint"
	"github.com/jagwell/jagwell/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type apiResp struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
}

// requestParams groups HTTP request parameters to reduce function arguments
type requestParams struct {
	method string
	path   string
	body   interface{}
	cookie *http.Cookie
}

var testViews = map[string]string{
	"admin/admin-dashboard.html":   "<h1>Admin dashboard</h1>",
	"doctor/doctor-dashboard.html": "<h1>Doctor dashboard</h1>",
	"doctor/doctor-patients.html":  "<h1>Patients</h1>",
	"doctor/doctor-logging.html":   "<h1>Logging</h1>",
	"student/student-home.html":    "<h1>Student home</h1>",
	"student/student-log.html":     "<h1>Log</h1>",
	"student/student-trends.html":  "<h1>Trends</h1>",
	"student/student-profile.html": "<h1>Profile</h1>",
}

var testPublic = map[string]string{
	"login.html":  "<form>login</form>",
	"wip.html":    "<p>coming soon</p>",
	"css/app.css": "body{}",
}

// SetupTestServer opens a private in-memory database, migrates it and
// returns the full router.
func SetupTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, model.Migrate(db))

	cfg := &config.Config{
		AppName:      "JagWell",
		AppEnv:       "test",
		CookieName:   "token",
		MaxPageLimit: 100,
		ViewsDir:     writeTree(t, testViews),
		PublicDir:    writeTree(t, testPublic),
	}
	return &testServer{router: endpoint.SetupRouter(cfg, db), db: db, cfg: cfg}
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func (s *testServer) do(t *testing.T, params requestParams) (*httptest.ResponseRecorder, apiResp) {
	t.Helper()

	var body *bytes.Reader
	switch v := params.body.(type) {
	case nil:
		body = bytes.NewReader(nil)
	case string:
		body = bytes.NewReader([]byte(v))
	default:
		b, err := json.Marshal(v)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}

	req := httptest.NewRequest(params.method, params.path, body)
	if params.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if params.cookie != nil {
		req.AddCookie(params.cookie)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	var resp apiResp
	if ct := rr.Header().Get("Content-Type"); rr.Body.Len() > 0 && len(ct) >= 16 && ct[:16] == "application/json" {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	}
	return rr, resp
}

func (s *testServer) createUser(t *testing.T, username, password string, role model.Role) model.User {
	t.Helper()
	user, err := endpoint.NewUser(s.db, endpoint.CreateUserRequest{Username: username, Password: password, Role: string(role)})
	require.NoError(t, err)
	return user
}

// login authenticates through the API and returns the session cookie.
func (s *testServer) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	rr, resp := s.do(t, requestParams{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   map[string]string{"username": username, "password": password},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.True(t, resp.Success)

	c := sessionCookie(rr, s.cfg.CookieName)
	require.NotNil(t, c, "login did not set a session cookie")
	return c
}

// loginAs creates a user with the given role and returns its id and cookie.
func (s *testServer) loginAs(t *testing.T, username string, role model.Role) (model.User, *http.Cookie) {
	t.Helper()
	user := s.createUser(t, username, username+"-pw", role)
	return user, s.login(t, username, username+"-pw")
}

func sessionCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decodeData(t *testing.T, resp apiResp, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, dst), string(resp.Data))
}

func seedPatient(t *testing.T, db *gorm.DB, name string, status model.PatientStatus) model.Patient {
	t.Helper()
	p := model.Patient{Name: name, Status: status}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func seedRecord(t *testing.T, db *gorm.DB, patientID, userID uint, at time.Time) model.WellnessRecord {
	t.Helper()
	mood := "fine"
	r := model.WellnessRecord{PatientID: patientID, UserID: userID, RecordDate: &at, Mood: &mood}
	require.NoError(t, db.Create(&r).Error)
	return r
}

func seedTreatment(t *testing.T, db *gorm.DB, description string) model.Treatment {
	t.Helper()
	tr := model.Treatment{Description: description}
	require.NoError(t, db.Create(&tr).Error)
	return tr
}

func urlf(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}
