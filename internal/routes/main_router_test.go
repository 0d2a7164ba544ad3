package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"employee-management/internal/dto"
	"employee-management/pkg/customvalidator"
	apperrors "employee-management/pkg/errors"
	"employee-management/pkg/service"
	"employee-management/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type stubAccount struct {
	empID, password, role string
}

type stubAuthService struct {
	mu       sync.Mutex
	jwt      service.JWTService
	accounts map[string]stubAccount
	sessions map[string]string
}

func (s *stubAuthService) Login(_ context.Context, p dto.LoginDTO) (*dto.LoginResponseDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[p.Username]
	if !ok {
		return nil, apperrors.NewNotFoundError("User not found")
	}
	if acc.password != p.Password {
		return nil, apperrors.NewUnauthorizedError("Authentication failed")
	}
	token, err := s.jwt.GenerateToken(acc.empID, p.Username, acc.role)
	if err != nil {
		return nil, err
	}
	s.sessions[acc.empID] = token
	return &dto.LoginResponseDTO{UserID: acc.empID, Token: token, UserName: p.Username, Role: acc.role}, nil
}

func (s *stubAuthService) Logout(_ context.Context, empID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, empID)
	return nil
}

func (s *stubAuthService) SendOTP(context.Context, dto.SendOTPDTO) error { return nil }

func (s *stubAuthService) VerifyOTP(_ context.Context, p dto.VerifyOTPDTO) ([]dto.VerifiedEmailDTO, error) {
	if p.OTP != "4821" {
		return nil, apperrors.NewConflictError("Invalid OTP", nil)
	}
	return []dto.VerifiedEmailDTO{{Email: p.Email}}, nil
}

func (s *stubAuthService) UpdatePassword(context.Context, dto.UpdatePasswordDTO) error { return nil }

func (s *stubAuthService) IsSessionActive(_ context.Context, empID, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[empID] == token, nil
}

type stubUserService struct {
	mu         sync.Mutex
	registered []dto.RegisterUserDTO
	images     []string
	updates    []dto.UpdateProfileDTO
	admins     int
}

func (s *stubUserService) Register(_ context.Context, p dto.RegisterUserDTO, image *dto.FileUpload) (*dto.UserDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registered = append(s.registered, p)
	if image != nil {
		s.images = append(s.images, image.Filename)
	}
	return &dto.UserDTO{EmpID: "AMEMP002", Username: p.Username, Email: p.Email, Role: "user"}, nil
}

func (s *stubUserService) RegisterAdmin(_ context.Context, p dto.RegisterUserDTO) (*dto.UserDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins++
	return &dto.UserDTO{EmpID: "AMEMP003", Username: p.Username, Email: p.Email, Role: "admin"}, nil
}

func (s *stubUserService) GetProfile(_ context.Context, empID string) (*dto.UserDTO, error) {
	if empID == "AMEMP404" {
		return nil, apperrors.NewNotFoundError("User not found.")
	}
	return &dto.UserDTO{EmpID: empID}, nil
}

func (s *stubUserService) UpdateProfile(_ context.Context, empID string, p dto.UpdateProfileDTO, image *dto.FileUpload) (*dto.UserDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, p)
	if image != nil {
		s.images = append(s.images, image.Filename)
	}
	return &dto.UserDTO{EmpID: empID}, nil
}

func (s *stubUserService) ListEmployeeIDs(context.Context) ([]dto.EmployeeIDDTO, error) {
	return []dto.EmployeeIDDTO{{EmpID: "AMEMP000", Name: "Asha Rao"}, {EmpID: "AMEMP001", Name: "Ravi Iyer"}}, nil
}

func (s *stubUserService) GetLeaveCounts(context.Context, string) ([]dto.LeaveCountDTO, error) {
	return []dto.LeaveCountDTO{{LeaveType: "casual", LeaveCount: 12}}, nil
}

type stubNoteService struct {
	mu    sync.Mutex
	notes map[uint64]dto.StickyNoteDTO
	next  uint64
}

func (s *stubNoteService) CreateNote(_ context.Context, empID, note string) (*dto.StickyNoteDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	n := dto.StickyNoteDTO{ID: s.next, Note: note, EmpID: empID}
	s.notes[n.ID] = n
	return &n, nil
}

func (s *stubNoteService) GetNotes(_ context.Context, empID string) ([]dto.StickyNoteDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []dto.StickyNoteDTO{}
	for _, n := range s.notes {
		if n.EmpID == empID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *stubNoteService) DeleteNote(_ context.Context, id uint64, empID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	if !ok || n.EmpID != empID {
		return apperrors.NewNotFoundError("stickynotes not found, wrong input.")
	}
	delete(s.notes, id)
	return nil
}

type RouterTestSuite struct {
	suite.Suite
	Echo  *echo.Echo
	Auth  *stubAuthService
	Users *stubUserService
	Notes *stubNoteService

	UserToken  string
	AdminToken string
}

func (s *RouterTestSuite) SetupTest() {
	e := echo.New()
	v, err := customvalidator.New()
	s.Require().NoError(err)
	e.Validator = utils.NewValidator(v)

	jwtSvc := service.NewJWTService("router-test-secret", time.Hour)
	s.Auth = &stubAuthService{
		jwt: jwtSvc,
		accounts: map[string]stubAccount{
			"asha":  {empID: "AMEMP000", password: "secret1", role: "user"},
			"admin": {empID: "AMEMP001", password: "secret1", role: dto.RoleAdmin},
		},
		sessions: map[string]string{},
	}
	s.Users = &stubUserService{}
	s.Notes = &stubNoteService{notes: map[uint64]dto.StickyNoteDTO{}}

	nop := zap.NewNop()
	Mount(e, &Services{Auth: s.Auth, User: s.Users, StickyNote: s.Notes}, jwtSvc, &Loggers{Main: nop, Auth: nop, User: nop})
	s.Echo = e

	s.UserToken = s.login("asha")
	s.AdminToken = s.login("admin")
}

func (s *RouterTestSuite) login(username string) string {
	rec := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": "secret1"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Body dto.LoginResponseDTO `json:"body"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Require().NotEmpty(resp.Body.Token)
	return resp.Body.Token
}

func (s *RouterTestSuite) do(method, target, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func (s *RouterTestSuite) doMultipart(method, target, token string, fields map[string]string, fileField, fileName string, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		s.Require().NoError(w.WriteField(k, v))
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, fileName)
		s.Require().NoError(err)
		_, err = part.Write(content)
		s.Require().NoError(err)
	}
	s.Require().NoError(w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Body    json.RawMessage `json:"body"`
}

func (s *RouterTestSuite) decode(rec *httptest.ResponseRecorder) envelope {
	var env envelope
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func registerFields() map[string]string {
	return map[string]string{
		"username":           "meera",
		"password":           "secret1",
		"first_name":         "Meera",
		"last_name":          "Das",
		"email":              "meera@example.com",
		"team_id":            "1",
		"completed_projects": "4",
	}
}

func (s *RouterTestSuite) TestRegisterWithImage() {
	rec := s.doMultipart(http.MethodPost, "/api/auth/register", "", registerFields(), "image", "me.png", pngHeader)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	env := s.decode(rec)
	s.True(env.Status)
	s.Require().Len(s.Users.registered, 1)
	reg := s.Users.registered[0]
	s.Equal(uint64(1), reg.TeamID)
	s.Require().NotNil(reg.CompletedProjects)
	s.Equal(4, *reg.CompletedProjects)
	s.Equal([]string{"me.png"}, s.Users.images)
}

func (s *RouterTestSuite) TestRegisterIgnoresRequestedRole() {
	fields := registerFields()
	fields["role"] = "admin"

	rec := s.doMultipart(http.MethodPost, "/api/auth/register", "", fields, "", "", nil)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	s.Len(s.Users.registered, 1)
	s.Zero(s.Users.admins)
	var created dto.UserDTO
	s.Require().NoError(json.Unmarshal(s.decode(rec).Body, &created))
	s.Equal("user", created.Role)
}

func (s *RouterTestSuite) TestRegisterValidation() {
	fields := registerFields()
	fields["email"] = "not-an-email"
	delete(fields, "username")

	rec := s.doMultipart(http.MethodPost, "/api/auth/register", "", fields, "", "", nil)
	s.Require().Equal(http.StatusBadRequest, rec.Code)

	env := s.decode(rec)
	s.False(env.Status)
	var problems []utils.FieldError
	s.Require().NoError(json.Unmarshal(env.Body, &problems))
	got := map[string]string{}
	for _, p := range problems {
		got[p.Field] = p.Tag
	}
	s.Equal("required", got["username"])
	s.Equal("email", got["email"])
	s.Empty(s.Users.registered)
}

func (s *RouterTestSuite) TestRegisterRejectsNonImage() {
	rec := s.doMultipart(http.MethodPost, "/api/auth/register", "", registerFields(), "image", "notes.txt", []byte("plain text"))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Empty(s.Users.registered)
}

func (s *RouterTestSuite) TestLoginFailure() {
	rec := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "asha", "password": "nope"})
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "asha"})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *RouterTestSuite) TestProtectedRoutesRequireToken() {
	rec := s.do(http.MethodGet, "/api/users/AMEMP000", "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/users/AMEMP000", "garbage", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/users/AMEMP000", s.UserToken, nil)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/users/AMEMP404", s.UserToken, nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *RouterTestSuite) TestLogoutRevokesToken() {
	rec := s.do(http.MethodPost, "/api/auth/logout/AMEMP001", s.UserToken, nil)
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/logout/AMEMP000", s.UserToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/users/ids", s.UserToken, nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RouterTestSuite) TestUpdateProfileJSON() {
	rec := s.do(http.MethodPut, "/api/users/AMEMP000", s.UserToken, map[string]interface{}{
		"address":            "12 Lake Road",
		"completed_projects": 3,
		"public_id":          "avatars/old.png",
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	s.Require().Len(s.Users.updates, 1)
	upd := s.Users.updates[0]
	s.Equal("avatars/old.png", upd.PublicID)
	s.Equal("12 Lake Road", upd.Fields["address"])
	s.Equal(float64(3), upd.Fields["completed_projects"])
	s.NotContains(upd.Fields, "emp_id")
}

func (s *RouterTestSuite) TestUpdateProfileMultipart() {
	rec := s.doMultipart(http.MethodPut, "/api/users/AMEMP000", s.UserToken,
		map[string]string{"designation": "Engineer", "public_id": "avatars/old.png"}, "file", "new.png", pngHeader)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	s.Require().Len(s.Users.updates, 1)
	s.Equal("avatars/old.png", s.Users.updates[0].PublicID)
	s.Equal("Engineer", s.Users.updates[0].Fields["designation"])
	s.Equal([]string{"new.png"}, s.Users.images)
}

func (s *RouterTestSuite) TestUpdateProfileOwnership() {
	rec := s.do(http.MethodPut, "/api/users/AMEMP001", s.UserToken, map[string]interface{}{"address": "x"})
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPut, "/api/users/AMEMP000", s.AdminToken, map[string]interface{}{"address": "x"})
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterTestSuite) TestEmployeeDirectory() {
	rec := s.do(http.MethodGet, "/api/users/ids", s.UserToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var ids []dto.EmployeeIDDTO
	s.Require().NoError(json.Unmarshal(s.decode(rec).Body, &ids))
	s.Len(ids, 2)

	rec = s.do(http.MethodGet, "/api/users/AMEMP000/leave-counts", s.UserToken, nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterTestSuite) TestExportRequiresAdmin() {
	rec := s.do(http.MethodGet, "/api/users/export", s.UserToken, nil)
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/api/users/export", s.AdminToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get(echo.HeaderContentType))
	s.True(strings.HasPrefix(rec.Header().Get(echo.HeaderContentDisposition), "attachment; filename=employees_"))
	s.True(bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func (s *RouterTestSuite) TestStickyNotes() {
	rec := s.do(http.MethodPost, "/api/sticky-notes", s.UserToken, map[string]string{"note": "call HR"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var note dto.StickyNoteDTO
	s.Require().NoError(json.Unmarshal(s.decode(rec).Body, &note))
	s.Equal("AMEMP000", note.EmpID)

	rec = s.do(http.MethodPost, "/api/sticky-notes", s.UserToken, map[string]string{"note": "x", "emp_id": "AMEMP001"})
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/api/sticky-notes/AMEMP001", s.UserToken, nil)
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodDelete, "/api/sticky-notes/1/AMEMP001", s.AdminToken, nil)
	s.Require().Equal(http.StatusNotFound, rec.Code)
	s.Equal("stickynotes not found, wrong input.", s.decode(rec).Message)

	rec = s.do(http.MethodDelete, "/api/sticky-notes/abc/AMEMP000", s.UserToken, nil)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, "/api/sticky-notes/1/AMEMP000", s.UserToken, nil)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/sticky-notes/AMEMP000", s.UserToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`[]`, string(s.decode(rec).Body))
}

func (s *RouterTestSuite) TestOTPVerification() {
	rec := s.do(http.MethodPost, "/api/auth/otp/verify", "", map[string]string{"email": "asha@example.com", "otp": "1111"})
	s.Equal(http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/otp/verify", "", map[string]string{"email": "asha@example.com", "otp": "4821"})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`[{"email":"asha@example.com"}]`, string(s.decode(rec).Body))

	rec = s.do(http.MethodPost, "/api/auth/otp/verify", "", map[string]string{"email": "asha@example.com", "otp": "48a1"})
	s.Require().Equal(http.StatusBadRequest, rec.Code)
	var problems []utils.FieldError
	s.Require().NoError(json.Unmarshal(s.decode(rec).Body, &problems))
	s.Require().Len(problems, 1)
	s.Equal("otp", problems[0].Field)
	s.Equal("otp", problems[0].Tag)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
