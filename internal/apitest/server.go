// Package apitest runs an in-process fake of the Attendo API for tests.
package apitest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/attendo/attendo/pkg/domain"
)

// DefaultToken is the bearer token Login hands out and protected routes accept.
const DefaultToken = "test-token"

// DefaultOTP is the one-time password ForgotPassword "sends".
const DefaultOTP = "123456"

// Request is one request the server received.
type Request struct {
	Method string
	Path   string // relative to the API root
	Header http.Header
	Body   []byte
}

// Decode unmarshals the request body into v.
func (r Request) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

type failure struct {
	status int
	body   any
}

type account struct {
	member   domain.Member
	password string
	otp      string
}

// Server is a fake Attendo API. Its state lives in memory and every handler
// takes the same lock, so tests can seed and inspect it between calls.
type Server struct {
	srv *httptest.Server

	mu         sync.Mutex
	token      string
	requests   []Request
	failures   map[string]failure
	accounts   map[string]*account
	orgs       map[int]domain.Organization
	members    map[int][]domain.Member
	events     map[int][]domain.Event
	apiKeys    map[int]string
	halls      map[int]domain.Hall
	sessions   map[int]domain.Session
	attendance map[int][]domain.AttendanceRecord
	nextID     int
	now        func() time.Time
}

// New starts a fake API and closes it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		token:      DefaultToken,
		failures:   make(map[string]failure),
		accounts:   make(map[string]*account),
		orgs:       make(map[int]domain.Organization),
		members:    make(map[int][]domain.Member),
		events:     make(map[int][]domain.Event),
		apiKeys:    make(map[int]string),
		halls:      make(map[int]domain.Hall),
		sessions:   make(map[int]domain.Session),
		attendance: make(map[int][]domain.AttendanceRecord),
		nextID:     1,
		now:        func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) },
	}
	s.srv = httptest.NewServer(s.routes())
	t.Cleanup(s.srv.Close)
	return s
}

// URL is the API root, the value a client is constructed with.
func (s *Server) URL() string {
	return s.srv.URL + "/api"
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Route("/api", func(r chi.Router) {
		r.Use(s.record)

		r.Post("/Account/Register", s.register)
		r.Post("/Account/Login", s.login)
		r.Post("/Account/Forgot-Password", s.forgotPassword)
		r.Post("/Account/verify-rest-password-otp", s.resetPassword)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Route("/Organization", func(r chi.Router) {
				r.Post("/create-organization", s.createOrganization)
				r.Get("/user-orgs", s.listOrganizations)
				r.Post("/add-member", s.addMember)
				r.Get("/{id}", s.getOrganization)
				r.Put("/{id}", s.updateOrganization)
				r.Delete("/{id}", s.deleteOrganization)
				r.Get("/{id}/users", s.listMembers)
				r.Post("/{id}/generate-api-key", s.generateAPIKey)
				r.Get("/{id}/events", s.listEvents)
			})
			r.Route("/Hall", func(r chi.Router) {
				r.Post("/create-hall", s.createHall)
				r.Get("/get-all-halls/{orgID}", s.listHalls)
				r.Get("/{id}", s.getHall)
				r.Put("/{id}", s.updateHall)
				r.Delete("/{id}", s.deleteHall)
			})
			r.Route("/Session", func(r chi.Router) {
				r.Post("/Create-Session", s.createSession)
				r.Get("/get-all-sessions", s.listSessions)
				r.Get("/hall/{hallID}", s.listSessionsByHall)
				r.Get("/{id}", s.getSession)
				r.Put("/{id}", s.updateSession)
				r.Delete("/{id}", s.deleteSession)
				r.Get("/{id}/attendance", s.listAttendance)
				r.Get("/{id}/attendance/internal", s.listAttendance)
				r.Get("/{id}/csv/internal", s.exportCSV)
			})
		})
	})
	return r
}

// record logs the request and short-circuits it when a failure was
// registered for its method and path.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		path := strings.TrimPrefix(r.URL.Path, "/api")

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		f, failed := s.failures[r.Method+" "+path]
		s.mu.Unlock()

		if failed {
			if raw, ok := f.body.(string); ok {
				w.WriteHeader(f.status)
				io.WriteString(w, raw) //nolint:errcheck
				return
			}
			writeJSON(w, f.status, f.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		want := s.token
		s.mu.Unlock()
		if want == "" || r.Header.Get("Authorization") != "Bearer "+want {
			fail(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SetToken changes the token protected routes accept. An empty token rejects
// every protected request with 401.
func (s *Server) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Fail makes every later request to method and path answer status with body.
// A string body is written verbatim; anything else is encoded as JSON.
func (s *Server) Fail(method, path string, status int, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, body: body}
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests matched method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Last returns the most recent request, or false when none was made.
func (s *Server) Last() (Request, bool) {
	reqs := s.Requests()
	if len(reqs) == 0 {
		return Request{}, false
	}
	return reqs[len(reqs)-1], true
}

// --- seeding ---

// AddAccount registers a login for email and returns the member record.
func (s *Server) AddAccount(email, password string) domain.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := domain.Member{ID: uuid.NewString(), Email: email, UserName: strings.Split(email, "@")[0], Role: domain.RoleAdmin}
	s.accounts[strings.ToLower(email)] = &account{member: m, password: password}
	return m
}

// Password returns the current password of email.
func (s *Server) Password(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[strings.ToLower(email)]; ok {
		return a.password
	}
	return ""
}

// AddOrganization stores o, assigning an id when it has none.
func (s *Server) AddOrganization(o domain.Organization) domain.Organization {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.OrganizationID == 0 {
		o.OrganizationID = s.id()
	}
	if o.OrganizationCode == 0 {
		o.OrganizationCode = 100000 + o.OrganizationID
	}
	s.orgs[o.OrganizationID] = o
	return o
}

// AddMember attaches m to an organization.
func (s *Server) AddMember(orgID int, m domain.Member) domain.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	s.members[orgID] = append(s.members[orgID], m)
	return m
}

// AddHall stores h, assigning an id when it has none.
func (s *Server) AddHall(h domain.Hall) domain.Hall {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.ID == 0 {
		h.ID = s.id()
	}
	s.halls[h.ID] = h
	return h
}

// AddSession stores ses, assigning an id when it has none.
func (s *Server) AddSession(ses domain.Session) domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ses.SessionID == 0 {
		ses.SessionID = s.id()
	}
	s.sessions[ses.SessionID] = ses
	return ses
}

// AddAttendance appends check-ins to a session.
func (s *Server) AddAttendance(sessionID int, records ...domain.AttendanceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attendance[sessionID] = append(s.attendance[sessionID], records...)
}

// Hall returns the stored hall with id.
func (s *Server) Hall(id int) (domain.Hall, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.halls[id]
	return h, ok
}

// Session returns the stored session with id.
func (s *Server) Session(id int) (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ses, ok := s.sessions[id]
	return ses, ok
}

// Organization returns the stored organization with id.
func (s *Server) Organization(id int) (domain.Organization, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orgs[id]
	return o, ok
}

// id must be called with mu held.
func (s *Server) id() int {
	id := s.nextID
	s.nextID++
	return id
}

// event must be called with mu held.
func (s *Server) event(orgID int, kind, message string) {
	s.events[orgID] = append(s.events[orgID], domain.Event{
		ID:        s.id(),
		Type:      kind,
		Message:   message,
		CreatedAt: domain.Time{Time: s.now()},
	})
}

// --- wire helpers ---

type envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    any      `json:"data"`
	Errors  []string `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func succeed(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: message, Data: data, Errors: []string{}})
}

func fail(w http.ResponseWriter, status int, message string, errs ...string) {
	if errs == nil {
		errs = []string{}
	}
	writeJSON(w, status, envelope{Success: false, Message: message, Errors: errs})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, key))
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

// --- accounts ---

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName    string `json:"fullName"`
		UserName    string `json:"userName"`
		Email       string `json:"email"`
		PhoneNumber string `json:"phoneNumber"`
		Password    string `json:"password"`
		Role        string `json:"role"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(req.Email)
	if _, exists := s.accounts[key]; exists {
		fail(w, http.StatusBadRequest, "Registration failed", "Email '"+req.Email+"' is already taken.")
		return
	}
	m := domain.Member{
		ID:          uuid.NewString(),
		FullName:    req.FullName,
		UserName:    req.UserName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
	}
	s.accounts[key] = &account{member: m, password: req.Password}
	succeed(w, "User registered successfully", m.ID)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, exists := s.accounts[strings.ToLower(req.Email)]
	if !exists || a.password != req.Password {
		fail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if s.token == "" {
		s.token = DefaultToken
	}
	succeed(w, "Login successful", s.token)
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, exists := s.accounts[strings.ToLower(req.Email)]
	if !exists {
		fail(w, http.StatusNotFound, "User not found")
		return
	}
	a.otp = DefaultOTP
	succeed(w, "OTP sent to your email", nil)
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, exists := s.accounts[strings.ToLower(req.Email)]
	if !exists || a.otp == "" || a.otp != req.OTP {
		fail(w, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}
	a.password = req.NewPassword
	a.otp = ""
	succeed(w, "Password reset successfully", nil)
}

// --- organizations ---

type organizationBody struct {
	OrganizationName string `json:"organizationName"`
	OrganizationType string `json:"organizationType"`
	ContactEmail     string `json:"conatactEmail"`
}

func (s *Server) createOrganization(w http.ResponseWriter, r *http.Request) {
	var req organizationBody
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orgs {
		if strings.EqualFold(o.OrganizationName, req.OrganizationName) {
			fail(w, http.StatusConflict, "Organization already exists")
			return
		}
	}
	id := s.id()
	o := domain.Organization{
		OrganizationID:   id,
		OrganizationName: req.OrganizationName,
		OrganizationType: req.OrganizationType,
		ContactEmail:     req.ContactEmail,
		OrganizationCode: 100000 + id,
		CreatedAt:        domain.Time{Time: s.now()},
	}
	s.orgs[id] = o
	s.event(id, "organization.created", "Organization "+o.OrganizationName+" created")
	succeed(w, "Organization created successfully", o)
}

func (s *Server) listOrganizations(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Organization, 0, len(s.orgs))
	for id := 1; id < s.nextID; id++ {
		if o, exists := s.orgs[id]; exists {
			out = append(out, o)
		}
	}
	succeed(w, "", out)
}

func (s *Server) getOrganization(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id")
	if !valid {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, exists := s.orgs[id]
	if !exists {
		fail(w, http.StatusNotFound, "Organization not found")
		return
	}
	succeed(w, "", o)
}

func (s *Server) updateOrganization(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id")
	if !valid {
		return
	}
	var req organizationBody
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, exists := s.orgs[id]
	if !exists {
		fail(w, http.StatusNotFound, "Organization not found")
		return
	}
	o.OrganizationName = req.OrganizationName
	o.OrganizationType = req.OrganizationType
	o.ContactEmail = req.ContactEmail
	s.orgs[id] = o
	s.event(id, "organization.updated", "Organization "+o.OrganizationName+" updated")
	succeed(w, "Organization updated successfully", o)
}

func (s *Server) deleteOrganization(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id")
	if !valid {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orgs[id]; !exists {
		fail(w, http.StatusNotFound, "Organization not found")
		return
	}
	delete(s.orgs, id)
	delete(s.members, id)
	delete(s.events, id)
	succeed(w, "Organization deleted successfully", nil)
}

func (s *Server) addMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrganizationID int    `json:"organizationId"`
		Email          string `json:"email"`
		FullName       string `json:"fullName"`
		UserName       string `json:"userName"`
		Password       string `json:"password"`
		Role           string `json:"role"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orgs[req.OrganizationID]; !exists {
		fail(w, http.StatusNotFound, "Organization not found")
		return
	}
	for _, m := range s.members[req.OrganizationID] {
		if strings.EqualFold(m.Email, req.Email) {
			fail(w, http.StatusBadRequest, "Failed to add member", "User is already a member of this organization")
			return
		}
	}
	m := domain.Member{
		ID:       uuid.NewString(),
		FullName: req.FullName,
		UserName: req.UserName,
		Email:    req.Email,
		Role:     req.Role,
	}
	s.members[req.OrganizationID] = append(s.members[req.OrganizationID], m)
	s.accounts[strings.ToLower(req.Email)] = &account{member: m, password: req.Password}
	s.event(req.OrganizationID, "member.added", m.FullName+" joined as "+m.Role)
	succeed(w, "Member added successfully", nil)
}

func (s *Server) listMembers(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id")
	if !valid {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]domain.Member{}, s.members[id]...)
	succeed(w, "", out)
}

func (s *Server) generateAPIKey(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id")
	if !valid {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orgs[id]; !exists {
		fail(w, http.StatusNotFound, "Organization not found")
		return
	}
	key := "atd_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	s.apiKeys[id] = key
	s.event(id, "apikey.generated", "API key regenerated")
	succeed(w, "API key generated", domain.APIKey{APIKey: key})
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id")
	if !valid {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]domain.Event{}, s.events[id]...)
	succeed(w, "", out)
}

// --- halls ---

type hallBody struct {
	HallName       string  `json:"hallName"`
	Capacity       int     `json:"capacity"`
	HallArea       float64 `json:"hallArea"`
	OrganizationID int     `json:"organizationId"`
}

func (s *Server) createHall(w http.ResponseWriter, r *http.Request) {
	var req hallBody
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orgs[req.OrganizationID]; !exists {
		fail(w, http.StatusBadRequest, "Validation failed", "Organization does not exist")
		return
	}
	h := domain.Hall{
		ID:             s.id(),
		HallName:       req.HallName,
		Capacity:       req.Capacity,
		HallArea:       req.HallArea,
		OrganizationID: req.OrganizationID,
	}
	s.halls[h.ID] = h
	s.event(h.OrganizationID, "hall.created", "Hall "+h.HallName+" created")
	succeed(w, "Hall created successfully", h)
}

func (s *Server) listHalls(w http.ResponseWriter, r *http.Request) {
	orgID, valid := pathID(w, r, "orgID")
	if !valid {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Hall{}
	for id := 1; id < s.nextID; id++ {
		if h, exists := s.halls[id]; exists && h.OrganizationID == orgID {
			out = append(out, h)
		}
	}
	succeed(w, "", out)
}

func (s *Server) getHall(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id")
	if !valid {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h, exists := s.halls[id]
	if !exists {
		fail(w, http.StatusNotFound, "Hall not found")
		return
	}
	succeed(w, "", h)
}

func (s *Server) updateHall(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id")
	if !valid {
		return
	}
	var req hallBody
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h, exists := s.halls[id]
	if !exists {
		fail(w, http.StatusNotFound, "Hall not found")
		return
	}
	h.HallName = req.HallName
	h.Capacity = req.Capacity
	h.HallArea = req.HallArea
	s.halls[id] = h
	succeed(w, "Hall updated successfully", h)
}

func (s *Server) deleteHall(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id")
	if !valid {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.halls[id]; !exists {
		fail(w, http.StatusNotFound, "Hall not found")
		return
	}
	delete(s.halls, id)
	succeed(w, "Hall deleted successfully", nil)
}

// --- sessions ---

type sessionBody struct {
	OrganizationID int         `json:"organizationId"`
	CreatedBy      string      `json:"createdBy"`
	SessionName    string      `json:"sessionName"`
	ConnectionType string      `json:"connectionType"`
	Longitude      float64     `json:"longitude"`
	Latitude       float64     `json:"latitude"`
	AllowedRadius  float64     `json:"allowedRadius"`
	NetworkSSID    string      `json:"networkSSID"`
	NetworkBSSID   string      `json:"networkBSSID"`
	StartAt        domain.Time `json:"startAt"`
	EndAt          domain.Time `json:"endAt"`
	HallID         int         `json:"hallId"`
}

func (b sessionBody) apply(ses *domain.Session) {
	ses.SessionName = b.SessionName
	ses.ConnectionType = b.ConnectionType
	ses.Longitude = b.Longitude
	ses.Latitude = b.Latitude
	ses.AllowedRadius = b.AllowedRadius
	ses.NetworkSSID = b.NetworkSSID
	ses.NetworkBSSID = b.NetworkBSSID
	ses.StartAt = b.StartAt
	ses.EndAt = b.EndAt
	ses.HallID = b.HallID
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req sessionBody
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.halls[req.HallID]; !exists {
		fail(w, http.StatusBadRequest, "Validation failed", "Hall does not exist")
		return
	}
	ses := domain.Session{
		SessionID:      s.id(),
		OrganizationID: req.OrganizationID,
		CreatedBy:      req.CreatedBy,
		CreatedAt:      domain.Time{Time: s.now()},
	}
	req.apply(&ses)
	s.sessions[ses.SessionID] = ses
	s.event(ses.OrganizationID, "session.created", "Session "+ses.SessionName+" scheduled")
	succeed(w, "Session created successfully", nil)
}

func (s *Server) listSessions(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	succeed(w, "", s.sessionsWhere(func(domain.Session) bool { return true }))
}

func (s *Server) listSessionsByHall(w http.ResponseWriter, r *http.Request) {
	hallID, valid := pathID(w, r, "hallID")
	if !valid {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	succeed(w, "", s.sessionsWhere(func(ses domain.Session) bool { return ses.HallID == hallID }))
}

// sessionsWhere must be called with mu held.
func (s *Server) sessionsWhere(keep func(domain.Session) bool) []domain.Session {
	out := []domain.Session{}
	for id := 1; id < s.nextID; id++ {
		if ses, exists := s.sessions[id]; exists && keep(ses) {
			out = append(out, ses)
		}
	}
	return out
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id")
	if !valid {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ses, exists := s.sessions[id]
	if !exists {
		fail(w, http.StatusNotFound, "Session not found")
		return
	}
	succeed(w, "", ses)
}

func (s *Server) updateSession(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id")
	if !valid {
		return
	}
	var req sessionBody
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ses, exists := s.sessions[id]
	if !exists {
		fail(w, http.StatusNotFound, "Session not found")
		return
	}
	req.apply(&ses)
	s.sessions[id] = ses
	succeed(w, "Session updated successfully", ses)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id")
	if !valid {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[id]; !exists {
		fail(w, http.StatusNotFound, "Session not found")
		return
	}
	delete(s.sessions, id)
	delete(s.attendance, id)
	succeed(w, "Session deleted successfully", nil)
}

func (s *Server) listAttendance(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id")
	if !valid {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[id]; !exists {
		fail(w, http.StatusNotFound, "Session not found")
		return
	}
	succeed(w, "", append([]domain.AttendanceRecord{}, s.attendance[id]...))
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id")
	if !valid {
		return
	}
	s.mu.Lock()
	_, exists := s.sessions[id]
	records := append([]domain.AttendanceRecord(nil), s.attendance[id]...)
	s.mu.Unlock()
	if !exists {
		fail(w, http.StatusNotFound, "Session not found")
		return
	}
	if len(records) == 0 {
		fail(w, http.StatusNotFound, "No attendance records found for this session")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance-`+strconv.Itoa(id)+`.csv"`)
	cw := csv.NewWriter(w)
	cw.Write([]string{"UserId", "FullName", "UserName", "TimeStamp", "VerificationType", "MatchScore"}) //nolint:errcheck
	for _, rec := range records {
		score := ""
		if rec.MatchScore != nil {
			score = strconv.FormatFloat(*rec.MatchScore, 'f', 2, 64)
		}
		cw.Write([]string{ //nolint:errcheck
			rec.UserID,
			rec.FullName,
			rec.UserName,
			rec.TimeStamp.UTC().Format(time.RFC3339),
			rec.VerificationType,
			score,
		})
	}
	cw.Flush()
}
