// Package backendtest runs an in-process stand-in for the dashboard backend's
// /api/* endpoints, for tests.
package backendtest

import (
	"encoding/json"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/grse/dashboard/internal/domain"
)

// Seeded accounts
const (
	AdminUsername  = "admin"
	AdminPassword  = "admin-pass"
	ViewerUsername = "viewer"
	ViewerPassword = "viewer-pass"
)

type userRecord struct {
	user         domain.User
	passwordHash []byte
}

type failure struct {
	status  int
	message string
}

// Server is a fake backend listening on a loopback port
type Server struct {
	URL string

	app *fiber.App

	mu         sync.Mutex
	users      map[int64]*userRecord
	nextID     int64
	projects   []domain.RawProject
	financials domain.RawFinancials
	suppliers  []domain.RawSupplier
	failures   map[string]failure
	hits       map[string]int
	bodies     map[string]map[string]any
	bearers    []string
}

// New starts a seeded fake backend and stops it when the test ends
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		users:      map[int64]*userRecord{},
		failures:   map[string]failure{},
		hits:       map[string]int{},
		bodies:     map[string]map[string]any{},
		projects:   SeedProjects(),
		financials: SeedFinancials(),
		suppliers:  SeedSuppliers(),
	}
	s.AddUser("Asha Rao", AdminUsername, AdminPassword, "Admin", domain.AllPages()...)
	s.AddUser("Vikram Sen", ViewerUsername, ViewerPassword, "Viewer", domain.PageHome, domain.PageProjects)

	s.app = fiber.New(fiber.Config{DisableStartupMessage: true})
	s.app.Use(s.record)
	api := s.app.Group("/api")
	api.Get("/status", s.status)
	api.Post("/login", s.login)
	api.Get("/projects", s.listProjects)
	api.Get("/financials", s.getFinancials)
	api.Get("/suppliers", s.listSuppliers)
	api.Get("/users", s.listUsers)
	api.Post("/users", s.createUser)
	api.Put("/users/:id", s.updateUser)
	api.Delete("/users/:id", s.deleteUser)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("backendtest: listen: %v", err)
	}
	s.URL = "http://" + ln.Addr().String()

	go func() {
		_ = s.app.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = s.app.Shutdown()
	})

	return s
}

func key(method, path string) string {
	return method + " " + path
}

// Fail makes every request to method+path answer with status until cleared
func (s *Server) Fail(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[key(method, path)] = failure{status: status, message: message}
}

// ClearFailures removes every injected failure
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = map[string]failure{}
}

// Hits counts requests seen for method+path
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[key(method, path)]
}

// BearerTokens returns every bearer credential received, in arrival order
func (s *Server) BearerTokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.bearers...)
}

// LastBody returns the JSON object most recently sent to method+path, as decoded
// from the wire, so tests can tell an omitted key from an empty one
func (s *Server) LastBody(method, path string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.bodies[key(method, path)]
	return body, ok
}

func (s *Server) record(c *fiber.Ctx) error {
	s.mu.Lock()
	k := key(c.Method(), c.Path())
	s.hits[k]++
	// fiber reuses request buffers once the handler returns
	if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		s.bearers = append(s.bearers, strings.Clone(strings.TrimPrefix(auth, "Bearer ")))
	}
	if body := c.Body(); len(body) > 0 {
		var fields map[string]any
		if json.Unmarshal(body, &fields) == nil {
			s.bodies[k] = fields
		}
	}
	f, failing := s.failures[k]
	s.mu.Unlock()

	if failing {
		return c.Status(f.status).JSON(fiber.Map{"message": f.message})
	}
	return c.Next()
}

// AddUser stores a user with a bcrypt-hashed password
func (s *Server) AddUser(name, username, password, role string, pages ...domain.PageID) domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	user := domain.User{
		ID:          s.nextID,
		Name:        name,
		Username:    username,
		Role:        role,
		Permissions: domain.NewPageSet(pages...),
	}
	s.users[user.ID] = &userRecord{user: user, passwordHash: hash}
	return user
}

// PasswordMatches checks a stored password directly
func (s *Server) PasswordMatches(username, password string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.users {
		if rec.user.Username == username {
			return bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(password)) == nil
		}
	}
	return false
}

// UserByUsername returns a stored user
func (s *Server) UserByUsername(username string) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.users {
		if rec.user.Username == username {
			return rec.user, true
		}
	}
	return domain.User{}, false
}

// SetProjects replaces the project rows
func (s *Server) SetProjects(projects []domain.RawProject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = projects
}

// SetFinancials replaces the financials payload
func (s *Server) SetFinancials(financials domain.RawFinancials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.financials = financials
}

// SetSuppliers replaces the supplier rows
func (s *Server) SetSuppliers(suppliers []domain.RawSupplier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppliers = suppliers
}

func (s *Server) status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "Backend is running!",
		"message": "Connected to the API and ready to serve data.",
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.users {
		if rec.user.Username != req.Username {
			continue
		}
		if bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(req.Password)) == nil {
			return c.JSON(rec.user)
		}
		break
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid username or password"})
}

func (s *Server) listProjects(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(s.projects)
}

func (s *Server) getFinancials(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(s.financials)
}

func (s *Server) listSuppliers(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(s.suppliers)
}

func (s *Server) listUsers(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.users[id].user)
	}
	return c.JSON(out)
}

type userRequest struct {
	Name        string   `json:"name"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Password    *string  `json:"password"`
	Permissions []string `json:"permissions"`
}

func (s *Server) createUser(c *fiber.Ctx) error {
	var req userRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if req.Password == nil || *req.Password == "" || req.Username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "username and password are required"})
	}
	if _, exists := s.UserByUsername(req.Username); exists {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "username already exists"})
	}

	perms, _ := domain.ParsePageSet(req.Permissions)
	user := s.AddUser(req.Name, req.Username, *req.Password, req.Role, perms.Pages()...)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": user.ID, "message": "User added successfully"})
}

func (s *Server) updateUser(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid user id"})
	}
	var req userRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	var hash []byte
	if req.Password != nil && *req.Password != "" {
		hash, err = bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.MinCost)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, found := s.users[id]
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
	}
	perms, _ := domain.ParsePageSet(req.Permissions)
	rec.user.Name = req.Name
	rec.user.Username = req.Username
	rec.user.Role = req.Role
	rec.user.Permissions = perms
	if hash != nil {
		rec.passwordHash = hash
	}
	return c.JSON(fiber.Map{"message": "User updated successfully"})
}

func (s *Server) deleteUser(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid user id"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// SeedProjects returns the default project rows
func SeedProjects() []domain.RawProject {
	return []domain.RawProject{
		{ProjectID: "P001", ProjectName: "Frigate Modernization", Status: domain.ProjectStatusAtRisk, TotalBudget: amount("12.5"), BudgetSpent: amount("9.8"), RiskScore: 8},
		{ProjectID: "P002", ProjectName: "Offshore Patrol Vessel", Status: domain.ProjectStatusOnTrack, TotalBudget: amount("8.2"), BudgetSpent: amount("3.1"), RiskScore: 3},
		{ProjectID: "P003", ProjectName: "Dry Dock Expansion", Status: domain.ProjectStatusDelayed, TotalBudget: amount("4.75"), BudgetSpent: amount("4.9"), RiskScore: 9},
		{ProjectID: "P004", ProjectName: "Survey Vessel Refit", Status: domain.ProjectStatusOnTrack, TotalBudget: amount("2.4"), BudgetSpent: amount("1.2"), RiskScore: 2},
	}
}

// SeedFinancials returns the default financials payload
func SeedFinancials() domain.RawFinancials {
	return domain.RawFinancials{
		QuarterlyData: []domain.RawQuarter{
			{Name: "Q1 2024", Revenue: amount("6.5"), Expenditure: amount("5.9")},
			{Name: "Q2 2024", Revenue: amount("7.1"), Expenditure: amount("7.4")},
			{Name: "Q3 2024", Revenue: amount("8.05"), Expenditure: amount("7.2")},
			{Name: "Q4 2024", Revenue: amount("8.9"), Expenditure: amount("7.95")},
		},
		ExpenditureBreakdown: []domain.ExpenditureSlice{
			{Name: "Raw Materials", Value: amount("3.5")},
			{Name: "Labor", Value: amount("2.8")},
			{Name: "Overhead", Value: amount("1.2")},
			{Name: "R&D", Value: amount("0.45")},
		},
	}
}

// SeedSuppliers returns the default supplier rows
func SeedSuppliers() []domain.RawSupplier {
	return []domain.RawSupplier{
		{Name: "Bharat Steel Works", Deliveries: 96, Quality: 98, Risk: domain.SupplierRiskLow},
		{Name: "Coastal Marine Electronics", Deliveries: 88, Quality: 91, Risk: domain.SupplierRiskMedium},
		{Name: "Eastern Propulsion Ltd", Deliveries: 72, Quality: 85, Risk: domain.SupplierRiskHigh},
	}
}
