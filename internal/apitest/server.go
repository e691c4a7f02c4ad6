// Package apitest runs an in-process fake of the wellness backend for
// tests. It speaks the real envelope format, issues JWT bearer tokens and
// counts every request so tests can assert on network traffic.
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Record is a stored backend entity.
type Record = map[string]interface{}

type account struct {
	hash []byte
	user Record
}

type failure struct {
	status  int
	message string
}

// Server is a fake backend mounted under /api.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	collections map[string][]Record
	school      Record
	accounts    map[string]account
	tokens      map[string]string
	calls       map[string]int
	failures    map[string][]failure
	gate        chan struct{}
	delay       time.Duration
	requireAuth bool
	secret      []byte
}

// Collections served with the generic CRUD routes.
var Collections = []string{
	"students", "cases", "goals", "assessments", "assessment-assignments",
	"observations", "alerts", "bookings", "webinars", "users",
}

// New starts a server and registers its shutdown with t.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		collections: make(map[string][]Record),
		school:      Record{"id": "school-1", "name": "Harapan High School"},
		accounts:    make(map[string]account),
		tokens:      make(map[string]string),
		calls:       make(map[string]int),
		failures:    make(map[string][]failure),
		secret:      []byte(uuid.NewString()),
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

// APIURL is the base URL clients should be configured with.
func (s *Server) APIURL() string { return s.URL + "/api" }

// RequireAuth makes every route except login answer 401 without a valid
// bearer token.
func (s *Server) RequireAuth() {
	s.mu.Lock()
	s.requireAuth = true
	s.mu.Unlock()
}

// AddUser registers an account that can sign in.
func (s *Server) AddUser(email, password, role string) Record {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	user := Record{"id": uuid.NewString(), "email": email, "name": strings.Split(email, "@")[0], "role": role, "active": true}
	s.mu.Lock()
	s.accounts[email] = account{hash: hash, user: user}
	s.collections["users"] = append(s.collections["users"], user)
	s.mu.Unlock()
	return user
}

// IssueToken returns a valid token for an existing account.
func (s *Server) IssueToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[email]
	if !ok {
		panic("apitest: unknown account " + email)
	}
	return s.issueLocked(acc.user)
}

// RevokeTokens invalidates every issued token.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	s.tokens = make(map[string]string)
	s.mu.Unlock()
}

// Seed stores records in a collection. Records without an id get one.
func (s *Server) Seed(collection string, records ...Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if _, ok := r["id"]; !ok {
			r["id"] = uuid.NewString()
		}
		s.collections[collection] = append(s.collections[collection], r)
	}
}

// Records returns a snapshot of a collection.
func (s *Server) Records(collection string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.collections[collection]))
	copy(out, s.collections[collection])
	return out
}

// Fail makes the next matching request answer status with message.
// route is "METHOD /path" relative to /api, e.g. "POST /cases".
func (s *Server) Fail(route string, status int, message string) {
	s.mu.Lock()
	s.failures[route] = append(s.failures[route], failure{status: status, message: message})
	s.mu.Unlock()
}

// Calls returns how many requests hit route ("METHOD /path").
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// TotalCalls returns the number of requests served.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

// Routes lists every route that was called, sorted.
func (s *Server) Routes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.calls))
	for r := range s.calls {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Hold blocks GET requests until the returned release func is called.
func (s *Server) Hold() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.gate = gate
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.gate = nil
			s.mu.Unlock()
			close(gate)
		})
	}
}

// SetDelay adds latency to every request.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	s.delay = d
	s.mu.Unlock()
}

func (s *Server) issueLocked(user Record) string {
	claims := jwt.MapClaims{
		"sub":   user["id"],
		"email": user["email"],
		"role":  user["role"],
		"exp":   time.Now().Add(time.Hour).Unix(),
		"jti":   uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	s.tokens[token] = fmt.Sprint(user["email"])
	return token
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.track())

	api := r.Group("/api")
	api.POST("/auth/login", s.login)

	authed := api.Group("", s.authenticate())
	authed.POST("/auth/logout", s.logout)

	authed.GET("/users/:id", s.getUser)
	authed.PUT("/users/:id", s.updateUser)
	authed.POST("/users/:id/avatar", s.upload("users", "avatar_url", "avatars"))

	authed.GET("/school", s.getSchool)
	authed.PUT("/school", s.updateSchool)
	authed.POST("/school/logo", s.upload("school", "logo_url", "logos"))

	authed.POST("/cases/:id/close", s.transition("cases", "status", "closed", "resolution", "closed_at"))
	authed.POST("/cases/:id/notes", s.addNote)
	authed.GET("/cases/:id/goals", s.goalsByCase)
	authed.PATCH("/goals/:id/progress", s.goalProgress)
	authed.POST("/assessments/:id/assign", s.assign)
	authed.POST("/alerts/:id/acknowledge", s.transition("alerts", "status", "acknowledged", "", ""))
	authed.POST("/alerts/:id/resolve", s.transition("alerts", "status", "resolved", "resolution", "resolved_at"))
	authed.POST("/bookings/:id/cancel", s.transition("bookings", "status", "cancelled", "reason", ""))
	authed.POST("/webinars/:id/register", s.register)

	authed.GET("/analytics/dashboard", s.dashboard)
	authed.GET("/analytics/risk-trend", s.riskTrend)
	authed.GET("/analytics/assessment-completion", s.completion)

	for _, name := range Collections {
		if name != "users" {
			authed.GET("/"+name+"/:id", s.get(name))
			authed.PUT("/"+name+"/:id", s.update(name))
		}
		authed.GET("/"+name, s.list(name))
		authed.POST("/"+name, s.create(name))
		authed.DELETE("/"+name+"/:id", s.remove(name))
	}
	return r
}

// track counts the request, applies configured latency, gates and
// queued failures before any handler runs.
func (s *Server) track() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.Request.Method + " " + strings.TrimPrefix(c.Request.URL.Path, "/api")

		s.mu.Lock()
		s.calls[route]++
		delay := s.delay
		gate := s.gate
		var injected *failure
		if queued := s.failures[route]; len(queued) > 0 {
			injected = &queued[0]
			s.failures[route] = queued[1:]
		}
		s.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		if gate != nil && c.Request.Method == http.MethodGet {
			select {
			case <-gate:
			case <-c.Request.Context().Done():
				c.Abort()
				return
			}
		}
		if injected != nil {
			c.AbortWithStatusJSON(injected.status, gin.H{"status": "error", "message": injected.message})
			return
		}
		c.Next()
	}
}

func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		required := s.requireAuth
		s.mu.Unlock()
		if !required {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		s.mu.Lock()
		_, ok := s.tokens[token]
		s.mu.Unlock()
		if header == "" || !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Unauthenticated."})
			return
		}
		c.Set("token", token)
		c.Next()
	}
}

func success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"status": "success", "data": data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"status": "error", "message": message})
}
