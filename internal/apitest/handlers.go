package apitest

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type loginPayload struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusUnprocessableEntity, "email and password are required")
		return
	}
	s.mu.Lock()
	acc, ok := s.accounts[req.Email]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acc.hash, []byte(req.Password)) != nil {
		fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	s.mu.Lock()
	token := s.issueLocked(acc.user)
	s.mu.Unlock()
	success(c, http.StatusOK, gin.H{"token": token, "user": acc.user})
}

func (s *Server) logout(c *gin.Context) {
	if token, ok := c.Get("token"); ok {
		s.mu.Lock()
		delete(s.tokens, token.(string))
		s.mu.Unlock()
	}
	success(c, http.StatusOK, nil)
}

func (s *Server) currentUser(c *gin.Context) Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token, ok := c.Get("token"); ok {
		if acc, ok := s.accounts[s.tokens[token.(string)]]; ok {
			return acc.user
		}
	}
	for _, acc := range s.accounts {
		return acc.user
	}
	return nil
}

func (s *Server) list(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Request.URL.Query()
		s.mu.Lock()
		records := s.collections[name]
		out := make([]Record, 0, len(records))
		for _, r := range records {
			if matches(r, query) {
				out = append(out, r)
			}
		}
		s.mu.Unlock()
		success(c, http.StatusOK, out)
	}
}

// matches applies query parameters as equality filters on fields the
// record has. search matches any field as a case-insensitive substring.
func matches(r Record, query map[string][]string) bool {
	for key, values := range query {
		if len(values) == 0 {
			continue
		}
		want := values[0]
		if key == "search" {
			found := false
			for _, v := range r {
				if strings.Contains(strings.ToLower(fmt.Sprint(v)), strings.ToLower(want)) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
			continue
		}
		got, ok := r[key]
		if !ok {
			continue
		}
		if fmt.Sprint(got) != want {
			return false
		}
	}
	return true
}

func (s *Server) find(name, id string) (Record, int) {
	for i, r := range s.collections[name] {
		if fmt.Sprint(r["id"]) == id {
			return r, i
		}
	}
	return nil, -1
}

func (s *Server) get(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		record, _ := s.find(name, c.Param("id"))
		s.mu.Unlock()
		if record == nil {
			fail(c, http.StatusNotFound, singular(name)+" not found")
			return
		}
		success(c, http.StatusOK, record)
	}
}

func (s *Server) create(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body Record
		if err := c.ShouldBindJSON(&body); err != nil {
			fail(c, http.StatusUnprocessableEntity, "invalid payload")
			return
		}
		body["id"] = uuid.NewString()
		now := time.Now().UTC()
		body["created_at"] = now
		body["updated_at"] = now
		s.mu.Lock()
		s.collections[name] = append(s.collections[name], body)
		s.mu.Unlock()
		success(c, http.StatusCreated, body)
	}
}

func (s *Server) update(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body Record
		if err := c.ShouldBindJSON(&body); err != nil {
			fail(c, http.StatusUnprocessableEntity, "invalid payload")
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		record, _ := s.find(name, c.Param("id"))
		if record == nil {
			fail(c, http.StatusNotFound, singular(name)+" not found")
			return
		}
		for k, v := range body {
			if k != "id" {
				record[k] = v
			}
		}
		record["updated_at"] = time.Now().UTC()
		success(c, http.StatusOK, record)
	}
}

func (s *Server) remove(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		_, idx := s.find(name, c.Param("id"))
		if idx < 0 {
			fail(c, http.StatusNotFound, singular(name)+" not found")
			return
		}
		records := s.collections[name]
		s.collections[name] = append(records[:idx:idx], records[idx+1:]...)
		c.Status(http.StatusNoContent)
	}
}

// transition sets field to value and optionally copies a body field and
// stamps a timestamp field.
func (s *Server) transition(name, field, value, bodyField, stampField string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := Record{}
		_ = c.ShouldBindJSON(&body)
		s.mu.Lock()
		defer s.mu.Unlock()
		record, _ := s.find(name, c.Param("id"))
		if record == nil {
			fail(c, http.StatusNotFound, singular(name)+" not found")
			return
		}
		if record[field] == value {
			fail(c, http.StatusConflict, fmt.Sprintf("%s is already %s", singular(name), value))
			return
		}
		record[field] = value
		if bodyField != "" {
			key := bodyField
			if name == "bookings" {
				key = "cancel_reason"
			}
			record[key] = body[bodyField]
		}
		if stampField != "" {
			record[stampField] = time.Now().UTC()
		}
		success(c, http.StatusOK, record)
	}
}

func (s *Server) addNote(c *gin.Context) {
	var body Record
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusUnprocessableEntity, "invalid payload")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, _ := s.find("cases", c.Param("id"))
	if record == nil {
		fail(c, http.StatusNotFound, "case not found")
		return
	}
	note := Record{
		"id":         uuid.NewString(),
		"case_id":    record["id"],
		"body":       body["body"],
		"private":    body["private"],
		"created_at": time.Now().UTC(),
	}
	notes, _ := record["notes"].([]interface{})
	record["notes"] = append(notes, note)
	success(c, http.StatusCreated, note)
}

func (s *Server) goalsByCase(c *gin.Context) {
	caseID := c.Param("id")
	s.mu.Lock()
	out := make([]Record, 0)
	for _, g := range s.collections["goals"] {
		if fmt.Sprint(g["case_id"]) == caseID {
			out = append(out, g)
		}
	}
	s.mu.Unlock()
	success(c, http.StatusOK, out)
}

func (s *Server) goalProgress(c *gin.Context) {
	var body struct {
		Progress *int `json:"progress"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Progress == nil {
		fail(c, http.StatusUnprocessableEntity, "progress is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, _ := s.find("goals", c.Param("id"))
	if record == nil {
		fail(c, http.StatusNotFound, "goal not found")
		return
	}
	record["progress"] = *body.Progress
	if *body.Progress >= 100 {
		record["status"] = "achieved"
	} else {
		record["status"] = "in_progress"
	}
	success(c, http.StatusOK, record)
}

func (s *Server) assign(c *gin.Context) {
	var body struct {
		StudentIDs []string `json:"student_ids"`
		DueDate    string   `json:"due_date"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || len(body.StudentIDs) == 0 {
		fail(c, http.StatusUnprocessableEntity, "student_ids is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	assessment, _ := s.find("assessments", c.Param("id"))
	if assessment == nil {
		fail(c, http.StatusNotFound, "assessment not found")
		return
	}
	out := make([]Record, 0, len(body.StudentIDs))
	for _, studentID := range body.StudentIDs {
		a := Record{
			"id":            uuid.NewString(),
			"assessment_id": assessment["id"],
			"student_id":    studentID,
			"status":        "pending",
			"due_date":      body.DueDate,
			"assigned_at":   time.Now().UTC(),
		}
		s.collections["assessment-assignments"] = append(s.collections["assessment-assignments"], a)
		out = append(out, a)
	}
	success(c, http.StatusCreated, out)
}

func (s *Server) register(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, _ := s.find("webinars", c.Param("id"))
	if record == nil {
		fail(c, http.StatusNotFound, "webinar not found")
		return
	}
	registered := toInt(record["registered"])
	capacity := toInt(record["capacity"])
	if capacity > 0 && registered >= capacity {
		fail(c, http.StatusConflict, "webinar is full")
		return
	}
	record["registered"] = registered + 1
	success(c, http.StatusOK, record)
}

func (s *Server) getUser(c *gin.Context) {
	id := c.Param("id")
	if id == "me" {
		user := s.currentUser(c)
		if user == nil {
			fail(c, http.StatusNotFound, "user not found")
			return
		}
		success(c, http.StatusOK, user)
		return
	}
	s.get("users")(c)
}

func (s *Server) updateUser(c *gin.Context) {
	if c.Param("id") != "me" {
		s.update("users")(c)
		return
	}
	var body Record
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusUnprocessableEntity, "invalid payload")
		return
	}
	user := s.currentUser(c)
	if user == nil {
		fail(c, http.StatusNotFound, "user not found")
		return
	}
	s.mu.Lock()
	for k, v := range body {
		if k == "name" || k == "phone" {
			user[k] = v
		}
	}
	s.mu.Unlock()
	success(c, http.StatusOK, user)
}

func (s *Server) getSchool(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	success(c, http.StatusOK, s.school)
}

func (s *Server) updateSchool(c *gin.Context) {
	var body Record
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusUnprocessableEntity, "invalid payload")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range body {
		if k != "id" {
			s.school[k] = v
		}
	}
	success(c, http.StatusOK, s.school)
}

// upload accepts a multipart "file" and answers with a relative URL.
func (s *Server) upload(owner, field, dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			fail(c, http.StatusUnprocessableEntity, "file is required")
			return
		}
		if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
			fail(c, http.StatusUnprocessableEntity, "file must be an image")
			return
		}
		location := "/storage/" + dir + "/" + uuid.NewString() + filepath.Ext(file.Filename)
		if owner == "school" {
			s.mu.Lock()
			s.school[field] = location
			s.mu.Unlock()
		} else if user := s.currentUser(c); user != nil {
			s.mu.Lock()
			user[field] = location
			s.mu.Unlock()
		}
		success(c, http.StatusOK, gin.H{"url": location})
	}
}

func (s *Server) dashboard(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	openCases := 0
	for _, r := range s.collections["cases"] {
		if r["status"] != "closed" {
			openCases++
		}
	}
	activeAlerts := 0
	for _, r := range s.collections["alerts"] {
		if r["status"] != "resolved" {
			activeAlerts++
		}
	}
	upcoming := 0
	for _, r := range s.collections["bookings"] {
		if r["status"] != "cancelled" {
			upcoming++
		}
	}
	pending := 0
	for _, r := range s.collections["assessment-assignments"] {
		if r["status"] == "pending" {
			pending++
		}
	}
	distribution := map[string]int{}
	for _, r := range s.collections["students"] {
		if level, ok := r["risk_level"].(string); ok && level != "" {
			distribution[level]++
		}
	}
	success(c, http.StatusOK, gin.H{
		"total_students":      len(s.collections["students"]),
		"open_cases":          openCases,
		"active_alerts":       activeAlerts,
		"upcoming_bookings":   upcoming,
		"pending_assessments": pending,
		"risk_distribution":   distribution,
		"generated_at":        time.Now().UTC(),
	})
}

func (s *Server) riskTrend(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	buckets := map[string]int{}
	for _, r := range s.collections["alerts"] {
		period := "unknown"
		if created, ok := r["created_at"].(string); ok && len(created) >= 7 {
			period = created[:7]
		}
		buckets[period]++
	}
	out := make([]gin.H, 0, len(buckets))
	for period, n := range buckets {
		out = append(out, gin.H{"period": period, "value": n})
	}
	success(c, http.StatusOK, out)
}

func (s *Server) completion(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]gin.H, 0)
	for _, a := range s.collections["assessments"] {
		assigned, completed := 0, 0
		for _, as := range s.collections["assessment-assignments"] {
			if as["assessment_id"] != a["id"] {
				continue
			}
			assigned++
			if as["status"] == "completed" {
				completed++
			}
		}
		rate := 0.0
		if assigned > 0 {
			rate = float64(completed) / float64(assigned)
		}
		out = append(out, gin.H{"assessment_id": a["id"], "title": a["title"], "assigned": assigned, "completed": completed, "rate": rate})
	}
	success(c, http.StatusOK, out)
}

func singular(name string) string {
	switch name {
	case "assessment-assignments":
		return "assignment"
	default:
		return strings.TrimSuffix(name, "s")
	}
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	default:
		return 0
	}
}
