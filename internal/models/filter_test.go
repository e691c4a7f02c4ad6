package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterValuesOmitZeroFields(t *testing.T) {
	active := false
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "", StudentFilter{}.Values().Encode())
	assert.Equal(t, "active=false&grade=10&search=ali", StudentFilter{
		Page:   Page{Search: "ali"},
		Grade:  "10",
		Active: &active,
	}.Values().Encode())
	assert.Equal(t, "from=2024-03-01&student_id=s-1", ObservationFilter{StudentID: "s-1", From: &from}.Values().Encode())
	assert.Equal(t, "case_id=c-9&page=2", GoalFilter{CaseID: "c-9", Page: Page{Page: 2}}.Values().Encode())
	assert.Empty(t, NoFilter{}.Values())
}

func TestDecodeFilter(t *testing.T) {
	var f StudentFilter
	require.NoError(t, DecodeFilter(map[string]string{
		"grade":    "11",
		"active":   "true",
		"per_page": "50",
		"search":   "bob",
	}, &f))
	assert.Equal(t, "11", f.Grade)
	require.NotNil(t, f.Active)
	assert.True(t, *f.Active)
	assert.Equal(t, 50, f.PerPage)
	assert.Equal(t, "bob", f.Search)

	var b BookingFilter
	require.NoError(t, DecodeFilter(map[string]string{"from": "2024-05-06"}, &b))
	require.NotNil(t, b.From)
	assert.Equal(t, "2024-05-06", b.From.Format(time.DateOnly))
}

func TestDecodeFilterRejectsUnknownKeys(t *testing.T) {
	var f CaseFilter
	err := DecodeFilter(map[string]string{"colour": "red"}, &f)
	assert.Error(t, err)
}
