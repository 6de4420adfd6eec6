package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lg/diet-mentor-go-api/internal/domain"
)

// getRecords returns daily records for the authenticated user within [start, end].
// GET /api/records?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
// Returns an empty array (not null) if no records exist in the range.
func (h *Handler) getRecords(c *gin.Context) {
	startRaw, endRaw := c.Query("start"), c.Query("end")
	if startRaw == "" || endRaw == "" {
		apiError(c, http.StatusBadRequest, "start and end query params are required")
		return
	}
	start, err := domain.ParseDate(startRaw)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
		return
	}
	end, err := domain.ParseDate(endRaw)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		return
	}
	if start.After(end.Time) {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return
	}

	records, err := h.coach.Records(c, c.GetInt("user_id"), start, end)
	if err != nil {
		h.serviceError(c, err, "")
		return
	}
	if records == nil {
		records = []domain.DailyRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// upsertRecord creates or replaces the record for the given date.
// POST /api/records. Body: { "date"?: "YYYY-MM-DD", "weight_kg": 70.2, ... }.
// The UNIQUE(user_id, date) constraint means posting the same date updates in place.
func (h *Handler) upsertRecord(c *gin.Context) {
	var body recordRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	r := domain.DailyRecord{
		UserID:   c.GetInt("user_id"),
		WeightKG: body.WeightKG,
		Calories: body.Calories,
		ProteinG: body.ProteinG,
		FatG:     body.FatG,
		CarbsG:   body.CarbsG,
		Exercise: body.Exercise,
	}
	if body.Date != "" {
		d, err := domain.ParseDate(body.Date)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		r.Date = d
	}
	if body.WeightKG > 999.9 {
		apiError(c, http.StatusBadRequest, "weight_kg must be between 0 and 999.9")
		return
	}

	saved, err := h.coach.RecordDay(c, r)
	if err != nil {
		h.serviceError(c, err, "profile not found")
		return
	}
	c.JSON(http.StatusCreated, saved)
}
