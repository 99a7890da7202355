package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-tables/models"
	"github.com/yeremiapane/restaurant-tables/repository"
	"github.com/yeremiapane/restaurant-tables/services"
	"github.com/yeremiapane/restaurant-tables/utils"
)

const reservationNotFound = "Reservation not found"

// Layouts accepted for reservation instants. Layouts without a zone are read in
// the restaurant's time zone.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

type ReservationController struct {
	Reservations services.ReservationService
	Location     *time.Location
}

func NewReservationController(reservations services.ReservationService, loc *time.Location) *ReservationController {
	if loc == nil {
		loc = time.Local
	}
	return &ReservationController{Reservations: reservations, Location: loc}
}

func (rc *ReservationController) parseDateTime(value string) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, rc.Location); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date and time", value)
}

// CreateReservation -> books an available table and marks it reserved
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req struct {
		TableID         uint   `json:"tableId" binding:"required"`
		CustomerName    string `json:"customerName" binding:"required"`
		CustomerPhone   string `json:"customerPhone" binding:"required"`
		CustomerEmail   string `json:"customerEmail" binding:"omitempty,email"`
		ReservationDate string `json:"reservationDate" binding:"required"`
		PartySize       int    `json:"partySize" binding:"required,min=1"`
		SpecialRequests string `json:"specialRequests"`
	}
	if !bindJSON(c, &req) {
		return
	}

	at, err := rc.parseDateTime(req.ReservationDate)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid reservationDate", err)
		return
	}

	reservation, err := rc.Reservations.CreateReservation(c.Request.Context(), services.CreateReservationInput{
		TableID:         req.TableID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		SpecialRequests: req.SpecialRequests,
		ReservationDate: at,
		PartySize:       req.PartySize,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusCreated, "Reservation created successfully", gin.H{"reservation": reservation})
}

// CheckAvailability -> GET ?date=YYYY-MM-DD&time=HH:MM[:SS]&partySize=N
func (rc *ReservationController) CheckAvailability(c *gin.Context) {
	date, clock, size := c.Query("date"), c.Query("time"), c.Query("partySize")
	if date == "" || clock == "" || size == "" {
		utils.RespondError(c, http.StatusBadRequest, "date, time and partySize are required", nil)
		return
	}

	at, err := rc.parseDateTime(date + "T" + clock)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid date or time", err)
		return
	}
	partySize, err := strconv.Atoi(size)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "partySize must be a number", nil)
		return
	}

	result, err := rc.Reservations.CheckAvailability(c.Request.Context(), at, partySize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, result)
}

// GetReservations -> lists reservations, filtered by ?table, ?status, ?from, ?to
func (rc *ReservationController) GetReservations(c *gin.Context) {
	var filter repository.ReservationFilter
	if v := c.Query("table"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "table must be a numeric id", nil)
			return
		}
		tableID := uint(id)
		filter.TableID = &tableID
	}
	if v := c.Query("status"); v != "" {
		status := models.ReservationStatus(v)
		filter.Status = &status
	}
	for param, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		v := c.Query(param)
		if v == "" {
			continue
		}
		t, err := rc.parseBound(v)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid "+param, err)
			return
		}
		*dst = &t
	}

	reservations, err := rc.Reservations.ListReservations(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, reservations)
}

// parseBound accepts a plain date (midnight local time) or a full date and time.
func (rc *ReservationController) parseBound(v string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", v, rc.Location); err == nil {
		return t, nil
	}
	return rc.parseDateTime(v)
}

func (rc *ReservationController) GetReservationByID(c *gin.Context) {
	id, ok := parseID(c, "reservationId", reservationNotFound)
	if !ok {
		return
	}

	reservation, err := rc.Reservations.GetReservation(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, reservation)
}

// UpdateReservationStatus -> closes a confirmed reservation
func (rc *ReservationController) UpdateReservationStatus(c *gin.Context) {
	id, ok := parseID(c, "reservationId", reservationNotFound)
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}

	reservation, err := rc.Reservations.UpdateReservationStatus(c.Request.Context(), id, models.ReservationStatus(body.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Reservation status updated successfully", gin.H{"reservation": reservation})
}
