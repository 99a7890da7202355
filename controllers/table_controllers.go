package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-tables/models"
	"github.com/yeremiapane/restaurant-tables/repository"
	"github.com/yeremiapane/restaurant-tables/services"
	"github.com/yeremiapane/restaurant-tables/utils"
)

const tableNotFound = "Table not found"

type TableController struct {
	Tables services.TableService
}

func NewTableController(tables services.TableService) *TableController {
	return &TableController{Tables: tables}
}

// CreateTable -> adds a table and issues its menu QR code
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber int    `json:"tableNumber" binding:"required"`
		Location    string `json:"location" binding:"required"`
		Capacity    int    `json:"capacity" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	table, err := tc.Tables.CreateTable(c.Request.Context(), services.CreateTableInput{
		TableNumber: req.TableNumber,
		Location:    models.TableLocation(req.Location),
		Capacity:    req.Capacity,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondMessage(c, http.StatusCreated, "Table created successfully", gin.H{"table": table})
}

// GetAllTables -> lists tables, optionally filtered by status, location and minCapacity
func (tc *TableController) GetAllTables(c *gin.Context) {
	var filter repository.TableFilter
	if v := c.Query("status"); v != "" {
		status := models.TableStatus(v)
		filter.Status = &status
	}
	if v := c.Query("location"); v != "" {
		loc := models.TableLocation(v)
		filter.Location = &loc
	}
	if v := c.Query("minCapacity"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "minCapacity must be a number", nil)
			return
		}
		filter.MinCapacity = &n
	}

	tables, err := tc.Tables.ListTables(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, tables)
}

func (tc *TableController) GetTableByID(c *gin.Context) {
	id, ok := parseID(c, "id", tableNotFound)
	if !ok {
		return
	}

	table, err := tc.Tables.GetTable(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, table)
}

// UpdateTable -> partial update; omitted fields are kept
func (tc *TableController) UpdateTable(c *gin.Context) {
	id, ok := parseID(c, "id", tableNotFound)
	if !ok {
		return
	}

	var req struct {
		TableNumber *int    `json:"tableNumber"`
		Location    *string `json:"location"`
		Capacity    *int    `json:"capacity"`
		Status      *string `json:"status"`
	}
	if !bindJSON(c, &req) {
		return
	}

	in := services.UpdateTableInput{
		TableNumber: req.TableNumber,
		Capacity:    req.Capacity,
	}
	if req.Location != nil {
		loc := models.TableLocation(*req.Location)
		in.Location = &loc
	}
	if req.Status != nil {
		status := models.TableStatus(*req.Status)
		in.Status = &status
	}

	table, err := tc.Tables.UpdateTable(c.Request.Context(), id, in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Table updated successfully", gin.H{"table": table})
}

func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	id, ok := parseID(c, "id", tableNotFound)
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}

	table, err := tc.Tables.UpdateStatus(c.Request.Context(), id, models.TableStatus(body.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Table status updated successfully", gin.H{"table": table})
}

// AssignServer -> sets or clears (serverId null) the table's server
func (tc *TableController) AssignServer(c *gin.Context) {
	id, ok := parseID(c, "id", tableNotFound)
	if !ok {
		return
	}

	var body struct {
		ServerID *uint `json:"serverId"`
	}
	if !bindJSON(c, &body) {
		return
	}

	table, err := tc.Tables.AssignServer(c.Request.Context(), id, body.ServerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Server assigned to table successfully", gin.H{"table": table})
}

func (tc *TableController) DeleteTable(c *gin.Context) {
	id, ok := parseID(c, "id", tableNotFound)
	if !ok {
		return
	}

	if err := tc.Tables.DeleteTable(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Table deleted successfully", nil)
}

// GetTableQR -> serves the table's menu QR code as PNG
func (tc *TableController) GetTableQR(c *gin.Context) {
	id, ok := parseID(c, "id", "QR code not found for this table")
	if !ok {
		return
	}

	p, err := tc.Tables.TableQRPath(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.File(p)
}

func (tc *TableController) GetTableStats(c *gin.Context) {
	stats, err := tc.Tables.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, stats)
}
