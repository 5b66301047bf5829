package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/dsavelev/sessiond/internal/server/models"
	"github.com/dsavelev/sessiond/internal/server/services"
	"github.com/gin-gonic/gin"
)

type itemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type itemResponse struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	VIN            *string    `json:"vin"`
	ChassisNumber  *string    `json:"chassisNumber"`
	VehicleModel   *string    `json:"vehicleModel"`
	ModelYear      *string    `json:"modelYear"`
	RPM            *int64     `json:"rpm"`
	EngineTemp     *int64     `json:"engineTemp"`
	Mileage        *int64     `json:"mileage"`
	DiagnosticDate *time.Time `json:"diagnosticDate"`
	Status         *string    `json:"status"`
	Technician     *string    `json:"technician"`
	EngineType     *string    `json:"engineType"`
	UserID         *int64     `json:"userId"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type itemPageResponse struct {
	Items []itemResponse `json:"items"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
	Total int64          `json:"total"`
}

func newItemResponse(it *models.Item) itemResponse {
	return itemResponse{
		ID:             it.ID,
		Title:          it.Title,
		Description:    nullStr(it.Description),
		VIN:            nullStr(it.VIN),
		ChassisNumber:  nullStr(it.ChassisNumber),
		VehicleModel:   nullStr(it.VehicleModel),
		ModelYear:      nullStr(it.ModelYear),
		RPM:            nullInt(it.RPM),
		EngineTemp:     nullInt(it.EngineTemp),
		Mileage:        nullInt(it.Mileage),
		DiagnosticDate: nullTime(it.DiagnosticDate),
		Status:         nullStr(it.Status),
		Technician:     nullStr(it.Technician),
		EngineType:     nullStr(it.EngineType),
		UserID:         nullInt(it.UserID),
		CreatedAt:      it.CreatedAt,
		UpdatedAt:      it.UpdatedAt,
	}
}

func (s *HTTPServer) listItems(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	search := c.Query("search")

	result, err := s.items.List(c.Request.Context(), search, page, size)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := itemPageResponse{
		Items: make([]itemResponse, 0, len(result.Items)),
		Page:  result.Page,
		Size:  result.Size,
		Total: result.Total,
	}
	for _, it := range result.Items {
		resp.Items = append(resp.Items, newItemResponse(it))
	}

	c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) getItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	item, err := s.items.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newItemResponse(item))
}

func (s *HTTPServer) createItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := s.items.Create(c.Request.Context(), c.GetString(usernameKey),
		services.ItemInput{Title: req.Title, Description: req.Description})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newItemResponse(item))
}

func (s *HTTPServer) updateItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := s.items.Update(c.Request.Context(), c.GetString(usernameKey), id,
		services.ItemInput{Title: req.Title, Description: req.Description})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newItemResponse(item))
}

func (s *HTTPServer) deleteItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	if err := s.items.Delete(c.Request.Context(), c.GetString(usernameKey), id); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	return &v.Time
}
