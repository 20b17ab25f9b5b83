package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/tastylog/backend/internal/domain"
	"github.com/tastylog/backend/internal/usecase"
)

const monthLayout = "2006-01"

type markersResponse struct {
	Markers []usecase.Marker     `json:"markers"`
	Bounds  *usecase.BoundingBox `json:"bounds"`
}

// ListFoods refreshes the caller's records from the remote store and applies the query filter
func (h *Handler) ListFoods(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	owner, ok := h.viewerID(c)
	if !ok {
		return
	}

	records, err := h.foods.ListAll(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usecase.FilterRecords(records, filter))
}

// GroupedFoods returns the caller's filtered records grouped by day, newest first
func (h *Handler) GroupedFoods(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	records, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, usecase.GroupByDate(usecase.FilterRecords(records, filter)))
}

// CreateFood stores a new record owned by the caller
func (h *Handler) CreateFood(c *gin.Context) {
	owner, ok := h.ownerID(c)
	if !ok {
		return
	}

	var record domain.FoodRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		respondError(c, domain.Validationf("invalid request body: %v", err))
		return
	}
	record.RemoteID = ""
	record.OwnerID = owner

	created, err := h.foods.Add(c.Request.Context(), record)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateFood rewrites one of the caller's records
func (h *Handler) UpdateFood(c *gin.Context) {
	owner, ok := h.ownerID(c)
	if !ok {
		return
	}

	existing, err := h.foods.Find(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var record domain.FoodRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		respondError(c, domain.Validationf("invalid request body: %v", err))
		return
	}
	record.RemoteID = existing.RemoteID
	record.OwnerID = owner
	if record.LocalID == "" {
		record.LocalID = existing.LocalID
	}

	updated, err := h.foods.Update(c.Request.Context(), record)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteFood removes one of the caller's records
func (h *Handler) DeleteFood(c *gin.Context) {
	owner, ok := h.ownerID(c)
	if !ok {
		return
	}

	existing, err := h.foods.Find(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.foods.Delete(c.Request.Context(), existing.RemoteID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MonthlyStats summarises ?month=yyyy-MM, defaulting to the current month
func (h *Handler) MonthlyStats(c *gin.Context) {
	month := c.DefaultQuery("month", time.Now().Format(monthLayout))
	if err := validation.Validate(month, validation.Date(monthLayout)); err != nil {
		respondError(c, domain.Validationf("month: %v", err))
		return
	}

	records, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, usecase.MonthlySummary(records, month))
}

// SpendingTrend returns daily spend totals in date order
func (h *Handler) SpendingTrend(c *gin.Context) {
	records, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, usecase.SpendingTrend(records))
}

// RatingDistribution returns record counts per half-star rating
func (h *Handler) RatingDistribution(c *gin.Context) {
	records, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, usecase.RatingDistribution(records))
}

// MapMarkers places the caller's records on the map
func (h *Handler) MapMarkers(c *gin.Context) {
	records, ok := h.snapshot(c)
	if !ok {
		return
	}

	resp := markersResponse{Markers: h.placer.Markers(records)}
	if box, ok := usecase.Bounds(resp.Markers); ok {
		resp.Bounds = &box
	}
	c.JSON(http.StatusOK, resp)
}

// MapTile returns the URL of one map tile: ?layer=vec|cva&z=&x=&y=
func (h *Handler) MapTile(c *gin.Context) {
	coords := make(map[string]int, 3)
	for _, key := range []string{"z", "x", "y"} {
		value, err := strconv.Atoi(c.Query(key))
		if err != nil {
			respondError(c, domain.Validationf("query parameter %q must be an integer", key))
			return
		}
		coords[key] = value
	}

	tileURL, err := h.placer.TileURL(c.DefaultQuery("layer", usecase.LayerVector), coords["z"], coords["x"], coords["y"])
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": tileURL})
}

// parseFilter reads from, to, min_price, max_price, location, min_rating,
// max_rating and tags (comma separated or repeated) from the query string
func parseFilter(c *gin.Context) (usecase.RecordFilter, error) {
	filter := usecase.DefaultRecordFilter()
	filter.From = c.Query("from")
	filter.To = c.Query("to")
	filter.Location = strings.TrimSpace(c.Query("location"))

	var err error
	if filter.MinPrice, err = floatQuery(c, "min_price"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = floatQuery(c, "max_price"); err != nil {
		return filter, err
	}
	if filter.MinRating, err = intQuery(c, "min_rating", filter.MinRating); err != nil {
		return filter, err
	}
	if filter.MaxRating, err = intQuery(c, "max_rating", filter.MaxRating); err != nil {
		return filter, err
	}

	for _, raw := range c.QueryArray("tags") {
		filter.Tags = append(filter.Tags, domain.SplitTags(raw)...)
	}

	return filter, filter.Validate()
}

func floatQuery(c *gin.Context, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, domain.Validationf("query parameter %q must be a number", key)
	}
	return &value, nil
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Validationf("query parameter %q must be an integer", key)
	}
	return value, nil
}
