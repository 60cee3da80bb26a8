package dashboard

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/judhveer/easternpanorama-office-taskbot/internal/models"
	"github.com/judhveer/easternpanorama-office-taskbot/internal/store"
)

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, db *gorm.DB) {
	router.GET("/healthz", handleHealth())
	router.GET("/api/tasks", handleTasks(db))
	router.GET("/api/doers", handleDoers(db))
	router.GET("/api/notifications", handleNotifications(db))
}

func handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// handleTasks serves a filtered, paginated task listing.
// Query params: date (YYYY-MM-DD), name, status, urgent, page, limit.
func handleTasks(db *gorm.DB) gin.HandlerFunc {
	tasks := store.NewTasks(db)
	return func(c *gin.Context) {
		filters := store.PageFilters{
			Status:   strings.ToLower(c.Query("status")),
			DoerLike: strings.ToUpper(strings.TrimSpace(c.Query("name"))),
			Page:     atoiDefault(c.Query("page"), 1),
			Limit:    atoiDefault(c.Query("limit"), 50),
		}
		if c.Query("urgent") == "true" {
			filters.UrgentOnly = true
		}
		if date := c.Query("date"); date != "" {
			day, err := time.Parse("2006-01-02", date)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
				return
			}
			filters.DueOn = &day
		} else if filters.Status == "" {
			// Without a date the listing shows open work by default.
			filters.Status = models.TaskPending
		}

		rows, total, err := tasks.Page(filters)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}

		totalPages := total / int64(filters.Limit)
		if total%int64(filters.Limit) != 0 {
			totalPages++
		}
		c.JSON(http.StatusOK, gin.H{
			"data":       rows,
			"total":      total,
			"page":       filters.Page,
			"totalPages": totalPages,
		})
	}
}

// handleDoers serves the doer directory without channel bindings.
func handleDoers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var doers []models.Doer
		if err := db.Order("department ASC, name ASC").Find(&doers).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		type doerRow struct {
			ID             uint   `json:"id"`
			Name           string `json:"name"`
			Department     string `json:"department"`
			IsActive       bool   `json:"isActive"`
			ApprovalStatus string `json:"approvalStatus"`
		}
		rows := make([]doerRow, len(doers))
		for i, d := range doers {
			rows[i] = doerRow{
				ID:             d.ID,
				Name:           d.Name,
				Department:     d.Department,
				IsActive:       d.IsActive,
				ApprovalStatus: d.ApprovalStatus,
			}
		}
		c.JSON(http.StatusOK, gin.H{"data": rows, "total": len(rows)})
	}
}

// handleNotifications serves the latest notification audit rows.
func handleNotifications(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := atoiDefault(c.Query("limit"), 100)
		var rows []models.Notification
		if err := db.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": rows, "total": len(rows)})
	}
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
