package handler

import (
	"net/http"
	"strconv"

	"roost/internal/middleware"
	"roost/internal/models"
	"roost/internal/repository"

	"github.com/gin-gonic/gin"
)

type ExperienceHandler struct {
	experiences *repository.ExperienceRepository
}

func NewExperienceHandler(experiences *repository.ExperienceRepository) *ExperienceHandler {
	return &ExperienceHandler{experiences: experiences}
}

type createExperienceRequest struct {
	Title           string `json:"title" binding:"required,max=255"`
	Description     string `json:"description"`
	BasePriceCents  int64  `json:"base_price_cents" binding:"required,min=1"`
	Currency        string `json:"currency" binding:"omitempty,len=3"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=15"`
	Capacity        int    `json:"capacity" binding:"required,min=1"`
}

func (h *ExperienceHandler) Create(c *gin.Context) {
	var req createExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	exp := &models.Experience{
		HostID:          middleware.GetUserID(c),
		Title:           req.Title,
		Description:     req.Description,
		BasePriceCents:  req.BasePriceCents,
		Currency:        currency,
		DurationMinutes: req.DurationMinutes,
		Capacity:        req.Capacity,
		IsActive:        true,
	}
	if err := h.experiences.Create(exp); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"experience": exp})
}

func (h *ExperienceHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid experience id"})
		return
	}
	exp, err := h.experiences.GetByID(uint(id))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"experience": exp})
}

func (h *ExperienceHandler) ListActive(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.experiences.ListActive(limit, offset)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"experiences": list})
}

func (h *ExperienceHandler) ListMine(c *gin.Context) {
	list, err := h.experiences.ListByHost(middleware.GetUserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"experiences": list})
}
