package handler

import (
	"net/http"
	"strconv"
	"time"

	"roost/internal/domain"
	"roost/internal/middleware"
	"roost/internal/repository"
	"roost/internal/service"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	svc      *service.BookingService
	bookings *repository.BookingRepository
	txns     *repository.TransactionRepository
}

func NewBookingHandler(svc *service.BookingService, bookings *repository.BookingRepository, txns *repository.TransactionRepository) *BookingHandler {
	return &BookingHandler{svc: svc, bookings: bookings, txns: txns}
}

func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{ID: middleware.GetUserID(c), Role: middleware.GetRole(c)}
}

func bookingID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return 0, false
	}
	return uint(id), true
}

type createBookingRequest struct {
	ExperienceID uint      `json:"experience_id" binding:"required"`
	StartTime    time.Time `json:"start_time" binding:"required"`
	Attendees    int       `json:"attendees" binding:"required,min=1"`
	PartnerCode  string    `json:"partner_code"`
}

// Create reserves a slot and returns the hosted checkout the client should
// redirect the guest to.
func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.svc.Create(c.Request.Context(), actorFrom(c), service.CreateBookingInput{
		ExperienceID: req.ExperienceID,
		StartTime:    req.StartTime,
		Attendees:    req.Attendees,
		PartnerCode:  req.PartnerCode,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"booking":      res.Booking,
		"checkout_url": res.CheckoutURL,
	})
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.bookings.GetByID(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	actor := actorFrom(c)
	if actor.Role != domain.RoleAdmin && actor.ID != b.GuestID && actor.ID != b.HostID {
		respondErr(c, domain.ErrUnauthorized)
		return
	}
	ledger, err := h.txns.ListByBooking(b.ID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b, "transactions": ledger})
}

func (h *BookingHandler) Approve(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.svc.Approve(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) Reject(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.svc.Reject(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) Refund(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.svc.Refund(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// Complete is the manual completion used by admins; the periodic sweep covers
// the normal path.
func (h *BookingHandler) Complete(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.svc.Complete(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) ListMine(c *gin.Context) {
	actor := actorFrom(c)
	limit, offset := pagination(c)
	var (
		list interface{}
		err  error
	)
	if actor.Role == domain.RoleHost {
		list, err = h.bookings.ListByHost(actor.ID, limit, offset)
	} else {
		list, err = h.bookings.ListByGuest(actor.ID, limit, offset)
	}
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
