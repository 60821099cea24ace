package handlers

import (
	"net/http"

	"saubio/models"
	"saubio/services/booking"
	"saubio/services/locale"
	"saubio/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingView is a booking with its status label in the caller's locale.
type BookingView struct {
	models.BookingRequest
	StatusLabel string `json:"statusLabel"`
}

// BookingsHandler serves the filtered booking dashboards.
type BookingsHandler struct {
	Service booking.BookingService
	Catalog *locale.Catalog
}

func NewBookingsHandler(svc booking.BookingService, catalog *locale.Catalog) *BookingsHandler {
	return &BookingsHandler{Service: svc, Catalog: catalog}
}

// ListMyBookings handles GET /api/bookings?status=&city=.
func (h *BookingsHandler) ListMyBookings(c *gin.Context) {
	opts := booking.ParseFilterOptions(c.Query("status"), c.Query("city"))
	bookings, err := h.Service.ListForClient(c.Request.Context(), c.GetString("userID"), opts)
	if err != nil {
		getLogger(c).Error("ListMyBookings: failed to list bookings", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to list bookings", "")
		return
	}
	h.respond(c, bookings, opts)
}

// ListAllBookings handles GET /api/admin/bookings?status=&city=.
func (h *BookingsHandler) ListAllBookings(c *gin.Context) {
	opts := booking.ParseFilterOptions(c.Query("status"), c.Query("city"))
	bookings, err := h.Service.ListAll(c.Request.Context(), opts)
	if err != nil {
		getLogger(c).Error("ListAllBookings: failed to list bookings", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to list bookings", "")
		return
	}
	h.respond(c, bookings, opts)
}

func (h *BookingsHandler) respond(c *gin.Context, bookings []models.BookingRequest, opts models.BookingFilterOptions) {
	loc := resolveLocale(c, h.Catalog)
	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		label := string(b.Status)
		if h.Catalog != nil {
			label = h.Catalog.Translate(loc, "booking.status."+string(b.Status), nil)
		}
		views = append(views, BookingView{BookingRequest: b, StatusLabel: label})
	}
	c.JSON(http.StatusOK, gin.H{
		"bookings": views,
		"total":    len(views),
		"filters":  opts,
	})
}
