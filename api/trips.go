package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tanpawarit/flightdesk/pkg/amadeus"
	"github.com/tanpawarit/flightdesk/pkg/trip"
)

type SaveTripRequest struct {
	OfferID string         `json:"offerId" binding:"required"`
	Offer   map[string]any `json:"offer"`
	Note    string         `json:"note"`
}

type listTripsQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

type TripItem struct {
	TripID    string                 `json:"tripId"`
	OfferID   string                 `json:"offerId"`
	Summary   *amadeus.FlightSummary `json:"summary"`
	Note      *string                `json:"note"`
	CreatedAt string                 `json:"createdAt"`
}

func (h *handler) saveTrip(c *gin.Context) {
	var req SaveTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	data := req.Offer
	if len(data) == 0 {
		// Trips saved from a search may only carry the offer id.
		if cached, err := h.offers.Get(ctx, req.OfferID); err == nil {
			data = cached
		}
	}

	t, err := h.trips.SaveTrip(ctx, req.OfferID, data, req.Note)
	if err != nil {
		h.log.Error().Err(err).Msg("save trip failed")
		abortWithDetail(c, http.StatusInternalServerError, "could not save trip")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"tripId":    trip.FormatTripID(t.ID),
		"createdAt": formatTime(t.CreatedAt),
	})
}

func (h *handler) listTrips(c *gin.Context) {
	var q listTripsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}
	page, pageSize := trip.ClampPage(q.Page, q.PageSize)

	rows, total, err := h.trips.ListTrips(c.Request.Context(), page, pageSize)
	if err != nil {
		h.log.Error().Err(err).Msg("list trips failed")
		abortWithDetail(c, http.StatusInternalServerError, "could not list trips")
		return
	}

	items := make([]TripItem, 0, len(rows))
	for _, r := range rows {
		item := TripItem{
			TripID:    trip.FormatTripID(r.ID),
			OfferID:   r.OfferID,
			CreatedAt: formatTime(r.CreatedAt),
		}
		if r.Note != "" {
			note := r.Note
			item.Note = &note
		}
		if len(r.Data) > 0 {
			summary := amadeus.NormalizeOffer(r.Data)
			summary.Raw = nil
			item.Summary = &summary
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"trips": items,
		"meta":  gin.H{"page": page, "pageSize": pageSize, "total": total},
	})
}

func (h *handler) deleteTrip(c *gin.Context) {
	id, err := trip.ParseTripID(c.Param("id"))
	if err != nil {
		abortWithDetail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.trips.DeleteTrip(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *handler) listReservations(c *gin.Context) {
	var q struct {
		Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}

	rows, err := h.trips.ListReservations(c.Request.Context(), q.Limit)
	if err != nil {
		h.log.Error().Err(err).Msg("list reservations failed")
		abortWithDetail(c, http.StatusInternalServerError, "could not list reservations")
		return
	}
	if rows == nil {
		rows = []trip.Reservation{}
	}
	c.JSON(http.StatusOK, gin.H{"reservations": rows})
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
