package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tanpawarit/flightdesk/pkg/amadeus"
	"github.com/tanpawarit/flightdesk/pkg/trip"
)

type PriceRequest struct {
	OfferID      string         `json:"offerId"`
	Offer        map[string]any `json:"offer"`
	CurrencyCode string         `json:"currencyCode"`
}

type CreateOrderRequest struct {
	OfferID        string         `json:"offerId"`
	Offer          map[string]any `json:"offer"`
	Travelers      []any          `json:"travelers" binding:"required,min=1"`
	Contacts       []any          `json:"contacts"`
	Remarks        map[string]any `json:"remarks"`
	Payment        map[string]any `json:"payment"`
	IdempotencyKey string         `json:"idempotencyKey"`
}

type ReservationResponse struct {
	ReservationID  string         `json:"reservationId"`
	Status         string         `json:"status"`
	PNR            *string        `json:"pnr"`
	Travelers      []any          `json:"travelers"`
	IdempotencyKey string         `json:"idempotencyKey"`
	Raw            map[string]any `json:"raw,omitempty"`
}

const (
	statusBooked    = "booked"
	statusSimulated = "simulated"
)

// search normalizes provider offers and caches each one under a request
// scoped offer id so later price and order calls can refer to it.
func (h *handler) search(c *gin.Context) {
	var params amadeus.SearchParams
	if err := c.ShouldBindJSON(&params); err != nil {
		writeBindError(c, err)
		return
	}
	params.ApplyDefaults()

	ctx := c.Request.Context()
	raw, err := h.provider.SearchOffers(ctx, params)
	if err != nil {
		writeError(c, err)
		return
	}

	requestID := uuid.NewString()
	offers := amadeus.NormalizeOffers(raw)
	for i := range offers {
		offers[i].OfferID = requestID + "." + offers[i].ID
		if err := h.offers.Put(ctx, offers[i].OfferID, offers[i].Raw); err != nil {
			h.log.Warn().Err(err).Str("offer_id", offers[i].OfferID).Msg("cache offer failed")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"offers": offers,
		"meta": gin.H{
			"count":     len(offers),
			"currency":  params.CurrencyCode,
			"requestId": requestID,
		},
	})
}

func (h *handler) price(c *gin.Context) {
	var req PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	offer, err := h.resolveOffer(ctx, req.OfferID, req.Offer)
	if err != nil {
		writeError(c, err)
		return
	}

	body := gin.H{"data": gin.H{"type": "flight-offers-pricing", "flightOffers": []any{offer}}}
	res, err := h.provider.PriceOffer(ctx, body)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pricedOffer": res["data"], "raw": res})
}

func (h *handler) createOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	key := strings.TrimSpace(req.IdempotencyKey)
	if key != "" {
		if existing, err := h.trips.FindReservationByKey(ctx, key); err == nil {
			c.JSON(http.StatusOK, reservationResponse(existing, nil))
			return
		}
	} else {
		key = uuid.NewString()
	}

	offer, err := h.resolveOffer(ctx, req.OfferID, req.Offer)
	if err != nil {
		writeError(c, err)
		return
	}

	order := gin.H{
		"type":         "flight-order",
		"flightOffers": []any{offer},
		"travelers":    req.Travelers,
	}
	if len(req.Contacts) > 0 {
		order["contacts"] = req.Contacts
	}
	if len(req.Remarks) > 0 {
		order["remarks"] = req.Remarks
	}
	if len(req.Payment) > 0 {
		order["formOfPayments"] = []any{req.Payment}
	}

	res, err := h.provider.CreateOrder(ctx, gin.H{"data": order})
	if err != nil {
		writeError(c, err)
		return
	}

	r := reservationFromOrder(res, offer, req.Travelers, key)
	if err := h.trips.SaveReservation(ctx, r); err != nil {
		h.log.Error().Err(err).Str("reservation_id", r.ReservationID).Msg("persist reservation failed")
	}
	c.JSON(http.StatusOK, reservationResponse(r, res))
}

func (h *handler) resolveOffer(ctx context.Context, offerID string, offer map[string]any) (map[string]any, error) {
	if len(offer) > 0 {
		return offer, nil
	}
	if strings.TrimSpace(offerID) == "" {
		return nil, errOfferRequired
	}
	return h.offers.Get(ctx, strings.TrimSpace(offerID))
}

func reservationFromOrder(res map[string]any, offer map[string]any, travelers []any, key string) *trip.Reservation {
	r := &trip.Reservation{
		Status:         statusSimulated,
		Offer:          offer,
		Travelers:      travelers,
		IdempotencyKey: key,
	}

	data, _ := res["data"].(map[string]any)
	if id, _ := data["id"].(string); id != "" {
		r.ReservationID = id
		r.Status = statusBooked
	} else {
		r.ReservationID = "resv_" + uuid.NewString()
	}
	if records, _ := data["associatedRecords"].([]any); len(records) > 0 {
		if rec, ok := records[0].(map[string]any); ok {
			r.PNR, _ = rec["reference"].(string)
		}
	}
	return r
}

func reservationResponse(r *trip.Reservation, raw map[string]any) ReservationResponse {
	out := ReservationResponse{
		ReservationID:  r.ReservationID,
		Status:         r.Status,
		Travelers:      r.Travelers,
		IdempotencyKey: r.IdempotencyKey,
		Raw:            raw,
	}
	if r.PNR != "" {
		pnr := r.PNR
		out.PNR = &pnr
	}
	return out
}
