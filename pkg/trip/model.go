package trip

import (
	"time"

	"github.com/uptrace/bun"
)

type Trip struct {
	bun.BaseModel `bun:"table:trips,alias:t"`

	ID        int64          `bun:"id,pk,autoincrement" json:"-"`
	OfferID   string         `bun:"offer_id,notnull" json:"offerId"`
	Data      map[string]any `bun:"data,type:jsonb" json:"data,omitempty"`
	Note      string         `bun:"note,nullzero" json:"note,omitempty"`
	CreatedAt time.Time      `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

type Reservation struct {
	bun.BaseModel `bun:"table:reservations,alias:r"`

	ID             int64          `bun:"id,pk,autoincrement" json:"-"`
	ReservationID  string         `bun:"reservation_id,notnull" json:"reservationId"`
	Status         string         `bun:"status,notnull" json:"status"`
	PNR            string         `bun:"pnr,nullzero" json:"pnr,omitempty"`
	Offer          map[string]any `bun:"offer,type:jsonb" json:"offer,omitempty"`
	Travelers      []any          `bun:"travelers,type:jsonb" json:"travelers,omitempty"`
	IdempotencyKey string         `bun:"idempotency_key,nullzero,unique" json:"-"`
	CreatedAt      time.Time      `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}
