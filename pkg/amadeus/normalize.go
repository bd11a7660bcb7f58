package amadeus

import (
	"fmt"
	"strconv"
)

type Money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type Endpoint struct {
	IATA     string `json:"iata,omitempty"`
	Terminal string `json:"terminal,omitempty"`
}

type Segment struct {
	CarrierCode  string   `json:"carrierCode,omitempty"`
	FlightNumber string   `json:"flightNumber,omitempty"`
	From         Endpoint `json:"from"`
	To           Endpoint `json:"to"`
	Depart       string   `json:"depart,omitempty"`
	Arrive       string   `json:"arrive,omitempty"`
	Aircraft     string   `json:"aircraft,omitempty"`
	Cabin        string   `json:"cabin,omitempty"`
}

type Leg struct {
	Depart   string    `json:"depart,omitempty"`
	Arrive   string    `json:"arrive,omitempty"`
	Duration string    `json:"duration,omitempty"`
	Stops    int       `json:"stops"`
	Segments []Segment `json:"segments"`
}

type Route struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// FlightSummary is the card-friendly view of one provider offer.
type FlightSummary struct {
	ID                 string         `json:"id"`
	OfferID            string         `json:"offerId,omitempty"`
	Route              Route          `json:"route"`
	Outbound           *Leg           `json:"outbound"`
	Inbound            *Leg           `json:"inbound"`
	Price              Money          `json:"price"`
	PricePerAdult      *Money         `json:"pricePerAdult,omitempty"`
	ValidatingAirlines []string       `json:"validatingAirlines,omitempty"`
	Raw                map[string]any `json:"raw"`
}

// NormalizeOffers maps the data array of a search response.
func NormalizeOffers(resp map[string]any) []FlightSummary {
	items := asSlice(resp["data"])
	out := make([]FlightSummary, 0, len(items))
	for _, item := range items {
		offer, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, NormalizeOffer(offer))
	}
	return out
}

func NormalizeOffer(item map[string]any) FlightSummary {
	cabins := cabinsBySegment(item)
	itineraries := asSlice(item["itineraries"])

	summary := FlightSummary{
		ID:  str(item, "id"),
		Raw: item,
	}
	if len(itineraries) > 0 {
		summary.Outbound = normalizeLeg(asMap(itineraries[0]), cabins)
	}
	if len(itineraries) > 1 {
		summary.Inbound = normalizeLeg(asMap(itineraries[1]), cabins)
	}
	if summary.Outbound != nil && len(summary.Outbound.Segments) > 0 {
		segs := summary.Outbound.Segments
		summary.Route = Route{From: segs[0].From.IATA, To: segs[len(segs)-1].To.IATA}
	}

	price := asMap(item["price"])
	total := str(price, "total")
	if total == "" {
		total = "0.00"
	}
	currency := str(price, "currency")
	if currency == "" {
		currency = "USD"
	}
	summary.Price = Money{Amount: total, Currency: currency}

	if amount, err := strconv.ParseFloat(total, 64); err == nil {
		summary.PricePerAdult = &Money{
			Amount:   fmt.Sprintf("%.2f", amount/float64(countAdults(item))),
			Currency: currency,
		}
	}

	for _, code := range asSlice(item["validatingAirlineCodes"]) {
		if s, ok := code.(string); ok {
			summary.ValidatingAirlines = append(summary.ValidatingAirlines, s)
		}
	}
	return summary
}

func normalizeLeg(it map[string]any, cabins map[string]string) *Leg {
	if it == nil {
		return nil
	}
	rawSegs := asSlice(it["segments"])
	leg := &Leg{
		Duration: str(it, "duration"),
		Segments: make([]Segment, 0, len(rawSegs)),
	}
	for _, raw := range rawSegs {
		s := asMap(raw)
		dep := asMap(s["departure"])
		arr := asMap(s["arrival"])
		leg.Segments = append(leg.Segments, Segment{
			CarrierCode:  str(s, "carrierCode"),
			FlightNumber: str(s, "number"),
			From:         Endpoint{IATA: str(dep, "iataCode"), Terminal: str(dep, "terminal")},
			To:           Endpoint{IATA: str(arr, "iataCode"), Terminal: str(arr, "terminal")},
			Depart:       str(dep, "at"),
			Arrive:       str(arr, "at"),
			Aircraft:     str(asMap(s["aircraft"]), "code"),
			Cabin:        cabins[str(s, "id")],
		})
	}
	if n := len(leg.Segments); n > 0 {
		leg.Depart = leg.Segments[0].Depart
		leg.Arrive = leg.Segments[n-1].Arrive
		leg.Stops = n - 1
	}
	return leg
}

// cabinsBySegment reads the first traveler's fare details.
func cabinsBySegment(item map[string]any) map[string]string {
	out := map[string]string{}
	pricings := asSlice(item["travelerPricings"])
	if len(pricings) == 0 {
		return out
	}
	for _, raw := range asSlice(asMap(pricings[0])["fareDetailsBySegment"]) {
		fd := asMap(raw)
		if id := str(fd, "segmentId"); id != "" {
			out[id] = str(fd, "cabin")
		}
	}
	return out
}

func countAdults(item map[string]any) int {
	n := 0
	for _, raw := range asSlice(item["travelerPricings"]) {
		if str(asMap(raw), "travelerType") == "ADULT" {
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
