package tool

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	contractx "github.com/tanpawarit/flightdesk/agent/contract"
)

type SearchOffersArgs struct {
	OriginLocationCode      string `json:"originLocationCode" validate:"required,len=3,alpha"`
	DestinationLocationCode string `json:"destinationLocationCode" validate:"required,len=3,alpha"`
	DepartureDate           string `json:"departureDate" validate:"required,datetime=2006-01-02"`
	ReturnDate              string `json:"returnDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Adults                  int    `json:"adults,omitempty" validate:"omitempty,min=1,max=9"`
	Children                int    `json:"children,omitempty" validate:"omitempty,min=0,max=9"`
	Infants                 int    `json:"infants,omitempty" validate:"omitempty,min=0,max=9"`
	TravelClass             string `json:"travelClass,omitempty" validate:"omitempty,oneof=ECONOMY PREMIUM_ECONOMY BUSINESS FIRST"`
	NonStop                 *bool  `json:"nonStop,omitempty"`
	CurrencyCode            string `json:"currencyCode,omitempty" validate:"omitempty,len=3,alpha"`
	Max                     int    `json:"max,omitempty" validate:"omitempty,min=1,max=250"`
}

func (a *SearchOffersArgs) normalize() {
	a.OriginLocationCode = strings.ToUpper(strings.TrimSpace(a.OriginLocationCode))
	a.DestinationLocationCode = strings.ToUpper(strings.TrimSpace(a.DestinationLocationCode))
	a.DepartureDate = strings.TrimSpace(a.DepartureDate)
	a.ReturnDate = strings.TrimSpace(a.ReturnDate)
	a.TravelClass = strings.ToUpper(strings.TrimSpace(a.TravelClass))
	a.CurrencyCode = strings.ToUpper(strings.TrimSpace(a.CurrencyCode))
}

// PriceOfferArgs needs an offerId or a raw offer.
type PriceOfferArgs struct {
	OfferID      string         `json:"offerId,omitempty"`
	Offer        map[string]any `json:"offer,omitempty"`
	CurrencyCode string         `json:"currencyCode,omitempty" validate:"omitempty,len=3,alpha"`
}

func (a *PriceOfferArgs) normalize() {
	a.OfferID = strings.TrimSpace(a.OfferID)
	a.CurrencyCode = strings.ToUpper(strings.TrimSpace(a.CurrencyCode))
}

// CreateOrderArgs needs an offerId or a raw offer, plus at least one traveler.
type CreateOrderArgs struct {
	OfferID   string           `json:"offerId,omitempty"`
	Offer     map[string]any   `json:"offer,omitempty"`
	Travelers []map[string]any `json:"travelers" validate:"required,min=1,dive,required"`
	Contacts  []map[string]any `json:"contacts,omitempty"`
	Remarks   map[string]any   `json:"remarks,omitempty"`
}

func (a *CreateOrderArgs) normalize() {
	a.OfferID = strings.TrimSpace(a.OfferID)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		args := sl.Current().Interface().(PriceOfferArgs)
		if args.OfferID == "" && len(args.Offer) == 0 {
			sl.ReportError(args.OfferID, "offerId", "OfferID", "offerid_or_offer", "")
		}
	}, PriceOfferArgs{})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		args := sl.Current().Interface().(CreateOrderArgs)
		if args.OfferID == "" && len(args.Offer) == 0 {
			sl.ReportError(args.OfferID, "offerId", "OfferID", "offerid_or_offer", "")
		}
	}, CreateOrderArgs{})
	return v
}

// DecodeArgs parses raw tool-call arguments into the record for name and
// validates it. The returned error is always a *contractx.ValidationFailure.
func DecodeArgs(name contractx.CapabilityName, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = "{}"
	}

	switch name {
	case contractx.CapabilitySearchOffers:
		var args SearchOffersArgs
		if err := decodeAndValidate(name, raw, &args); err != nil {
			return nil, err
		}
		return args, nil
	case contractx.CapabilityPriceOffer:
		var args PriceOfferArgs
		if err := decodeAndValidate(name, raw, &args); err != nil {
			return nil, err
		}
		return args, nil
	case contractx.CapabilityCreateOrder:
		var args CreateOrderArgs
		if err := decodeAndValidate(name, raw, &args); err != nil {
			return nil, err
		}
		return args, nil
	default:
		return nil, &contractx.ValidationFailure{Capability: name, Detail: "unknown capability"}
	}
}

type normalizer interface {
	normalize()
}

func decodeAndValidate(name contractx.CapabilityName, raw string, args normalizer) error {
	if err := json.Unmarshal([]byte(raw), args); err != nil {
		return &contractx.ValidationFailure{Capability: name, Detail: fmt.Sprintf("arguments are not a valid JSON object: %v", err)}
	}
	args.normalize()

	if err := validate.Struct(args); err != nil {
		return &contractx.ValidationFailure{Capability: name, Detail: describeValidation(err)}
	}
	return nil
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "offerid_or_offer":
			parts = append(parts, "one of offerId or offer is required")
		case "datetime":
			parts = append(parts, fmt.Sprintf("%s must use the YYYY-MM-DD format", fe.Field()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param()))
		case "min", "max", "len":
			parts = append(parts, fmt.Sprintf("%s violates %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
