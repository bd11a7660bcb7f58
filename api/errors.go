package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/tanpawarit/flightdesk/pkg/offercache"
	"github.com/tanpawarit/flightdesk/pkg/trip"
)

var errOfferRequired = errors.New("one of offerId or offer is required")

func abortWithDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// writeBindError answers a request that failed binding or validation.
func writeBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		abortWithDetail(c, http.StatusUnprocessableEntity, strings.Join(msgs, "; "))
		return
	}
	abortWithDetail(c, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min", "max", "len":
		return fe.Field() + " must satisfy " + fe.Tag() + "=" + fe.Param()
	case "oneof":
		return fe.Field() + " must be one of " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

// writeError maps domain errors to status codes. Anything unrecognized came
// from the provider or its transport and is reported as 502.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errOfferRequired),
		errors.Is(err, offercache.ErrOfferNotFound),
		errors.Is(err, offercache.ErrInvalidOfferID):
		abortWithDetail(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, trip.ErrNotFound):
		abortWithDetail(c, http.StatusNotFound, "Not found")
	default:
		zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("provider call failed")
		abortWithDetail(c, http.StatusBadGateway, err.Error())
	}
}
