package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/flightdesk/agent/contract"
)

var (
	//go:embed template/classifier.txt
	classifierRaw string

	//go:embed template/booking.txt
	bookingRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Classifier string
	Booking    string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Classifier: strings.TrimSpace(classifierRaw),
		Booking:    strings.TrimSpace(bookingRaw),
	}
}

func (p PromptSet) Validate() error {
	if p.Classifier == "" {
		return fmt.Errorf("%w: classifier", contractx.ErrPromptMissing)
	}
	if p.Booking == "" {
		return fmt.Errorf("%w: booking", contractx.ErrPromptMissing)
	}
	return nil
}
