package tool

import (
	"context"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/flightdesk/agent/contract"
)

// Executor validates raw tool-call arguments and invokes the capability.
// Validation failures are returned in the call result without touching the
// adapter.
type Executor func(ctx context.Context, tool string, argumentsInJSON string) contractx.CapabilityCall

func BuildForAgent(agentType contractx.AgentType, adapter contractx.CapabilityAdapter) ([]*schema.ToolInfo, Executor) {
	return infosForAgent(agentType), NewExecutor(adapter)
}

func NewExecutor(adapter contractx.CapabilityAdapter) Executor {
	return func(ctx context.Context, tool string, argumentsInJSON string) contractx.CapabilityCall {
		name, err := contractx.ParseCapabilityName(tool)
		if err != nil {
			return contractx.CapabilityCall{
				Name:   contractx.CapabilityName(tool),
				Result: &contractx.ValidationFailure{Capability: contractx.CapabilityName(tool), Detail: err.Error()},
			}
		}

		args, err := DecodeArgs(name, argumentsInJSON)
		if err != nil {
			failure, ok := err.(*contractx.ValidationFailure)
			if !ok {
				failure = &contractx.ValidationFailure{Capability: name, Detail: err.Error()}
			}
			return contractx.CapabilityCall{Name: name, Result: failure}
		}

		return contractx.CapabilityCall{
			Name:   name,
			Args:   args,
			Result: adapter.Invoke(ctx, name, args),
		}
	}
}

func infosForAgent(agentType contractx.AgentType) []*schema.ToolInfo {
	switch agentType {
	case contractx.AgentTypeBooking:
		return []*schema.ToolInfo{
			{
				Name: string(contractx.CapabilitySearchOffers),
				Desc: "Search flight offers between two airports on a date.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"originLocationCode":      {Type: schema.String, Desc: "Origin IATA code, e.g. AMM", Required: true},
					"destinationLocationCode": {Type: schema.String, Desc: "Destination IATA code, e.g. DOH", Required: true},
					"departureDate":           {Type: schema.String, Desc: "Departure date YYYY-MM-DD", Required: true},
					"returnDate":              {Type: schema.String, Desc: "Return date YYYY-MM-DD for round trips"},
					"adults":                  {Type: schema.Integer, Desc: "Number of adult travelers, default 1"},
					"children":                {Type: schema.Integer, Desc: "Number of child travelers"},
					"infants":                 {Type: schema.Integer, Desc: "Number of infant travelers"},
					"travelClass": {
						Type: schema.String,
						Desc: "Cabin class",
						Enum: []string{"ECONOMY", "PREMIUM_ECONOMY", "BUSINESS", "FIRST"},
					},
					"nonStop":      {Type: schema.Boolean, Desc: "Only direct flights"},
					"currencyCode": {Type: schema.String, Desc: "ISO currency code, default USD"},
					"max":          {Type: schema.Integer, Desc: "Maximum number of offers to return"},
				}),
			},
			{
				Name: string(contractx.CapabilityPriceOffer),
				Desc: "Confirm the current price of a flight offer. Provide offerId from a previous search or the raw offer object.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"offerId":      {Type: schema.String, Desc: "Offer id returned by search_offers"},
					"offer":        {Type: schema.Object, Desc: "Raw flight offer object"},
					"currencyCode": {Type: schema.String, Desc: "ISO currency code"},
				}),
			},
			{
				Name: string(contractx.CapabilityCreateOrder),
				Desc: "Book a priced flight offer for the given travelers.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"offerId": {Type: schema.String, Desc: "Offer id returned by search_offers"},
					"offer":   {Type: schema.Object, Desc: "Raw priced flight offer object"},
					"travelers": {
						Type:     schema.Array,
						Desc:     "Traveler records with name, dateOfBirth, gender and contact",
						Required: true,
						ElemInfo: &schema.ParameterInfo{Type: schema.Object},
					},
					"contacts": {
						Type:     schema.Array,
						Desc:     "Booking contact records",
						ElemInfo: &schema.ParameterInfo{Type: schema.Object},
					},
					"remarks": {Type: schema.Object, Desc: "Optional booking remarks"},
				}),
			},
		}
	default:
		return nil
	}
}
