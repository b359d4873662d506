package api

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/errors"
)

// parametersSchema describes the underwriting input object. Range rules live
// in the engine's own validation; the schema rejects malformed shapes before
// they reach it.
const parametersSchema = `{
	"type": "object",
	"required": [
		"totalUnits", "purchasePrice", "constructionCost", "closingCosts",
		"avgMonthlyRent", "operatingExpenseRatio", "loanToValue",
		"annualInterestRate", "loanTermYears", "holdingPeriodYears", "exitCapRate"
	],
	"properties": {
		"totalUnits":            {"type": "integer"},
		"purchasePrice":         {"type": "number"},
		"constructionCost":      {"type": "number"},
		"closingCosts":          {"type": "number"},
		"avgMonthlyRent":        {"type": "number"},
		"operatingExpenseRatio": {"type": "number"},
		"loanToValue":           {"type": "number"},
		"annualInterestRate":    {"type": "number"},
		"loanTermYears":         {"type": "integer"},
		"holdingPeriodYears":    {"type": "integer"},
		"exitCapRate":           {"type": "number"}
	}
}`

const dealPayloadSchema = `{
	"type": "object",
	"required": ["name", "location", "parameters"],
	"properties": {
		"name":       {"type": "string", "minLength": 1},
		"location":   {"type": "string", "minLength": 1},
		"zipcode":    {"type": "string"},
		"status":     {"type": "string"},
		"parameters": ` + parametersSchema + `
	}
}`

var (
	underwriteSchema = gojsonschema.NewStringLoader(parametersSchema)
	dealSchema       = gojsonschema.NewStringLoader(dealPayloadSchema)
)

func validatePayload(schema gojsonschema.JSONLoader, raw []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return apperrors.NewInvalidPayloadError(err.Error())
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return apperrors.NewInvalidPayloadError(strings.Join(msgs, "; "))
}
