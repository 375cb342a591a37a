package contracts

import "github.com/shopspring/decimal"

func init() {
	// valores monetários saem como número JSON, não como string
	decimal.MarshalJSONWithoutQuotes = true
}

type MessageResponse struct {
	Message string `json:"message"`
}
