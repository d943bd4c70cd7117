package domain

import "github.com/shopspring/decimal"

const CurrencyUSD = "USD"

type Money struct {
	Currency string
	Amount   decimal.Decimal
}

type QuoteLine struct {
	ProductID int
	Name      string
	Quantity  int
	UnitPrice Money
	LineTotal Money
}

type Quote struct {
	Lines      []QuoteLine
	TotalItems int
	Total      Money
}
