package models

import (
	"database/sql"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Transaction is one invoice line of the transactions table.
type Transaction struct {
	InvoiceNumber   string
	ProductCode     string
	Description     string
	Quantity        sql.NullInt64
	InvoiceDate     time.Time
	UnitPrice       decimal.NullDecimal
	CustomerID      string
	Country         string
	ProductCategory string
	PriceCategory   string
	TotalValue      decimal.NullDecimal
	SingleLine      bool
	Year            int
	Month           int
	Day             int
	DayOfWeek       int
	WeekOfYear      int
}

type CountrySales struct {
	Country       string  `json:"pais"`
	TotalSales    float64 `json:"total_vendas"`
	Customers     int     `json:"numero_clientes"`
	TicketAverage float64 `json:"ticket_medio"`
}

type SalesByCountry struct {
	Countries      []CountrySales `json:"data"`
	TotalCountries int            `json:"total_paises"`
}

type PeriodSales struct {
	Period        string  `json:"periodo"`
	TotalSales    float64 `json:"total_vendas"`
	Sales         int     `json:"quantidade_vendas"`
	TicketAverage float64 `json:"ticket_medio"`
}

type TemporalAnalysis struct {
	ByMonth     []PeriodSales `json:"vendas_por_mes"`
	ByDayOfWeek []PeriodSales `json:"vendas_por_dia_semana"`
	ByWeek      []PeriodSales `json:"vendas_por_semana"`
}

type ProductSales struct {
	Code          string  `json:"codigo"`
	Description   string  `json:"descricao"`
	QuantitySold  int64   `json:"quantidade_vendida"`
	TotalValue    float64 `json:"valor_total"`
	TicketAverage float64 `json:"ticket_medio"`
}

type CategorySales struct {
	Category      string  `json:"categoria"`
	TotalValue    float64 `json:"valor_total"`
	QuantitySold  int64   `json:"quantidade_vendida"`
	TicketAverage float64 `json:"ticket_medio"`
}

type ProductAnalysis struct {
	TopProducts       []ProductSales     `json:"top_produtos"`
	Categories        []CategorySales    `json:"categorias"`
	PriceDistribution map[string]float64 `json:"distribuicao_preco"`
}

type CustomerSales struct {
	CustomerID     string  `json:"id_cliente"`
	TotalPurchases float64 `json:"total_compras"`
	Frequency      int     `json:"frequencia_compras"`
	TicketAverage  float64 `json:"ticket_medio"`
	Country        string  `json:"pais"`
}

type CustomerAnalysis struct {
	TopCustomers         []CustomerSales `json:"top_clientes"`
	CountryDistribution  map[string]int  `json:"distribuicao_por_pais"`
	PurchasesPerCustomer float64         `json:"media_compras_por_cliente"`
}

type DailyBilling struct {
	Date          civil.Date `json:"data"`
	TotalValue    float64    `json:"valor_total"`
	Invoices      int        `json:"quantidade_faturas"`
	TicketAverage float64    `json:"ticket_medio"`
}

type BillingAnalysis struct {
	AverageInvoiceValue float64        `json:"media_diaria"`
	SingleLineShare     float64        `json:"proporcao_faturas_unicas"`
	Daily               []DailyBilling `json:"evolucao_temporal"`
}

// Stats summarises the transaction table for the admin endpoint.
type Stats struct {
	Transactions int64 `json:"transactions"`
}

// The Empty* constructors return views whose collections encode as [] and {}
// rather than null.

func EmptySalesByCountry() SalesByCountry {
	return SalesByCountry{Countries: []CountrySales{}}
}

func EmptyTemporalAnalysis() TemporalAnalysis {
	return TemporalAnalysis{
		ByMonth:     []PeriodSales{},
		ByDayOfWeek: []PeriodSales{},
		ByWeek:      []PeriodSales{},
	}
}

func EmptyProductAnalysis() ProductAnalysis {
	return ProductAnalysis{
		TopProducts:       []ProductSales{},
		Categories:        []CategorySales{},
		PriceDistribution: map[string]float64{},
	}
}

func EmptyCustomerAnalysis() CustomerAnalysis {
	return CustomerAnalysis{
		TopCustomers:        []CustomerSales{},
		CountryDistribution: map[string]int{},
	}
}

func EmptyBillingAnalysis() BillingAnalysis {
	return BillingAnalysis{Daily: []DailyBilling{}}
}
