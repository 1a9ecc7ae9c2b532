package model

import "time"

// SentinelID marks an entity that has not been persisted yet. The backend
// assigns real ids on commit.
const SentinelID = "new"

type ContractStatus string

const (
	ContractStatusDraft     ContractStatus = "DRAFT"
	ContractStatusExecuted  ContractStatus = "EXECUTED"
	ContractStatusFinalized ContractStatus = "FINALIZED"
	ContractStatusCancelled ContractStatus = "CANCELLED"
)

type NeedType string

const (
	NeedTypeAtNeed  NeedType = "AT_NEED"
	NeedTypePreNeed NeedType = "PRE_NEED"
)

type SaleType string

const (
	SaleTypePrimary SaleType = "PRIMARY"
	SaleTypeAddOn   SaleType = "ADD_ON"
)

type PaymentMethod string

const (
	PaymentMethodCash      PaymentMethod = "CASH"
	PaymentMethodCheck     PaymentMethod = "CHECK"
	PaymentMethodCard      PaymentMethod = "CARD"
	PaymentMethodInsurance PaymentMethod = "INSURANCE"
	PaymentMethodOther     PaymentMethod = "OTHER"
)

// Contract is the persisted document shape, as stored and as returned by the
// backend after commit. Totals on Sale are server-computed.
type Contract struct {
	ID                       string            `json:"id,omitempty"`
	ContractNumber           string            `json:"contractNumber"`
	LocationID               string            `json:"locationId"`
	NeedType                 NeedType          `json:"needType"`
	PrePrintedContractNumber string            `json:"prePrintedContractNumber,omitempty"`
	People                   []ContractPerson  `json:"people"`
	Sales                    []Sale            `json:"sales"`
	Payments                 []ContractPayment `json:"payments"`
	Meta                     ContractMeta      `json:"meta"`
}

type ContractMeta struct {
	Status       ContractStatus `json:"status"`
	DateExecuted *time.Time     `json:"dateExecuted,omitempty"`
	DateSigned   *time.Time     `json:"dateSigned,omitempty"`
	IsCancelled  bool           `json:"isCancelled"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

type Sale struct {
	ID            string     `json:"id,omitempty"`
	SaleType      SaleType   `json:"saleType"`
	SaleDate      time.Time  `json:"saleDate"`
	Items         []SaleItem `json:"items"`
	Subtotal      float64    `json:"subtotal"`
	TaxTotal      float64    `json:"taxTotal"`
	DiscountTotal float64    `json:"discountTotal"`
	GrandTotal    float64    `json:"grandTotal"`
}

type SaleItem struct {
	ID          string     `json:"id,omitempty"`
	ItemID      string     `json:"itemId,omitempty"`
	Description string     `json:"description"`
	NeedType    NeedType   `json:"needType"`
	Quantity    int        `json:"quantity"`
	UnitPrice   float64    `json:"unitPrice"`
	Cost        float64    `json:"cost"`
	BookPrice   float64    `json:"bookPrice"`
	BookCost    float64    `json:"bookCost"`
	IsCancelled bool       `json:"isCancelled"`
	Ordinal     int        `json:"ordinal"`
	SalesTax    []TaxLine  `json:"salesTax"`
	Discounts   []Discount `json:"discounts"`
}

type TaxLine struct {
	TaxRate   float64 `json:"taxRate"`
	TaxAmount float64 `json:"taxAmount"`
}

type Discount struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

type ContractPayment struct {
	ID          string             `json:"id,omitempty"`
	Date        time.Time          `json:"date"`
	Method      PaymentMethod      `json:"method"`
	Amount      float64            `json:"amount"`
	Reference   string             `json:"reference,omitempty"`
	Notes       string             `json:"notes,omitempty"`
	Allocations map[string]float64 `json:"allocations,omitempty"`
	// IsNew is derived during serialization: payments without a persisted id
	// are flagged so the backend treats them as inserts.
	IsNew bool `json:"isNew,omitempty"`
}

type ContractPerson struct {
	ID        string     `json:"id,omitempty"`
	Roles     RoleSet    `json:"roles"`
	Name      PersonName `json:"name"`
	Phones    []Phone    `json:"phones"`
	Addresses []Address  `json:"addresses"`
	Emails    []Email    `json:"emails"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type PersonName struct {
	First  string `json:"first"`
	Middle string `json:"middle"`
	Last   string `json:"last"`
	Suffix string `json:"suffix"`
}

type Phone struct {
	Number string `json:"number"`
	Type   string `json:"type"`
}

type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

type Email struct {
	Address string `json:"address"`
	Type    string `json:"type"`
}
