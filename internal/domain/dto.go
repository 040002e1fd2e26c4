package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DTOs for API requests and responses. Dates are date-only ISO strings in
// responses; monetary amounts are decimals serialized as JSON numbers.

// PaginatedResponse wraps a list payload with paging metadata
type PaginatedResponse struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

// --- Contacts ---

type CreateContactRequest struct {
	Code            string      `json:"code" validate:"required,max=50"`
	Name            string      `json:"name" validate:"required,max=200"`
	Email           string      `json:"email,omitempty" validate:"omitempty,email"`
	Phone           string      `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address         string      `json:"address,omitempty" validate:"omitempty,max=500"`
	City            string      `json:"city,omitempty" validate:"omitempty,max=100"`
	Country         string      `json:"country,omitempty" validate:"omitempty,max=100"`
	Type            ContactType `json:"type" validate:"required,oneof=customer vendor both"`
	CreditTermsDays int         `json:"creditTermsDays" validate:"gte=0"`
	Tags            []string    `json:"tags,omitempty"`
	Notes           string      `json:"notes,omitempty"`
}

type UpdateContactRequest struct {
	Name            string      `json:"name" validate:"required,max=200"`
	Email           string      `json:"email,omitempty" validate:"omitempty,email"`
	Phone           string      `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address         string      `json:"address,omitempty" validate:"omitempty,max=500"`
	City            string      `json:"city,omitempty" validate:"omitempty,max=100"`
	Country         string      `json:"country,omitempty" validate:"omitempty,max=100"`
	Type            ContactType `json:"type" validate:"required,oneof=customer vendor both"`
	CreditTermsDays int         `json:"creditTermsDays" validate:"gte=0"`
	Tags            []string    `json:"tags,omitempty"`
	Notes           string      `json:"notes,omitempty"`
}

type ContactDTO struct {
	ID              uuid.UUID   `json:"id"`
	Code            string      `json:"code"`
	Name            string      `json:"name"`
	Email           string      `json:"email,omitempty"`
	Phone           string      `json:"phone,omitempty"`
	Address         string      `json:"address,omitempty"`
	City            string      `json:"city,omitempty"`
	Country         string      `json:"country,omitempty"`
	Type            ContactType `json:"type"`
	CreditTermsDays int         `json:"creditTermsDays"`
	Tags            []string    `json:"tags,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	IsActive        bool        `json:"isActive"`
	CreatedAt       string      `json:"createdAt"` // ISO 8601
	UpdatedAt       string      `json:"updatedAt"` // ISO 8601
}

// --- Categories ---

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description,omitempty"`
}

type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

// --- Products ---

// CreateProductRequest carries a single category identifier: a UUID selects a
// user-defined Category record, anything else must be a fixed default
// category name.
type CreateProductRequest struct {
	Code                string          `json:"code" validate:"required,max=50"`
	Name                string          `json:"name" validate:"required,max=200"`
	Description         string          `json:"description,omitempty"`
	PurchasePrice       decimal.Decimal `json:"purchasePrice"`
	SalePrice           decimal.Decimal `json:"salePrice"`
	Category            string          `json:"category" validate:"required"`
	AnalyticalAccountID *uuid.UUID      `json:"analyticalAccountId,omitempty"`
}

type UpdateProductRequest struct {
	Name                string          `json:"name" validate:"required,max=200"`
	Description         string          `json:"description,omitempty"`
	PurchasePrice       decimal.Decimal `json:"purchasePrice"`
	SalePrice           decimal.Decimal `json:"salePrice"`
	Category            string          `json:"category" validate:"required"`
	AnalyticalAccountID *uuid.UUID      `json:"analyticalAccountId,omitempty"`
}

type ProductDTO struct {
	ID                  uuid.UUID       `json:"id"`
	Code                string          `json:"code"`
	Name                string          `json:"name"`
	Description         string          `json:"description,omitempty"`
	PurchasePrice       decimal.Decimal `json:"purchasePrice"`
	SalePrice           decimal.Decimal `json:"salePrice"`
	DefaultCategory     DefaultCategory `json:"defaultCategory,omitempty"`
	CategoryID          *uuid.UUID      `json:"categoryId,omitempty"`
	CategoryName        string          `json:"categoryName,omitempty"`
	AnalyticalAccountID *uuid.UUID      `json:"analyticalAccountId,omitempty"`
	IsActive            bool            `json:"isActive"`
	CreatedAt           string          `json:"createdAt"`
	UpdatedAt           string          `json:"updatedAt"`
}

// --- Analytical accounts ---

type CreateAnalyticalAccountRequest struct {
	Code     string     `json:"code" validate:"required,max=50"`
	Name     string     `json:"name" validate:"required,max=200"`
	ParentID *uuid.UUID `json:"parentId,omitempty"`
}

type AnalyticalAccountDTO struct {
	ID        uuid.UUID     `json:"id"`
	Code      string        `json:"code"`
	Name      string        `json:"name"`
	ParentID  *uuid.UUID    `json:"parentId,omitempty"`
	Status    AccountStatus `json:"status"`
	CreatedAt string        `json:"createdAt"`
	UpdatedAt string        `json:"updatedAt"`
}

// --- Auto-analytical rules ---

type CreateRuleRequest struct {
	Name                string     `json:"name" validate:"required,max=200"`
	PartnerID           *uuid.UUID `json:"partnerId,omitempty"`
	PartnerTag          *string    `json:"partnerTag,omitempty"`
	ProductCategory     *string    `json:"productCategory,omitempty"`
	ProductID           *uuid.UUID `json:"productId,omitempty"`
	AnalyticalAccountID uuid.UUID  `json:"analyticalAccountId" validate:"required"`
	AutoApply           bool       `json:"autoApply"`
}

type RuleDTO struct {
	ID                  uuid.UUID     `json:"id"`
	Name                string        `json:"name"`
	PartnerID           *uuid.UUID    `json:"partnerId,omitempty"`
	PartnerTag          *string       `json:"partnerTag,omitempty"`
	ProductCategory     *string       `json:"productCategory,omitempty"`
	ProductID           *uuid.UUID    `json:"productId,omitempty"`
	AnalyticalAccountID uuid.UUID     `json:"analyticalAccountId"`
	AutoApply           bool          `json:"autoApply"`
	Status              AccountStatus `json:"status"`
	RuleStatus          RuleStatus    `json:"ruleStatus"`
	Specificity         int           `json:"specificity"`
	CreatedAt           string        `json:"createdAt"`
	UpdatedAt           string        `json:"updatedAt"`
}

// ResolveAccountRequest asks the rule engine which cost center a line with
// the given attributes would be assigned.
type ResolveAccountRequest struct {
	ContactID           uuid.UUID  `json:"contactId" validate:"required"`
	ProductID           uuid.UUID  `json:"productId" validate:"required"`
	AnalyticalAccountID *uuid.UUID `json:"analyticalAccountId,omitempty"`
}

type ResolveAccountResponse struct {
	AnalyticalAccountID *uuid.UUID `json:"analyticalAccountId"`
}

// --- Orders ---

// OrderLineRequest describes one line. UnitPrice is optional; when omitted
// the product's sale or purchase price is used depending on the order
// direction.
type OrderLineRequest struct {
	ProductID           uuid.UUID        `json:"productId" validate:"required"`
	Description         string           `json:"description,omitempty" validate:"omitempty,max=500"`
	Quantity            decimal.Decimal  `json:"quantity"`
	UnitPrice           *decimal.Decimal `json:"unitPrice,omitempty"`
	TaxRate             decimal.Decimal  `json:"taxRate"`
	AnalyticalAccountID *uuid.UUID       `json:"analyticalAccountId,omitempty"`
}

type CreateOrderRequest struct {
	Direction    OrderDirection     `json:"direction" validate:"required,oneof=sales purchase"`
	ContactID    uuid.UUID          `json:"contactId" validate:"required"`
	OrderDate    *time.Time         `json:"orderDate,omitempty"`
	ExpectedDate *time.Time         `json:"expectedDate,omitempty"`
	Notes        string             `json:"notes,omitempty"`
	Lines        []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type UpdateOrderLinesRequest struct {
	Lines []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ConfirmOrderRequest optionally selects the initial status of the derived
// document; default is draft.
type ConfirmOrderRequest struct {
	DocumentStatus *DocumentStatus `json:"documentStatus,omitempty" validate:"omitempty,oneof=draft posted"`
}

type OrderLineDTO struct {
	ID                  uuid.UUID       `json:"id"`
	ProductID           uuid.UUID       `json:"productId"`
	Description         string          `json:"description,omitempty"`
	Quantity            decimal.Decimal `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unitPrice"`
	TaxRate             decimal.Decimal `json:"taxRate"`
	TaxAmount           decimal.Decimal `json:"taxAmount"`
	LineTotal           decimal.Decimal `json:"lineTotal"`
	AnalyticalAccountID *uuid.UUID      `json:"analyticalAccountId,omitempty"`
	Position            int             `json:"position"`
}

type OrderDTO struct {
	ID           uuid.UUID       `json:"id"`
	Number       string          `json:"number"`
	Direction    OrderDirection  `json:"direction"`
	ContactID    uuid.UUID       `json:"contactId"`
	ContactName  string          `json:"contactName,omitempty"`
	OrderDate    string          `json:"orderDate"`
	ExpectedDate string          `json:"expectedDate,omitempty"`
	Status       OrderStatus     `json:"status"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	TaxAmount    decimal.Decimal `json:"taxAmount"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Notes        string          `json:"notes,omitempty"`
	Lines        []OrderLineDTO  `json:"lines"`
	CreatedAt    string          `json:"createdAt"`
	UpdatedAt    string          `json:"updatedAt"`
}

// --- Derived documents ---

type DerivedDocumentLineDTO struct {
	ID                  uuid.UUID       `json:"id"`
	ProductID           uuid.UUID       `json:"productId"`
	Description         string          `json:"description,omitempty"`
	Quantity            decimal.Decimal `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unitPrice"`
	TaxRate             decimal.Decimal `json:"taxRate"`
	TaxAmount           decimal.Decimal `json:"taxAmount"`
	LineTotal           decimal.Decimal `json:"lineTotal"`
	AnalyticalAccountID *uuid.UUID      `json:"analyticalAccountId,omitempty"`
	Position            int             `json:"position"`
}

type DerivedDocumentDTO struct {
	ID            uuid.UUID                `json:"id"`
	Number        string                   `json:"number"`
	Direction     OrderDirection           `json:"direction"`
	SourceOrderID uuid.UUID                `json:"sourceOrderId"`
	ContactID     uuid.UUID                `json:"contactId"`
	ContactName   string                   `json:"contactName,omitempty"`
	Status        DocumentStatus           `json:"status"`
	IssueDate     string                   `json:"issueDate"`
	DueDate       string                   `json:"dueDate"`
	Subtotal      decimal.Decimal          `json:"subtotal"`
	TaxAmount     decimal.Decimal          `json:"taxAmount"`
	TotalAmount   decimal.Decimal          `json:"totalAmount"`
	PaidAmount    decimal.Decimal          `json:"paidAmount"`
	PaymentStatus PaymentDisplayStatus     `json:"paymentStatus"`
	Lines         []DerivedDocumentLineDTO `json:"lines"`
	CreatedAt     string                   `json:"createdAt"`
	UpdatedAt     string                   `json:"updatedAt"`
}

// --- Payments ---

type RecordPaymentRequest struct {
	DocumentID  uuid.UUID       `json:"documentId" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate *time.Time      `json:"paymentDate,omitempty"`
	Method      string          `json:"method,omitempty" validate:"omitempty,max=50"`
	Reference   string          `json:"reference,omitempty" validate:"omitempty,max=100"`
}

type PaymentDTO struct {
	ID          uuid.UUID       `json:"id"`
	Type        PaymentType     `json:"type"`
	ContactID   uuid.UUID       `json:"contactId"`
	DocumentID  uuid.UUID       `json:"documentId"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"paymentDate"`
	Method      string          `json:"method,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	CreatedAt   string          `json:"createdAt"`
}

// --- Budgets ---

type BudgetLineRequest struct {
	AnalyticalAccountID uuid.UUID       `json:"analyticalAccountId" validate:"required"`
	Type                BudgetLineType  `json:"type" validate:"required,oneof=income expense"`
	BudgetedAmount      decimal.Decimal `json:"budgetedAmount"`
}

type CreateBudgetRequest struct {
	Name      string              `json:"name" validate:"required,max=200"`
	StartDate time.Time           `json:"startDate" validate:"required"`
	EndDate   time.Time           `json:"endDate" validate:"required"`
	Lines     []BudgetLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ReviseBudgetRequest creates a successor budget; an empty name reuses the
// predecessor's name.
type ReviseBudgetRequest struct {
	Name string `json:"name,omitempty" validate:"omitempty,max=200"`
}

type UpdateAchievedRequest struct {
	AchievedAmount decimal.Decimal `json:"achievedAmount"`
}

type BudgetLineDTO struct {
	ID                  uuid.UUID       `json:"id"`
	AnalyticalAccountID uuid.UUID       `json:"analyticalAccountId"`
	Type                BudgetLineType  `json:"type"`
	BudgetedAmount      decimal.Decimal `json:"budgetedAmount"`
	AchievedAmount      decimal.Decimal `json:"achievedAmount"`
	AchievedPercent     float64         `json:"achievedPercent"`
}

type BudgetDTO struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	StartDate       string          `json:"startDate"`
	EndDate         string          `json:"endDate"`
	Stage           BudgetStage     `json:"stage"`
	RevisedBudgetID *uuid.UUID      `json:"revisedBudgetId,omitempty"`
	Lines           []BudgetLineDTO `json:"lines"`
	CreatedAt       string          `json:"createdAt"`
	UpdatedAt       string          `json:"updatedAt"`
}
