package domain

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the dialect has no server-side default
func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TagList stores contact labels. Postgres keeps a native text array; other
// dialects store the pq array literal in a plain text column.
type TagList pq.StringArray

func (t TagList) Value() (driver.Value, error) {
	return pq.StringArray(t).Value()
}

func (t *TagList) Scan(src interface{}) error {
	return (*pq.StringArray)(t).Scan(src)
}

// GormDBDataType implements the gorm migrator hook for dialect-specific types
func (TagList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// ContactType classifies a counterparty
type ContactType string

const (
	ContactTypeCustomer ContactType = "customer"
	ContactTypeVendor   ContactType = "vendor"
	ContactTypeBoth     ContactType = "both"
)

// IsValid checks if the ContactType is a valid enum value
func (ct ContactType) IsValid() bool {
	switch ct {
	case ContactTypeCustomer, ContactTypeVendor, ContactTypeBoth:
		return true
	}
	return false
}

// Contact represents a counterparty (customer, vendor, or both)
type Contact struct {
	BaseModel
	Code            string      `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name            string      `gorm:"type:varchar(200);not null;index"`
	Email           string      `gorm:"type:varchar(255)"`
	Phone           string      `gorm:"type:varchar(50)"`
	Address         string      `gorm:"type:varchar(500)"`
	City            string      `gorm:"type:varchar(100)"`
	Country         string      `gorm:"type:varchar(100)"`
	Type            ContactType `gorm:"type:varchar(20);not null;default:'customer';index"`
	CreditTermsDays int         `gorm:"not null;default:0;column:credit_terms_days"`
	Tags            TagList
	Notes           string `gorm:"type:text"`
	IsActive        bool   `gorm:"not null;default:true;column:is_active"`
}

// IsCustomer reports whether the contact can appear on sales documents
func (c *Contact) IsCustomer() bool {
	return c.Type == ContactTypeCustomer || c.Type == ContactTypeBoth
}

// IsVendor reports whether the contact can appear on purchase documents
func (c *Contact) IsVendor() bool {
	return c.Type == ContactTypeVendor || c.Type == ContactTypeBoth
}

// HasTag reports whether the contact carries the given tag
func (c *Contact) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// DefaultCategory represents the fixed product categories available without
// creating a Category record
type DefaultCategory string

const (
	DefaultCategorySeating     DefaultCategory = "seating"
	DefaultCategoryTables      DefaultCategory = "tables"
	DefaultCategoryStorage     DefaultCategory = "storage"
	DefaultCategoryBeds        DefaultCategory = "beds"
	DefaultCategoryLighting    DefaultCategory = "lighting"
	DefaultCategoryOutdoor     DefaultCategory = "outdoor"
	DefaultCategoryAccessories DefaultCategory = "accessories"
	DefaultCategoryOther       DefaultCategory = "other"
)

// IsValid checks if the DefaultCategory is a valid enum value
func (dc DefaultCategory) IsValid() bool {
	switch dc {
	case DefaultCategorySeating, DefaultCategoryTables, DefaultCategoryStorage,
		DefaultCategoryBeds, DefaultCategoryLighting, DefaultCategoryOutdoor,
		DefaultCategoryAccessories, DefaultCategoryOther:
		return true
	}
	return false
}

// Category represents a user-defined product category
type Category struct {
	BaseModel
	Name        string `gorm:"type:varchar(200);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	IsActive    bool   `gorm:"not null;default:true;column:is_active"`
}

// Product represents a tradeable item
type Product struct {
	BaseModel
	Code                string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name                string             `gorm:"type:varchar(200);not null;index"`
	Description         string             `gorm:"type:text"`
	PurchasePrice       decimal.Decimal    `gorm:"type:decimal(15,2);not null;default:0;column:purchase_price"`
	SalePrice           decimal.Decimal    `gorm:"type:decimal(15,2);not null;default:0;column:sale_price"`
	DefaultCategory     DefaultCategory    `gorm:"type:varchar(50);column:default_category"`
	CategoryID          *uuid.UUID         `gorm:"type:uuid;column:category_id;index"`
	Category            *Category          `gorm:"foreignKey:CategoryID"`
	AnalyticalAccountID *uuid.UUID         `gorm:"type:uuid;column:analytical_account_id"`
	AnalyticalAccount   *AnalyticalAccount `gorm:"foreignKey:AnalyticalAccountID"`
	IsActive            bool               `gorm:"not null;default:true;column:is_active"`
}

// CategoryKey returns the identifier used for rule matching: the Category
// record id when one is linked, otherwise the fixed default category name.
// The two are mutually exclusive on the product.
func (p *Product) CategoryKey() string {
	if p.CategoryID != nil {
		return p.CategoryID.String()
	}
	return string(p.DefaultCategory)
}

// AccountStatus represents the lifecycle status of an analytical account
type AccountStatus string

const (
	AccountStatusConfirmed AccountStatus = "confirmed"
	AccountStatusArchived  AccountStatus = "archived"
)

// AnalyticalAccount represents a cost center used to attribute revenue and
// expense. Accounts form a hierarchy through ParentID; children are resolved
// by index lookup, never embedded.
type AnalyticalAccount struct {
	BaseModel
	Code     string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name     string             `gorm:"type:varchar(200);not null"`
	ParentID *uuid.UUID         `gorm:"type:uuid;column:parent_id;index"`
	Parent   *AnalyticalAccount `gorm:"foreignKey:ParentID"`
	Status   AccountStatus      `gorm:"type:varchar(20);not null;default:'confirmed';index"`
}

// RuleStatus represents the workflow status of an auto-analytical rule
type RuleStatus string

const (
	RuleStatusDraft     RuleStatus = "draft"
	RuleStatusConfirm   RuleStatus = "confirm"
	RuleStatusCancelled RuleStatus = "cancelled"
)

// AutoAnalyticalRule maps order-line attributes to an analytical account.
// Any subset of the match fields may be set; all set fields must match.
type AutoAnalyticalRule struct {
	BaseModel
	Name                string             `gorm:"type:varchar(200);not null"`
	PartnerID           *uuid.UUID         `gorm:"type:uuid;column:partner_id;index"`
	PartnerTag          *string            `gorm:"type:varchar(100);column:partner_tag"`
	ProductCategoryKey  *string            `gorm:"type:varchar(100);column:product_category_key"`
	ProductID           *uuid.UUID         `gorm:"type:uuid;column:product_id;index"`
	AnalyticalAccountID uuid.UUID          `gorm:"type:uuid;not null;column:analytical_account_id"`
	AnalyticalAccount   *AnalyticalAccount `gorm:"foreignKey:AnalyticalAccountID"`
	AutoApply           bool               `gorm:"not null;default:true;column:auto_apply"`
	Status              AccountStatus      `gorm:"type:varchar(20);not null;default:'confirmed'"`
	RuleStatus          RuleStatus         `gorm:"type:varchar(20);not null;default:'draft';column:rule_status;index"`
}

// Specificity returns the number of match fields set on the rule.
// More specific rules take precedence during resolution.
func (r *AutoAnalyticalRule) Specificity() int {
	n := 0
	if r.PartnerID != nil {
		n++
	}
	if r.PartnerTag != nil {
		n++
	}
	if r.ProductCategoryKey != nil {
		n++
	}
	if r.ProductID != nil {
		n++
	}
	return n
}

// Matches reports whether every set field on the rule equals the
// corresponding line attribute.
func (r *AutoAnalyticalRule) Matches(partnerID uuid.UUID, partnerTags []string, categoryKey string, productID uuid.UUID) bool {
	if r.PartnerID != nil && *r.PartnerID != partnerID {
		return false
	}
	if r.PartnerTag != nil {
		found := false
		for _, t := range partnerTags {
			if t == *r.PartnerTag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if r.ProductCategoryKey != nil && *r.ProductCategoryKey != categoryKey {
		return false
	}
	if r.ProductID != nil && *r.ProductID != productID {
		return false
	}
	return true
}

// OrderDirection distinguishes customer-facing from vendor-facing documents.
// Sales orders derive invoices; purchase orders derive vendor bills.
type OrderDirection string

const (
	DirectionSales    OrderDirection = "sales"
	DirectionPurchase OrderDirection = "purchase"
)

// IsValid checks if the OrderDirection is a valid enum value
func (d OrderDirection) IsValid() bool {
	return d == DirectionSales || d == DirectionPurchase
}

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusSent      OrderStatus = "sent"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order represents a sales or purchase order
type Order struct {
	BaseModel
	Number       string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Direction    OrderDirection  `gorm:"type:varchar(20);not null;index"`
	ContactID    uuid.UUID       `gorm:"type:uuid;not null;index;column:contact_id"`
	Contact      *Contact        `gorm:"foreignKey:ContactID"`
	OrderDate    time.Time       `gorm:"type:date;not null;column:order_date"`
	ExpectedDate *time.Time      `gorm:"type:date;column:expected_date"`
	Status       OrderStatus     `gorm:"type:varchar(20);not null;default:'draft';index"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	TaxAmount    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:tax_amount"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:total_amount"`
	Notes        string          `gorm:"type:text"`
	Lines        []OrderLine     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderLine represents one product row on an order
type OrderLine struct {
	BaseModel
	OrderID             uuid.UUID       `gorm:"type:uuid;not null;index;column:order_id"`
	ProductID           uuid.UUID       `gorm:"type:uuid;not null;column:product_id"`
	Product             *Product        `gorm:"foreignKey:ProductID"`
	Description         string          `gorm:"type:varchar(500)"`
	Quantity            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UnitPrice           decimal.Decimal `gorm:"type:decimal(15,2);not null;column:unit_price"`
	TaxRate             decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0;column:tax_rate"`
	TaxAmount           decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:tax_amount"`
	LineTotal           decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:line_total"`
	AnalyticalAccountID *uuid.UUID      `gorm:"type:uuid;column:analytical_account_id"`
	Position            int             `gorm:"not null;default:0"`
}

// ComputeAmounts fills TaxAmount and LineTotal from quantity, unit price and
// tax rate. Tax is rounded half-up once per line; header totals are exact
// sums of already-rounded line values, never re-rounded.
func (l *OrderLine) ComputeAmounts() {
	net := l.Quantity.Mul(l.UnitPrice).Round(2)
	l.TaxAmount = l.Quantity.Mul(l.UnitPrice).Mul(l.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	l.LineTotal = net.Add(l.TaxAmount)
}

// DocumentStatus represents the lifecycle status of a derived document
type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "draft"
	DocumentStatusPosted    DocumentStatus = "posted"
	DocumentStatusCancelled DocumentStatus = "cancelled"
)

// IsValid checks if the DocumentStatus is a valid enum value
func (ds DocumentStatus) IsValid() bool {
	switch ds {
	case DocumentStatusDraft, DocumentStatusPosted, DocumentStatusCancelled:
		return true
	}
	return false
}

// PaymentDisplayStatus is derived from paid vs total amount; never stored
type PaymentDisplayStatus string

const (
	PaymentDisplayNotPaid PaymentDisplayStatus = "not_paid"
	PaymentDisplayPartial PaymentDisplayStatus = "partial"
	PaymentDisplayPaid    PaymentDisplayStatus = "paid"
)

// DerivedDocument represents the invoice or vendor bill generated when an
// order is confirmed. Lines are snapshots copied from the order; editing the
// order afterwards never changes an issued document.
type DerivedDocument struct {
	BaseModel
	Number        string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	Direction     OrderDirection        `gorm:"type:varchar(20);not null;index"`
	SourceOrderID uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex;column:source_order_id"`
	ContactID     uuid.UUID             `gorm:"type:uuid;not null;index;column:contact_id"`
	Contact       *Contact              `gorm:"foreignKey:ContactID"`
	Status        DocumentStatus        `gorm:"type:varchar(20);not null;default:'draft';index"`
	IssueDate     time.Time             `gorm:"type:date;not null;column:issue_date"`
	DueDate       time.Time             `gorm:"type:date;not null;column:due_date"`
	Subtotal      decimal.Decimal       `gorm:"type:decimal(15,2);not null;default:0"`
	TaxAmount     decimal.Decimal       `gorm:"type:decimal(15,2);not null;default:0;column:tax_amount"`
	TotalAmount   decimal.Decimal       `gorm:"type:decimal(15,2);not null;default:0;column:total_amount"`
	PaidAmount    decimal.Decimal       `gorm:"type:decimal(15,2);not null;default:0;column:paid_amount"`
	Lines         []DerivedDocumentLine `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}

// AmountDue returns the remaining unpaid amount
func (d *DerivedDocument) AmountDue() decimal.Decimal {
	return d.TotalAmount.Sub(d.PaidAmount)
}

// PaymentStatus derives the display payment status from the running totals
func (d *DerivedDocument) PaymentStatus() PaymentDisplayStatus {
	switch {
	case d.PaidAmount.IsZero():
		return PaymentDisplayNotPaid
	case d.PaidAmount.GreaterThanOrEqual(d.TotalAmount):
		return PaymentDisplayPaid
	default:
		return PaymentDisplayPartial
	}
}

// DerivedDocumentLine is a snapshot of an order line at confirmation time
type DerivedDocumentLine struct {
	BaseModel
	DocumentID          uuid.UUID       `gorm:"type:uuid;not null;index;column:document_id"`
	ProductID           uuid.UUID       `gorm:"type:uuid;not null;column:product_id"`
	Description         string          `gorm:"type:varchar(500)"`
	Quantity            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UnitPrice           decimal.Decimal `gorm:"type:decimal(15,2);not null;column:unit_price"`
	TaxRate             decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0;column:tax_rate"`
	TaxAmount           decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:tax_amount"`
	LineTotal           decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:line_total"`
	AnalyticalAccountID *uuid.UUID      `gorm:"type:uuid;column:analytical_account_id"`
	Position            int             `gorm:"not null;default:0"`
}

// PaymentType distinguishes money received from money paid out
type PaymentType string

const (
	PaymentTypeIncoming PaymentType = "incoming"
	PaymentTypeOutgoing PaymentType = "outgoing"
)

// Payment is an immutable settlement record against a derived document
type Payment struct {
	BaseModel
	Type        PaymentType     `gorm:"type:varchar(20);not null;index"`
	ContactID   uuid.UUID       `gorm:"type:uuid;not null;index;column:contact_id"`
	DocumentID  uuid.UUID       `gorm:"type:uuid;not null;index;column:document_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	PaymentDate time.Time       `gorm:"type:date;not null;column:payment_date"`
	Method      string          `gorm:"type:varchar(50)"`
	Reference   string          `gorm:"type:varchar(100)"`
}

// BudgetStage represents the workflow stage of a budget
type BudgetStage string

const (
	BudgetStageDraft     BudgetStage = "draft"
	BudgetStageConfirm   BudgetStage = "confirm"
	BudgetStageRevised   BudgetStage = "revised"
	BudgetStageCancelled BudgetStage = "cancelled"
)

// Budget represents a named budgeting period with lines per cost center.
// Revision creates a new budget linked to its predecessor via RevisedBudgetID.
type Budget struct {
	BaseModel
	Name            string       `gorm:"type:varchar(200);not null"`
	StartDate       time.Time    `gorm:"type:date;not null;column:start_date"`
	EndDate         time.Time    `gorm:"type:date;not null;column:end_date"`
	Stage           BudgetStage  `gorm:"type:varchar(20);not null;default:'draft';index"`
	RevisedBudgetID *uuid.UUID   `gorm:"type:uuid;column:revised_budget_id"`
	Lines           []BudgetLine `gorm:"foreignKey:BudgetID;constraint:OnDelete:CASCADE"`
}

// BudgetLineType distinguishes income from expense budget lines
type BudgetLineType string

const (
	BudgetLineIncome  BudgetLineType = "income"
	BudgetLineExpense BudgetLineType = "expense"
)

// BudgetLine tracks budgeted vs achieved amounts for one cost center
type BudgetLine struct {
	BaseModel
	BudgetID            uuid.UUID       `gorm:"type:uuid;not null;index;column:budget_id"`
	AnalyticalAccountID uuid.UUID       `gorm:"type:uuid;not null;column:analytical_account_id"`
	Type                BudgetLineType  `gorm:"type:varchar(20);not null"`
	BudgetedAmount      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:budgeted_amount"`
	AchievedAmount      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:achieved_amount"`
}

// SequenceType identifies a document numbering sequence
type SequenceType string

const (
	SequenceSalesOrder    SequenceType = "sales_order"
	SequencePurchaseOrder SequenceType = "purchase_order"
	SequenceInvoice       SequenceType = "invoice"
	SequenceVendorBill    SequenceType = "vendor_bill"
)

// DocumentSequence is a per-document-type counter. NextNumber holds the last
// issued value; issuance happens through a single atomic increment.
type DocumentSequence struct {
	Name       SequenceType `gorm:"type:varchar(50);primaryKey"`
	Prefix     string       `gorm:"type:varchar(10);not null"`
	NextNumber int64        `gorm:"not null;default:0;column:next_number"`
	Padding    int          `gorm:"not null;default:5"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// SequenceDefaults maps each sequence type to its default prefix and padding
var SequenceDefaults = map[SequenceType]struct {
	Prefix  string
	Padding int
}{
	SequenceSalesOrder:    {Prefix: "SO", Padding: 5},
	SequencePurchaseOrder: {Prefix: "PO", Padding: 5},
	SequenceInvoice:       {Prefix: "INV", Padding: 5},
	SequenceVendorBill:    {Prefix: "BILL", Padding: 5},
}

// OrderSequenceType returns the sequence used for order numbers in a direction
func OrderSequenceType(direction OrderDirection) SequenceType {
	if direction == DirectionPurchase {
		return SequencePurchaseOrder
	}
	return SequenceSalesOrder
}

// DocumentSequenceType returns the sequence used for derived documents in a direction
func DocumentSequenceType(direction OrderDirection) SequenceType {
	if direction == DirectionPurchase {
		return SequenceVendorBill
	}
	return SequenceInvoice
}
