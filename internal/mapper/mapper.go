// Package mapper converts domain models to response DTOs.
package mapper

import (
	"time"

	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var decimalHundred = decimal.NewFromInt(100)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func ToContactDTO(contact *domain.Contact) domain.ContactDTO {
	return domain.ContactDTO{
		ID:              contact.ID,
		Code:            contact.Code,
		Name:            contact.Name,
		Email:           contact.Email,
		Phone:           contact.Phone,
		Address:         contact.Address,
		City:            contact.City,
		Country:         contact.Country,
		Type:            contact.Type,
		CreditTermsDays: contact.CreditTermsDays,
		Tags:            []string(contact.Tags),
		Notes:           contact.Notes,
		IsActive:        contact.IsActive,
		CreatedAt:       formatTime(contact.CreatedAt),
		UpdatedAt:       formatTime(contact.UpdatedAt),
	}
}

func ToCategoryDTO(category *domain.Category) domain.CategoryDTO {
	return domain.CategoryDTO{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		IsActive:    category.IsActive,
		CreatedAt:   formatTime(category.CreatedAt),
		UpdatedAt:   formatTime(category.UpdatedAt),
	}
}

func ToProductDTO(product *domain.Product) domain.ProductDTO {
	dto := domain.ProductDTO{
		ID:                  product.ID,
		Code:                product.Code,
		Name:                product.Name,
		Description:         product.Description,
		PurchasePrice:       product.PurchasePrice,
		SalePrice:           product.SalePrice,
		DefaultCategory:     product.DefaultCategory,
		CategoryID:          product.CategoryID,
		AnalyticalAccountID: product.AnalyticalAccountID,
		IsActive:            product.IsActive,
		CreatedAt:           formatTime(product.CreatedAt),
		UpdatedAt:           formatTime(product.UpdatedAt),
	}
	if product.Category != nil {
		dto.CategoryName = product.Category.Name
	}
	return dto
}

func ToAnalyticalAccountDTO(account *domain.AnalyticalAccount) domain.AnalyticalAccountDTO {
	return domain.AnalyticalAccountDTO{
		ID:        account.ID,
		Code:      account.Code,
		Name:      account.Name,
		ParentID:  account.ParentID,
		Status:    account.Status,
		CreatedAt: formatTime(account.CreatedAt),
		UpdatedAt: formatTime(account.UpdatedAt),
	}
}

func ToRuleDTO(rule *domain.AutoAnalyticalRule) domain.RuleDTO {
	return domain.RuleDTO{
		ID:                  rule.ID,
		Name:                rule.Name,
		PartnerID:           rule.PartnerID,
		PartnerTag:          rule.PartnerTag,
		ProductCategory:     rule.ProductCategoryKey,
		ProductID:           rule.ProductID,
		AnalyticalAccountID: rule.AnalyticalAccountID,
		AutoApply:           rule.AutoApply,
		Status:              rule.Status,
		RuleStatus:          rule.RuleStatus,
		Specificity:         rule.Specificity(),
		CreatedAt:           formatTime(rule.CreatedAt),
		UpdatedAt:           formatTime(rule.UpdatedAt),
	}
}

func ToOrderLineDTO(line *domain.OrderLine) domain.OrderLineDTO {
	return domain.OrderLineDTO{
		ID:                  line.ID,
		ProductID:           line.ProductID,
		Description:         line.Description,
		Quantity:            line.Quantity,
		UnitPrice:           line.UnitPrice,
		TaxRate:             line.TaxRate,
		TaxAmount:           line.TaxAmount,
		LineTotal:           line.LineTotal,
		AnalyticalAccountID: line.AnalyticalAccountID,
		Position:            line.Position,
	}
}

func ToOrderDTO(order *domain.Order) domain.OrderDTO {
	dto := domain.OrderDTO{
		ID:          order.ID,
		Number:      order.Number,
		Direction:   order.Direction,
		ContactID:   order.ContactID,
		OrderDate:   formatDate(order.OrderDate),
		Status:      order.Status,
		Subtotal:    order.Subtotal,
		TaxAmount:   order.TaxAmount,
		TotalAmount: order.TotalAmount,
		Notes:       order.Notes,
		Lines:       make([]domain.OrderLineDTO, len(order.Lines)),
		CreatedAt:   formatTime(order.CreatedAt),
		UpdatedAt:   formatTime(order.UpdatedAt),
	}
	if order.ExpectedDate != nil {
		dto.ExpectedDate = formatDate(*order.ExpectedDate)
	}
	if order.Contact != nil {
		dto.ContactName = order.Contact.Name
	}
	for i := range order.Lines {
		dto.Lines[i] = ToOrderLineDTO(&order.Lines[i])
	}
	return dto
}

func ToDerivedDocumentLineDTO(line *domain.DerivedDocumentLine) domain.DerivedDocumentLineDTO {
	return domain.DerivedDocumentLineDTO{
		ID:                  line.ID,
		ProductID:           line.ProductID,
		Description:         line.Description,
		Quantity:            line.Quantity,
		UnitPrice:           line.UnitPrice,
		TaxRate:             line.TaxRate,
		TaxAmount:           line.TaxAmount,
		LineTotal:           line.LineTotal,
		AnalyticalAccountID: line.AnalyticalAccountID,
		Position:            line.Position,
	}
}

func ToDerivedDocumentDTO(doc *domain.DerivedDocument) domain.DerivedDocumentDTO {
	dto := domain.DerivedDocumentDTO{
		ID:            doc.ID,
		Number:        doc.Number,
		Direction:     doc.Direction,
		SourceOrderID: doc.SourceOrderID,
		ContactID:     doc.ContactID,
		Status:        doc.Status,
		IssueDate:     formatDate(doc.IssueDate),
		DueDate:       formatDate(doc.DueDate),
		Subtotal:      doc.Subtotal,
		TaxAmount:     doc.TaxAmount,
		TotalAmount:   doc.TotalAmount,
		PaidAmount:    doc.PaidAmount,
		PaymentStatus: doc.PaymentStatus(),
		Lines:         make([]domain.DerivedDocumentLineDTO, len(doc.Lines)),
		CreatedAt:     formatTime(doc.CreatedAt),
		UpdatedAt:     formatTime(doc.UpdatedAt),
	}
	if doc.Contact != nil {
		dto.ContactName = doc.Contact.Name
	}
	for i := range doc.Lines {
		dto.Lines[i] = ToDerivedDocumentLineDTO(&doc.Lines[i])
	}
	return dto
}

func ToPaymentDTO(payment *domain.Payment) domain.PaymentDTO {
	return domain.PaymentDTO{
		ID:          payment.ID,
		Type:        payment.Type,
		ContactID:   payment.ContactID,
		DocumentID:  payment.DocumentID,
		Amount:      payment.Amount,
		PaymentDate: formatDate(payment.PaymentDate),
		Method:      payment.Method,
		Reference:   payment.Reference,
		CreatedAt:   formatTime(payment.CreatedAt),
	}
}

func ToBudgetLineDTO(line *domain.BudgetLine) domain.BudgetLineDTO {
	dto := domain.BudgetLineDTO{
		ID:                  line.ID,
		AnalyticalAccountID: line.AnalyticalAccountID,
		Type:                line.Type,
		BudgetedAmount:      line.BudgetedAmount,
		AchievedAmount:      line.AchievedAmount,
	}
	if !line.BudgetedAmount.IsZero() {
		percent, _ := line.AchievedAmount.
			Div(line.BudgetedAmount).
			Mul(decimalHundred).
			Round(2).
			Float64()
		dto.AchievedPercent = percent
	}
	return dto
}

func ToBudgetDTO(budget *domain.Budget) domain.BudgetDTO {
	dto := domain.BudgetDTO{
		ID:              budget.ID,
		Name:            budget.Name,
		StartDate:       formatDate(budget.StartDate),
		EndDate:         formatDate(budget.EndDate),
		Stage:           budget.Stage,
		RevisedBudgetID: budget.RevisedBudgetID,
		Lines:           make([]domain.BudgetLineDTO, len(budget.Lines)),
		CreatedAt:       formatTime(budget.CreatedAt),
		UpdatedAt:       formatTime(budget.UpdatedAt),
	}
	for i := range budget.Lines {
		dto.Lines[i] = ToBudgetLineDTO(&budget.Lines[i])
	}
	return dto
}
