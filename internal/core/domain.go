package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Salary        Category = "salary"
	Freelance     Category = "freelance"
	Investment    Category = "investment"
	Food          Category = "food"
	Transport     Category = "transport"
	Entertainment Category = "entertainment"
	Utilities     Category = "utilities"
	Healthcare    Category = "healthcare"
	Shopping      Category = "shopping"
	Other         Category = "other"
)

// DateLayout is the calendar date format used on the wire and in the cache.
const DateLayout = "2006-01-02"

// MaxTitleLength bounds Transaction.Title.
const MaxTitleLength = 100

type (
	TransactionType string

	Category string

	// Transaction is a single income or expense entry owned by a user.
	Transaction struct {
		ID        string          `json:"id"`
		Title     string          `json:"title"`
		Amount    float64         `json:"amount"`
		Type      TransactionType `json:"type"`
		Category  Category        `json:"category"`
		Date      string          `json:"date"`
		UserID    string          `json:"userId"`
		CreatedAt string          `json:"createdAt"`
		UpdatedAt string          `json:"updatedAt"`
	}

	// CreateTransactionInput is the payload for a new transaction.
	CreateTransactionInput struct {
		Title    string          `json:"title"`
		Amount   float64         `json:"amount"`
		Type     TransactionType `json:"type"`
		Category Category        `json:"category"`
		Date     string          `json:"date"`
	}

	// UpdateTransactionInput carries only the fields being changed.
	UpdateTransactionInput struct {
		Title    *string          `json:"title,omitempty"`
		Amount   *float64         `json:"amount,omitempty"`
		Type     *TransactionType `json:"type,omitempty"`
		Category *Category        `json:"category,omitempty"`
		Date     *string          `json:"date,omitempty"`
	}

	// TransactionFilters narrows a listing. Empty fields are ignored.
	TransactionFilters struct {
		Type      TransactionType
		Category  Category
		StartDate string
		EndDate   string
	}

	SortField string

	SortOrder string
)

const (
	SortByDate   SortField = "date"
	SortByAmount SortField = "amount"
	SortByTitle  SortField = "title"

	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

var (
	ErrEmptyTitle      = errors.New("title is required")
	ErrTitleTooLong    = fmt.Errorf("title too long (max %d characters)", MaxTitleLength)
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidSort     = errors.New("invalid sort")
)

var incomeCategories = []Category{Salary, Freelance, Investment, Other}

var expenseCategories = []Category{Food, Transport, Entertainment, Utilities, Healthcare, Shopping, Other}

// AllCategories lists every known category.
func AllCategories() []Category {
	return []Category{Salary, Freelance, Investment, Food, Transport, Entertainment, Utilities, Healthcare, Shopping, Other}
}

// CategoriesFor returns the categories offered for a transaction type.
func CategoriesFor(t TransactionType) []Category {
	switch t {
	case Income:
		return append([]Category(nil), incomeCategories...)
	case Expense:
		return append([]Category(nil), expenseCategories...)
	}
	return nil
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (c Category) Valid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

func (f SortField) Valid() bool {
	return f == SortByDate || f == SortByAmount || f == SortByTitle
}

func (o SortOrder) Valid() bool {
	return o == Asc || o == Desc
}

// IsZero reports whether no filter field is set.
func (f TransactionFilters) IsZero() bool {
	return f == TransactionFilters{}
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if len([]rune(title)) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

func validateDate(date string) error {
	if _, err := ParseDate(date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Validate checks the basic shape of a create payload.
func (in CreateTransactionInput) Validate() error {
	if err := validateTitle(in.Title); err != nil {
		return err
	}
	if in.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !in.Type.Valid() {
		return ErrInvalidType
	}
	if !in.Category.Valid() {
		return ErrInvalidCategory
	}
	return validateDate(in.Date)
}

// Validate checks only the fields that are present.
func (in UpdateTransactionInput) Validate() error {
	if in.Title != nil {
		if err := validateTitle(*in.Title); err != nil {
			return err
		}
	}
	if in.Amount != nil && *in.Amount <= 0 {
		return ErrInvalidAmount
	}
	if in.Type != nil && !in.Type.Valid() {
		return ErrInvalidType
	}
	if in.Category != nil && !in.Category.Valid() {
		return ErrInvalidCategory
	}
	if in.Date != nil {
		return validateDate(*in.Date)
	}
	return nil
}

// IsEmpty reports whether the update carries no fields.
func (in UpdateTransactionInput) IsEmpty() bool {
	return in.Title == nil && in.Amount == nil && in.Type == nil && in.Category == nil && in.Date == nil
}

// Apply merges the present fields over t and returns the result.
func (in UpdateTransactionInput) Apply(t Transaction) Transaction {
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Amount != nil {
		t.Amount = *in.Amount
	}
	if in.Type != nil {
		t.Type = *in.Type
	}
	if in.Category != nil {
		t.Category = *in.Category
	}
	if in.Date != nil {
		t.Date = *in.Date
	}
	return t
}

// ParseDate accepts a calendar date or a full RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
