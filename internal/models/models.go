package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Student struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name       string `gorm:"not null"`
	Phone      string
	Email      string
	Instrument string
	Active     bool `gorm:"default:true"`

	Payments []Payment
}

// A Payment is a purchased block of lessons: either a weekly-recurring
// period (PeriodStart/PeriodEnd set) or an explicit list of dates
// (both nil; the dates live only on the generated Classes).
type Payment struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Code      uuid.UUID       `gorm:"type:text;uniqueIndex"` // external reference for receipts/QR
	StudentID uint            `gorm:"index;not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	PaymentDate time.Time // when the payment was recorded, not a lesson date
	PeriodStart *time.Time
	PeriodEnd   *time.Time

	Description string
	InvoiceLink string

	Student Student
	Classes []Class
}

// Recurring reports whether the payment was created from a weekly period
// rather than an explicit date list.
func (p *Payment) Recurring() bool {
	return p.PeriodStart != nil && p.PeriodEnd != nil
}

// Status: "not_started", "taken", "absent", "rescheduled", "made_up"
type Class struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	StudentID uint `gorm:"index;not null"` // denormalized from Payment for queries
	PaymentID uint `gorm:"index;not null"`

	Date   time.Time `gorm:"not null"` // calendar day, anchored at noon UTC
	Status string    `gorm:"default:not_started"`

	RescheduledDate *time.Time // non-nil only while Status == "rescheduled"
	Notes           string
	Active          bool `gorm:"default:true"` // false once reconciled out of the payment
}
