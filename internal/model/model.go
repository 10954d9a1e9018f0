package model

import (
	"time"
)

// PerSeatPrice is the flat price of a single seat.
const PerSeatPrice = 50

type RowCategory string

const (
	CategoryGround  RowCategory = "ground"
	CategoryBalcony RowCategory = "balcony"
)

type SeatRow struct {
	ID       uint        `gorm:"primaryKey" json:"id"`
	Name     string      `gorm:"size:64;not null;uniqueIndex" json:"name"`
	Category RowCategory `gorm:"type:varchar(16);not null" json:"category"`
	Hidden   bool        `gorm:"not null;default:false" json:"hidden"`

	Seats []Seat `gorm:"constraint:OnDelete:CASCADE" json:"seats,omitempty"`
}

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatBooked    SeatStatus = "booked"
)

// Seat is one reservable seat in a row. Status flips between available and
// booked through a conditional update, which is the authoritative guard
// against two bookings holding the same seat.
type Seat struct {
	ID        uint       `gorm:"primaryKey" json:"-"`
	SeatRowID uint       `gorm:"not null;uniqueIndex:idx_row_number" json:"row_id"`
	Number    uint       `gorm:"not null;uniqueIndex:idx_row_number" json:"number"`
	Status    SeatStatus `gorm:"type:varchar(16);not null;default:available" json:"status"`
}

type User struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:128;not null" json:"name"`
	Email string `gorm:"size:254;not null;index" json:"email"`
	Phone string `gorm:"size:32" json:"phone,omitempty"`
}

type Booking struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       User      `json:"user"`
	TotalPrice int       `gorm:"not null" json:"total_price"`
	Paid       bool      `gorm:"not null;default:false" json:"paid"`
	ReceiptURL *string   `gorm:"size:512" json:"receipt_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	Assignments []SeatAssignment `gorm:"constraint:OnDelete:CASCADE" json:"assignments"`
}

// SeatAssignment ties one seat of a booking to its row. The row reference is
// non-owning, it only tells the cancellation path which inventory to release.
type SeatAssignment struct {
	ID         uint   `gorm:"primaryKey" json:"-"`
	BookingID  uint   `gorm:"not null;index" json:"-"`
	SeatRowID  uint   `gorm:"not null;index" json:"row_id"`
	SeatNumber uint   `gorm:"not null" json:"seat_number"`
	FirstName  string `gorm:"size:64;not null" json:"first_name"`
	LastName   string `gorm:"size:64;not null" json:"last_name"`
}

// Setting is one persisted key-value config entry, e.g. balcony visibility.
// Stored in the database so it survives restarts and stays consistent across
// server instances.
type Setting struct {
	Key   string `gorm:"primaryKey;size:64" json:"key"`
	Value string `gorm:"size:256;not null" json:"value"`
}

const SettingShowBalcony = "show_balcony"
