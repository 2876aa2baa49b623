package model

import (
	"time"
)

type UserStatus string

const (
	StatusStudent UserStatus = "STUDENT"
	StatusTeacher UserStatus = "TEACHER"
)

type User struct {
	Username      string     `json:"username" db:"username"`
	Email         string     `json:"email" db:"email"`
	PasswordHash  string     `json:"-" db:"password_hash"`
	FullName      string     `json:"fullName" db:"full_name"`
	Phone         string     `json:"phone" db:"phone"`
	Status        UserStatus `json:"status" db:"status"`
	Department    string     `json:"department" db:"department"`
	Level         string     `json:"level" db:"level"`
	AvatarURL     string     `json:"avatarUrl" db:"avatar_url"`
	EmailVerified bool       `json:"emailVerified" db:"email_verified"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
}

// SlotState is the stored state of a loan slot. Overdue is never stored:
// it is derived from the due date when the slot bank is read.
type SlotState string

const (
	SlotFree     SlotState = "FREE"
	SlotReserved SlotState = "RESERVED"
	SlotBorrowed SlotState = "BORROWED"

	// SlotOverdue is a display state only.
	SlotOverdue SlotState = "OVERDUE"
)

// LoanSlot is one entry of a user's fixed-size slot bank. The bank holds
// exactly maxLoans rows per user, created at sign-up; a non-free slot
// always carries its item payload.
type LoanSlot struct {
	Username         string     `json:"-" db:"username"`
	SlotIndex        int        `json:"slotIndex" db:"slot_index"`
	State            SlotState  `json:"state" db:"state"`
	ItemUid          *string    `json:"itemUid,omitempty" db:"item_uid"`
	ItemName         *string    `json:"itemName,omitempty" db:"item_name"`
	Category         *string    `json:"category,omitempty" db:"category"`
	ImageURL         *string    `json:"imageUrl,omitempty" db:"image_url"`
	SourceCollection *string    `json:"sourceCollection,omitempty" db:"source_collection"`
	EventTs          *time.Time `json:"eventTs,omitempty" db:"event_ts"`
	DueDate          *time.Time `json:"dueDate,omitempty" db:"due_date"`
	Copies           *int       `json:"copies,omitempty" db:"copies"`
}

// DisplayState layers derived overdue-ness over the stored state.
func (s LoanSlot) DisplayState(now time.Time) SlotState {
	if s.State == SlotBorrowed && s.DueDate != nil && now.After(*s.DueDate) {
		return SlotOverdue
	}
	return s.State
}

type ItemKind string

const (
	KindBook   ItemKind = "BOOK"
	KindThesis ItemKind = "THESIS"
)

type CatalogItem struct {
	ID              int      `json:"-" db:"id"`
	ItemUid         string   `json:"itemUid" db:"item_uid"`
	Kind            ItemKind `json:"kind" db:"kind"`
	Title           string   `json:"title" db:"title"`
	Author          string   `json:"author" db:"author"`
	Category        string   `json:"category" db:"category"`
	Shelf           string   `json:"shelf" db:"shelf"`
	InitialCopies   int      `json:"initialCopies" db:"initial_copies"`
	AvailableCopies int      `json:"availableCopies" db:"available_copies"`
	Description     string   `json:"description" db:"description"`
	ImageURL        string   `json:"imageUrl" db:"image_url"`
}

type Comment struct {
	ID        int       `json:"id" db:"id"`
	ItemUid   string    `json:"itemUid" db:"item_uid"`
	Author    string    `json:"author" db:"author"`
	Rating    int       `json:"rating" db:"rating"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ReservationStatus is the canonical status enum of the append-only
// reservation log. One spelling per state, everywhere.
type ReservationStatus string

const (
	ReservationReserved  ReservationStatus = "RESERVED"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationReturned  ReservationStatus = "RETURNED"
)

type ReservationEvent struct {
	ID        int               `json:"-" db:"id"`
	EventUid  string            `json:"eventUid" db:"event_uid"`
	Username  string            `json:"username" db:"username"`
	ItemUid   string            `json:"itemUid" db:"item_uid"`
	ItemName  string            `json:"itemName" db:"item_name"`
	Category  string            `json:"category" db:"category"`
	Copies    int               `json:"copies" db:"copies"`
	Status    ReservationStatus `json:"status" db:"status"`
	CreatedAt time.Time         `json:"createdAt" db:"created_at"`
}

type HistoryEvent struct {
	ID        int       `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	ItemUid   string    `json:"itemUid" db:"item_uid"`
	ItemName  string    `json:"itemName" db:"item_name"`
	EventType string    `json:"eventType" db:"event_type"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type Notification struct {
	ID        int       `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	Read      bool      `json:"read" db:"read"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ProfileUpdate carries the mutable profile fields; nil means unchanged.
type ProfileUpdate struct {
	FullName   *string     `json:"fullName"`
	Phone      *string     `json:"phone"`
	Status     *UserStatus `json:"status" validate:"omitempty,oneof=STUDENT TEACHER"`
	Department *string     `json:"department"`
	Level      *string     `json:"level"`
}

// Settings is the organization-wide configuration singleton.
type Settings struct {
	OrgName          string `json:"orgName" db:"org_name"`
	Theme            string `json:"theme" db:"theme"`
	MaxLoans         int    `json:"maxLoans" db:"max_loans"`
	LoanDurationDays int    `json:"loanDurationDays" db:"loan_duration_days"`
}

type Department struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Code string `json:"code" db:"code"`
}

// CatalogFilter narrows catalog listings; zero values mean no filter.
type CatalogFilter struct {
	Kind     ItemKind
	Category string
	Search   string
	ShowAll  bool
	Page     int
	Size     int
}

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type ListItems struct {
	Paging
	Items []CatalogItem `json:"items"`
}

// Loan is a slot projected for the "my loans" view, with the derived
// display state resolved.
type Loan struct {
	SlotIndex int        `json:"slotIndex"`
	State     SlotState  `json:"state"`
	ItemUid   string     `json:"itemUid,omitempty"`
	ItemName  string     `json:"itemName,omitempty"`
	Category  string     `json:"category,omitempty"`
	ImageURL  string     `json:"imageUrl,omitempty"`
	EventTs   *time.Time `json:"eventTs,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
}

// UserSummary is the per-user read-side aggregate over the slot bank.
type UserSummary struct {
	Username  string `json:"username"`
	MaxLoans  int    `json:"maxLoans"`
	FreeSlots int    `json:"freeSlots"`
	Reserved  int    `json:"reserved"`
	Borrowed  int    `json:"borrowed"`
	Overdue   int    `json:"overdue"`
}

// LibraryStats is the library-wide read-side aggregate.
type LibraryStats struct {
	TotalItems       int            `json:"totalItems"`
	TotalCopies      int            `json:"totalCopies"`
	AvailableCopies  int            `json:"availableCopies"`
	AvailabilityRate float64        `json:"availabilityRate"`
	ActiveLoans      int            `json:"activeLoans"`
	ItemsByCategory  map[string]int `json:"itemsByCategory"`
}
