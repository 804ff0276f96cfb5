package model

import "time"

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleLibrarian Role = "LIBRARIAN"
	RoleStudent   Role = "STUDENT"
)

// ItemStatus is a cache of the open-loan state of a lendable item.
// Loan rows are authoritative; the column is refreshed in the same
// transaction that creates or closes a loan.
type ItemStatus string

const (
	StatusAvailable ItemStatus = "AVAILABLE"
	StatusBorrowed  ItemStatus = "BORROWED"
)

type ReportType string

const (
	ReportPhD      ReportType = "PHD"
	ReportMaster   ReportType = "MASTER"
	ReportBachelor ReportType = "BACHELOR"
)

type ItemKind string

const (
	KindBook    ItemKind = "BOOK"
	KindJournal ItemKind = "JOURNAL"
	KindReport  ItemKind = "REPORT"
)

type User struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type Book struct {
	ID        int        `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	Author    string     `json:"author" db:"author"`
	Year      int        `json:"year" db:"year"`
	Category  string     `json:"category" db:"category"`
	ISBN      *string    `json:"isbn,omitempty" db:"isbn"`
	Status    ItemStatus `json:"status" db:"status"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

type Journal struct {
	ID        int        `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	Volume    int        `json:"volume" db:"volume"`
	Issue     int        `json:"issue" db:"issue"`
	Year      int        `json:"year" db:"year"`
	ISSN      *string    `json:"issn,omitempty" db:"issn"`
	Status    ItemStatus `json:"status" db:"status"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

type ResearchReport struct {
	ID          int        `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Author      string     `json:"author" db:"author"`
	Supervisor  *string    `json:"supervisor,omitempty" db:"supervisor"`
	Institution string     `json:"institution" db:"institution"`
	Year        int        `json:"year" db:"year"`
	Type        ReportType `json:"type" db:"type"`
	Status      ItemStatus `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// Loan is one checkout-to-return cycle of a lendable item. Rows live in
// user_books/user_journals/user_reports; Kind tells them apart.
type Loan struct {
	ID         int        `json:"id" db:"id"`
	Kind       ItemKind   `json:"kind" db:"-"`
	UserID     int        `json:"userId" db:"user_id"`
	ItemID     int        `json:"itemId" db:"item_id"`
	BorrowDate time.Time  `json:"borrowDate" db:"borrow_date"`
	DueDate    time.Time  `json:"dueDate" db:"due_date"`
	ReturnDate *time.Time `json:"returnDate,omitempty" db:"return_date"`
}

func (l Loan) Open() bool { return l.ReturnDate == nil }

type BookTarget struct {
	ID       int     `json:"id" db:"id"`
	UserID   int     `json:"userId" db:"user_id"`
	Year     int     `json:"year" db:"year"`
	Category *string `json:"category,omitempty" db:"category"`
	Target   int     `json:"target" db:"target"`
	Progress int     `json:"progress" db:"progress"`
}

type AuditLog struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"userId" db:"user_id"`
	Action    string    `json:"action" db:"action"`
	Entity    string    `json:"entity" db:"entity"`
	Details   *string   `json:"details,omitempty" db:"details"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// AuditEvent is the kafka payload emitted on every state-changing
// operation and persisted to audit_logs by the consumer.
type AuditEvent struct {
	UserID    int       `json:"userId"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type PasswordResetToken struct {
	Token     string    `json:"token" db:"token"`
	UserID    int       `json:"userId" db:"user_id"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	Used      bool      `json:"used" db:"used"`
}

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type ListUsers struct {
	Paging `json:",inline"`
	Items  []User `json:"items"`
}

type ListBooks struct {
	Paging `json:",inline"`
	Items  []Book `json:"items"`
}

type ListJournals struct {
	Paging `json:",inline"`
	Items  []Journal `json:"items"`
}

type ListReports struct {
	Paging `json:",inline"`
	Items  []ResearchReport `json:"items"`
}

type ListAudit struct {
	Paging `json:",inline"`
	Items  []AuditLog `json:"items"`
}
