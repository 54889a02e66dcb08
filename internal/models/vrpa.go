package models

import "time"

type DeviceType string

const (
	TypeHyperV   DeviceType = "Hyper-V"
	TypeVMWare   DeviceType = "VMWare"
	TypePhysical DeviceType = "Physical"
	TypeCustom   DeviceType = "Custom"
)

// DeviceStatus — latest probe result for a device.
type DeviceStatus string

const (
	StatusOnline  DeviceStatus = "online"
	StatusOffline DeviceStatus = "offline"
	StatusUnknown DeviceStatus = "unknown"
)

// CheckoutStatus is a cached view of CurrentCheckout.IsActive; the fleet
// service keeps the two in sync on every transition.
type CheckoutStatus string

const (
	CheckoutAvailable  CheckoutStatus = "available"
	CheckoutCheckedOut CheckoutStatus = "checked-out"
	CheckoutScheduled  CheckoutStatus = "scheduled"
)

// Device — tracked vRPA unit (virtual or physical).
type Device struct {
	ID             string         `gorm:"type:char(36);primaryKey" json:"id"`
	Name           string         `gorm:"size:200;not null" json:"name"`
	Type           DeviceType     `gorm:"size:20" json:"type"`
	CustomType     string         `gorm:"size:100" json:"customType,omitempty"`
	IPAddress      string         `gorm:"column:ip_address;size:45;uniqueIndex" json:"ipAddress"`
	RootPassword   string         `gorm:"size:255" json:"rootPassword"`
	SharefileLink  string         `gorm:"size:500" json:"sharefileLink"`
	Status         DeviceStatus   `gorm:"size:16;default:'unknown'" json:"status"`
	CheckoutStatus CheckoutStatus `gorm:"size:16;default:'available'" json:"checkoutStatus"`

	// Only the most recent checkout/schedule is reachable from the device;
	// older rows stay in their tables but nothing references them.
	CurrentCheckoutID *string              `gorm:"type:char(36)" json:"-"`
	CurrentCheckout   *Checkout            `gorm:"foreignKey:CurrentCheckoutID;references:ID" json:"currentCheckout,omitempty"`
	NextScheduledID   *string              `gorm:"type:char(36)" json:"-"`
	NextScheduled     *ScheduledDeployment `gorm:"foreignKey:NextScheduledID;references:ID" json:"nextScheduled,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Checkout — a team member holding a device for a client engagement.
// TeamMemberName is denormalized on purpose: the record must stay readable
// after the member is removed.
type Checkout struct {
	ID                 string     `gorm:"type:char(36);primaryKey" json:"id"`
	DeviceID           string     `gorm:"type:char(36);index" json:"deviceId"`
	TeamMemberID       string     `gorm:"type:char(36)" json:"teamMemberId"`
	TeamMemberName     string     `gorm:"size:200" json:"teamMemberName"`
	ClientName         string     `gorm:"size:200" json:"clientName"`
	CheckoutDate       time.Time  `json:"checkoutDate"`
	ExpectedReturnDate time.Time  `json:"expectedReturnDate"`
	ActualReturnDate   *time.Time `json:"actualReturnDate,omitempty"`
	Notes              string     `gorm:"size:1000" json:"notes,omitempty"`
	IsActive           bool       `gorm:"index" json:"isActive"`
}

// ScheduledDeployment — a single future reservation slot. Not a queue:
// a new schedule overwrites the previous one.
type ScheduledDeployment struct {
	ID              string    `gorm:"type:char(36);primaryKey" json:"id"`
	DeviceID        string    `gorm:"type:char(36);index" json:"deviceId"`
	TeamMemberID    string    `gorm:"type:char(36)" json:"teamMemberId"`
	TeamMemberName  string    `gorm:"size:200" json:"teamMemberName"`
	ClientName      string    `gorm:"size:200" json:"clientName"`
	ScheduledDate   time.Time `json:"scheduledDate"`
	ExpectedEndDate time.Time `json:"expectedEndDate"`
	Notes           string    `gorm:"size:1000" json:"notes,omitempty"`
	IsActive        bool      `json:"isActive"`
}

type TeamMember struct {
	ID    string `gorm:"type:char(36);primaryKey" json:"id"`
	Name  string `gorm:"size:200;not null" json:"name"`
	Email string `gorm:"size:200" json:"email"`
}

// PingRecord — append-only reachability probe result. Rows older than the
// retention window are pruned on each write.
type PingRecord struct {
	ID           uint         `gorm:"primaryKey" json:"-"`
	DeviceID     string       `gorm:"type:char(36);index:idx_ping_device,priority:1" json:"deviceId"`
	Timestamp    time.Time    `gorm:"index:idx_ping_device,priority:2" json:"timestamp"`
	Status       DeviceStatus `gorm:"size:16" json:"status"`
	ResponseTime *float64     `json:"responseTime,omitempty"` // milliseconds
}

// DeviceUptime — per-day availability, computed from ping history on demand.
// Never persisted.
type DeviceUptime struct {
	DeviceID         string  `json:"deviceId"`
	Date             string  `json:"date"` // YYYY-MM-DD
	UptimePercentage float64 `json:"uptimePercentage"`
	TotalPings       int     `json:"totalPings"`
	SuccessfulPings  int     `json:"successfulPings"`
}

type User struct {
	ID           string    `gorm:"type:char(36);primaryKey" json:"id"`
	Username     string    `gorm:"size:100;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"column:password;size:100" json:"-"`
	Role         string    `gorm:"size:20" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// EmailTemplate — the deployment email body; a single row, replaced wholesale.
type EmailTemplate struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Body      string    `gorm:"type:text" json:"template"`
	UpdatedAt time.Time `json:"-"`
}
