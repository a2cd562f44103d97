package models

import (
	"time"

	"aphc-housingportal/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Auth: admin/worker accounts
// ============================================================

// User represents the users table (portal staff: admins and field workers)
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Username    string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email       string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password    string         `gorm:"size:255;not null" json:"-"`
	FullName    string         `gorm:"size:100" json:"full_name"`
	Role        string         `gorm:"size:20;default:'WORKER'" json:"role"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// User roles
const (
	RoleAdmin  = "ADMIN"
	RoleWorker = "WORKER"
)

// UserResponse DTO
type UserResponse struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        u.Role,
		LastLoginAt: u.LastLoginAt,
	}
}

// RefreshToken represents the refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Applications
// ============================================================

// Application represents the applications table. One row per registration;
// rows are never deleted, corrections happen through status transitions.
type Application struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	ApplicationID string        `gorm:"uniqueIndex;size:20;not null" json:"application_id"`
	FullName      string        `gorm:"size:100;not null" json:"full_name"`
	FatherName    string        `gorm:"size:100;not null" json:"father_name"`
	AadhaarNumber string        `gorm:"uniqueIndex;size:12;not null" json:"-"`
	PhoneNumber   string        `gorm:"size:10;not null;index" json:"phone_number"`
	Email         string        `gorm:"size:100;not null" json:"email"`
	Constitution  string        `gorm:"size:50" json:"constitution"`
	State         string        `gorm:"size:50;not null" json:"state"`
	District      string        `gorm:"size:50;not null" json:"district"`
	City          string        `gorm:"size:50;not null" json:"city"`
	Mandal        string        `gorm:"size:50;not null" json:"mandal"`
	Village       string        `gorm:"size:50;not null" json:"village"`
	Pincode       string        `gorm:"size:6;not null" json:"pincode"`
	Status        domain.Status `gorm:"size:30;not null;index;default:'pending_payment'" json:"status"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Payment  *Payment        `gorm:"foreignKey:ApplicationID;references:ApplicationID" json:"payment,omitempty"`
	Approval *ApprovalRecord `gorm:"foreignKey:ApplicationID;references:ApplicationID" json:"approval,omitempty"`
}

func (Application) TableName() string {
	return "applications"
}

// ApplicationResponse DTO (Aadhaar never appears in responses)
type ApplicationResponse struct {
	ApplicationID string        `json:"application_id"`
	FullName      string        `json:"full_name"`
	PhoneNumber   string        `json:"phone_number"`
	Email         string        `json:"email"`
	District      string        `json:"district"`
	Status        domain.Status `json:"status"`
	SubmittedAt   time.Time     `json:"submitted_at"`
}

func (a *Application) ToResponse() *ApplicationResponse {
	return &ApplicationResponse{
		ApplicationID: a.ApplicationID,
		FullName:      a.FullName,
		PhoneNumber:   a.PhoneNumber,
		Email:         a.Email,
		District:      a.District,
		Status:        a.Status,
		SubmittedAt:   a.CreatedAt,
	}
}

// Payment represents the payments table (processing fee transactions)
type Payment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	TransactionRef string    `gorm:"uniqueIndex;size:50;not null" json:"transaction_ref"`
	ApplicationID  string    `gorm:"size:20;not null;index" json:"application_id"`
	Amount         float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method         string    `gorm:"size:20;default:'online'" json:"method"`
	PaidAt         time.Time `gorm:"not null" json:"paid_at"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Payment) TableName() string {
	return "payments"
}

// ApprovalRecord represents the approval_records table. One row per admin
// decision, 1:1 with an application. UniqueID is set only for approvals,
// RejectionReason only for rejections. Immutable after write except for
// BankDetailsSubmitted.
type ApprovalRecord struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	ApplicationID        string    `gorm:"uniqueIndex;size:20;not null" json:"application_id"`
	UniqueID             *string   `gorm:"uniqueIndex;size:9" json:"unique_id"`
	ReviewedBy           uint      `gorm:"not null" json:"reviewed_by"`
	ReviewedAt           time.Time `gorm:"not null" json:"reviewed_at"`
	RejectionReason      *string   `gorm:"type:text" json:"rejection_reason,omitempty"`
	BankDetailsSubmitted bool      `gorm:"default:false" json:"bank_details_submitted"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Reviewer *User `gorm:"foreignKey:ReviewedBy" json:"reviewer,omitempty"`
}

func (ApprovalRecord) TableName() string {
	return "approval_records"
}

// ============================================================
// Bank details (encrypted at rest)
// ============================================================

// BankDetails represents the bank_details table. Account number and IFSC
// code are stored AES-256-GCM encrypted under a per-unique-ID derived key;
// everything else is plaintext metadata.
type BankDetails struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	UniqueID               string    `gorm:"uniqueIndex;size:9;not null" json:"unique_id"`
	ApplicationID          string    `gorm:"size:20;not null;index" json:"application_id"`
	BankName               string    `gorm:"size:100;not null" json:"bank_name"`
	BranchName             string    `gorm:"size:100;not null" json:"branch_name"`
	AccountHolderName      string    `gorm:"size:100;not null" json:"account_holder_name"`
	AccountNumberEncrypted string    `gorm:"size:512;not null" json:"-"`
	IFSCCodeEncrypted      string    `gorm:"size:512;not null" json:"-"`
	Village                string    `gorm:"size:50" json:"village"`
	District               string    `gorm:"size:50" json:"district"`
	Pincode                string    `gorm:"size:6" json:"pincode"`
	CreatedAt              time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (BankDetails) TableName() string {
	return "bank_details"
}

// ============================================================
// OTP challenges
// ============================================================

// OtpChallenge represents the otp_challenges table. A new row per issuance;
// verification always matches the most recent issued-and-unexpired row for
// (phone, purpose).
type OtpChallenge struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PhoneNumber string     `gorm:"size:10;not null;index:idx_otp_phone_purpose" json:"phone_number"`
	Purpose     string     `gorm:"size:20;not null;index:idx_otp_phone_purpose" json:"purpose"`
	Code        string     `gorm:"size:6;not null" json:"-"`
	Status      string     `gorm:"size:10;not null;default:'issued'" json:"status"`
	IPAddress   string     `gorm:"size:50" json:"ip_address"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	VerifiedAt  *time.Time `json:"verified_at"`
}

func (OtpChallenge) TableName() string {
	return "otp_challenges"
}

// OTP challenge statuses
const (
	OtpStatusIssued   = "issued"
	OtpStatusVerified = "verified"
	OtpStatusFailed   = "failed"
	OtpStatusExpired  = "expired"
)

// OTP purposes. Verification must match the purpose used at issuance.
const (
	OtpPurposeApplication  = "application"
	OtpPurposeRegistration = "registration"
	OtpPurposeStatusCheck  = "status_check"
	OtpPurposeDownload     = "download"
)

// ValidOtpPurpose reports whether p is a known purpose
func ValidOtpPurpose(p string) bool {
	switch p {
	case OtpPurposeApplication, OtpPurposeRegistration, OtpPurposeStatusCheck, OtpPurposeDownload:
		return true
	}
	return false
}

// ============================================================
// Audit log
// ============================================================

// AuditEvent represents the audit_events table. Append-only: never updated,
// never deleted.
type AuditEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   string    `gorm:"uniqueIndex;size:36;not null" json:"event_id"`
	ActorID   *uint     `gorm:"index" json:"actor_id"`
	ActorRole string    `gorm:"size:20;not null" json:"actor_role"`
	Action    string    `gorm:"size:50;not null;index" json:"action"`
	Detail    string    `gorm:"type:text" json:"detail"`
	IPAddress string    `gorm:"size:50" json:"ip_address"`
	UserAgent string    `gorm:"size:255" json:"user_agent"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}

// Audit actor roles
const (
	ActorApplicant = "applicant"
	ActorAdmin     = "admin"
	ActorWorker    = "worker"
	ActorSystem    = "system"
)

// Audit action codes
const (
	ActionOtpSent               = "OTP_SENT"
	ActionOtpSendFailed         = "OTP_SEND_FAILED"
	ActionOtpVerified           = "OTP_VERIFIED"
	ActionOtpVerifyFailed       = "OTP_VERIFY_FAILED"
	ActionRegistrationSubmitted = "REGISTRATION_SUBMITTED"
	ActionPaymentProcessed      = "PAYMENT_PROCESSED"
	ActionReviewStarted         = "APPLICATION_REVIEW_STARTED"
	ActionApplicationApproved   = "APPLICATION_APPROVED"
	ActionApplicationRejected   = "APPLICATION_REJECTED"
	ActionStatusChecked         = "STATUS_CHECKED"
	ActionIdentityVerified      = "IDENTITY_VERIFIED"
	ActionIdentityVerifyFailed  = "IDENTITY_VERIFY_FAILED"
	ActionBankDetailsSubmitted  = "BANK_DETAILS_SUBMITTED"
	ActionBankDetailsAccessed   = "BANK_DETAILS_ACCESSED"
	ActionDownloadVerification  = "DOWNLOAD_VERIFICATION_INITIATED"
	ActionDownloadAuthorized    = "DOWNLOAD_AUTHORIZED"
	ActionLoginSuccess          = "LOGIN_SUCCESS"
	ActionLoginFailed           = "LOGIN_FAILED"
	ActionLoginBlocked          = "LOGIN_BLOCKED"
	ActionContactSubmitted      = "CONTACT_SUBMITTED"
	ActionNotifyFailed          = "NOTIFY_FAILED"
)

// ============================================================
// Contact messages
// ============================================================

// ContactMessage represents the contact_messages table
type ContactMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;not null" json:"email"`
	Phone     string    `gorm:"size:10" json:"phone"`
	Subject   string    `gorm:"size:200" json:"subject"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ContactMessage) TableName() string {
	return "contact_messages"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all portal tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Application{},
		&Payment{},
		&ApprovalRecord{},
		&BankDetails{},
		&OtpChallenge{},
		&AuditEvent{},
		&ContactMessage{},
	)
}
