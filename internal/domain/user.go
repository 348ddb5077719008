package domain

import "time"

// Role tags a user can carry. A user may hold several at once
// (a vendor who also buys, a transporter who also sells).
const (
	RoleVendor      = "Vendor"
	RoleBuyer       = "Buyer"
	RoleTransporter = "Transporter"
	RoleAdmin       = "Admin"
)

// ValidRole reports whether role is one of the known role tags.
func ValidRole(role string) bool {
	switch role {
	case RoleVendor, RoleBuyer, RoleTransporter, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	UserID        string     `json:"id" dynamodbav:"user_id"`
	FullName      string     `json:"full_name" dynamodbav:"full_name"`
	Phone         string     `json:"phone" dynamodbav:"phone"`
	Email         *string    `json:"email,omitempty" dynamodbav:"email"`
	IsActive      bool       `json:"is_active" dynamodbav:"is_active"`
	PhoneVerified bool       `json:"phone_verified" dynamodbav:"phone_verified"`
	KycVerified   bool       `json:"kyc_verified" dynamodbav:"kyc_verified"`
	Roles         []string   `json:"roles" dynamodbav:"roles"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty" dynamodbav:"last_login_at"`
	CreatedAt     time.Time  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" dynamodbav:"updated_at"`
}

// HasRole reports whether the user carries the given role tag.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// UserProfile is the read-only projection returned by profile lookups.
type UserProfile struct {
	UserID        string     `json:"id"`
	FullName      string     `json:"full_name"`
	Phone         string     `json:"phone"`
	Email         *string    `json:"email,omitempty"`
	PhoneVerified bool       `json:"phone_verified"`
	KycVerified   bool       `json:"kyc_verified"`
	Roles         []string   `json:"roles"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
}

// Profile projects the user onto its public profile shape.
func (u *User) Profile() *UserProfile {
	return &UserProfile{
		UserID:        u.UserID,
		FullName:      u.FullName,
		Phone:         u.Phone,
		Email:         u.Email,
		PhoneVerified: u.PhoneVerified,
		KycVerified:   u.KycVerified,
		Roles:         u.Roles,
		CreatedAt:     u.CreatedAt,
		LastLoginAt:   u.LastLoginAt,
	}
}
