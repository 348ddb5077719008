package domain

import "time"

// KYC review states.
const (
	KycPending  = "Pending"
	KycVerified = "Verified"
	KycRejected = "Rejected"
)

// KycDocument records an identity document uploaded for KYC review.
// The document body lives in object storage under ObjectKey; only the
// reference and review state are kept here.
type KycDocument struct {
	DocumentID string    `json:"id" dynamodbav:"document_id"`
	UserID     string    `json:"user_id" dynamodbav:"user_id"`
	DocType    string    `json:"doc_type" dynamodbav:"doc_type"` // Aadhaar/PAN/Passport etc.
	ObjectKey  string    `json:"-" dynamodbav:"object_key"`
	Status     string    `json:"status" dynamodbav:"status"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"created_at"`
}
