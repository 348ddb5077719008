package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldAttemptCount = "attempt_count"
	fieldVerified     = "verified"
	fieldVerifiedAt   = "verified_at"
	fieldProvider     = "provider"
	fieldRevokedAt    = "revoked_at"
	fieldLastLoginAt  = "last_login_at"
	fieldUpdatedAt    = "updated_at"
)
