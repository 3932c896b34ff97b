package entity

// Claim status constants. Values match claimflow states so stored claims can be
// loaded into the lifecycle machine directly.
const (
	ClaimStatusNew          = "New"
	ClaimStatusAutoApproved = "Auto Approved"
	ClaimStatusInReview     = "In Review"
	ClaimStatusRejected     = "Rejected"
)

// Audit log action constants
const (
	AuditActionCreated         = "claim_created"
	AuditActionPhotoUploaded   = "photo_uploaded"
	AuditActionAutoAdjudicated = "auto_adjudication"
)

// Audit log actors
const (
	PerformedByAPI             = "api"
	PerformedByGuardrailEngine = "guardrail-engine"
)

// Policy status constants
const (
	PolicyStatusActive    = "Active"
	PolicyStatusExpired   = "Expired"
	PolicyStatusCancelled = "Cancelled"
)
