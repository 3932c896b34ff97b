package event

// Type identifies the type of claim event
type Type string

const (
	TypeClaimCreated     Type = "claim.created"
	TypePhotoUploaded    Type = "claim.photo_uploaded"
	TypeClaimAdjudicated Type = "claim.adjudicated"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeClaimCreated, TypePhotoUploaded, TypeClaimAdjudicated:
		return true
	default:
		return false
	}
}
