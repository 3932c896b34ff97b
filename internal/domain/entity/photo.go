package entity

import (
	"encoding/json"
	"time"

	"github.com/garyjia/claims-intake/internal/domain/adjudication"
)

// ClaimPhoto represents an uploaded damage photo
type ClaimPhoto struct {
	ID         string    `json:"id"`
	ClaimID    string    `json:"claim_id"`
	PhotoURL   string    `json:"photo_url"`
	PhotoType  string    `json:"photo_type,omitempty"`
	AIAnalysis string    `json:"ai_analysis,omitempty"` // raw JSON from the damage assessment provider
	UploadedAt time.Time `json:"uploaded_at"`
}

// Analysis decodes the stored damage assessment. ok is false when the photo
// has none or the stored document is unreadable.
func (p *ClaimPhoto) Analysis() (analysis adjudication.AIAnalysisSnapshot, ok bool) {
	if p == nil || p.AIAnalysis == "" {
		return analysis, false
	}
	if err := json.Unmarshal([]byte(p.AIAnalysis), &analysis); err != nil {
		return adjudication.AIAnalysisSnapshot{}, false
	}
	return analysis, true
}

// PhotoUpload represents an uploaded file before it is stored
type PhotoUpload struct {
	FileName    string
	ContentType string
	Content     []byte
	AIAnalysis  string
}
