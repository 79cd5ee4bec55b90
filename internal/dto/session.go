package dto

import (
	"time"

	"github.com/noah-isme/degree-audit-api/internal/models"
)

// SessionView is the JSON snapshot of an editing session.
type SessionView struct {
	ID             string             `json:"id"`
	Transcript     models.Transcript  `json:"transcript"`
	Reports        []*models.Report   `json:"reports"`
	PendingRenames [][]string         `json:"pending_renames"`
	AuditStatus    models.AuditStatus `json:"audit_status"`
	AuditError     string             `json:"audit_error,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// NewSessionView renders a session. Pending renames are listed per report.
func NewSessionView(s *models.Session) SessionView {
	renames := make([][]string, len(s.Reports))
	for i := range s.Reports {
		if i < len(s.Renames) && s.Renames[i] != nil {
			renames[i] = s.Renames[i].Paths()
		} else {
			renames[i] = []string{}
		}
	}
	reports := make([]*models.Report, len(s.Reports))
	for i, report := range s.Reports {
		reports[i] = report.Display()
	}
	return SessionView{
		ID:             s.ID,
		Transcript:     s.Transcript,
		Reports:        reports,
		PendingRenames: renames,
		AuditStatus:    s.AuditStatus,
		AuditError:     s.AuditError,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// AuditStatusView answers an audit submission.
type AuditStatusView struct {
	SessionID   string             `json:"session_id"`
	JobID       string             `json:"job_id,omitempty"`
	AuditStatus models.AuditStatus `json:"audit_status"`
	AuditError  string             `json:"audit_error,omitempty"`
}
