package enum

// ── Submission status (set by the backend, pushed via webhook) ──

const (
	SubmissionStatusReceived   = "DITERIMA"
	SubmissionStatusProcessing = "DIPROSES"
	SubmissionStatusCompleted  = "SELESAI"
	SubmissionStatusRejected   = "DITOLAK"
)

// IsSubmissionStatus reports whether s is a known submission status.
func IsSubmissionStatus(s string) bool {
	switch s {
	case SubmissionStatusReceived, SubmissionStatusProcessing, SubmissionStatusCompleted, SubmissionStatusRejected:
		return true
	}
	return false
}

// ── Route hints sent by the submission pages ──

const (
	HintPermit         = "pengajuan-izin"
	HintLostItem       = "surat-kehilangan"
	HintIncidentReport = "laporan-online"
	HintBackground     = "skck"
	HintFallback       = "pelayanan"
)

// ── WebSocket event types ──

const (
	EventStatusUpdated = "status.updated"
)
