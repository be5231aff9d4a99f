package ledger

import (
	"github.com/rs/zerolog"
)

// AuditJob periodically re-validates the chain. It only reports.
type AuditJob struct {
	ledger   *Ledger
	log      zerolog.Logger
	onResult func(AuditReport)
}

// NewAuditJob returns a scheduler job. onResult may be nil.
func NewAuditJob(l *Ledger, log zerolog.Logger, onResult func(AuditReport)) *AuditJob {
	return &AuditJob{
		ledger:   l,
		log:      log.With().Str("job", "ledger_audit").Logger(),
		onResult: onResult,
	}
}

func (j *AuditJob) Name() string { return "ledger_audit" }

func (j *AuditJob) Run() error {
	r := j.ledger.Audit()
	if j.onResult != nil {
		j.onResult(r)
	}
	if !r.Valid {
		j.log.Error().
			Int("height", r.Height).
			Int("broken_at", *r.BrokenAt).
			Str("reason", r.Reason).
			Msg("Ledger integrity violation")
		return nil
	}
	j.log.Debug().Int("height", r.Height).Msg("Ledger chain valid")
	return nil
}
