package oplog

import (
	"context"
	"encoding/json"
	"log"

	"github.com/dkrylova/aftersale/internal/domain"
	"github.com/dkrylova/aftersale/internal/repository"
)

// Recorder appends one audit entry per application transition. Writes are
// best-effort: a failed log write is reported and swallowed, never rolling
// back the business transition it describes.
type Recorder struct {
	logs repository.OperationLogRepository
}

func NewRecorder(logs repository.OperationLogRepository) *Recorder {
	return &Recorder{logs: logs}
}

func (r *Recorder) Record(ctx context.Context, applicationID int64, op domain.Operation, before, after *domain.ChangeApplication, actor domain.Actor, remark string) {
	entry := &domain.OperationLogEntry{
		ApplicationID: applicationID,
		Operation:     op,
		Before:        snapshot(before),
		After:         snapshot(after),
		ActorID:       actor.ID,
		ActorName:     actor.Name,
		Remark:        remark,
	}
	if err := r.logs.Append(ctx, entry); err != nil {
		log.Printf("WARNING: failed to record %s for application %d: %v", op, applicationID, err)
	}
}

func snapshot(app *domain.ChangeApplication) []byte {
	if app == nil {
		return nil
	}
	data, err := json.Marshal(app)
	if err != nil {
		log.Printf("WARNING: failed to snapshot application %d: %v", app.ID, err)
		return nil
	}
	return data
}
