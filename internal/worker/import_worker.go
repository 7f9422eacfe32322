// Package worker runs imports outside the request path: it consumes queued
// import requests and re-imports a trailing window on a schedule.
package worker

import (
	"context"
	"errors"

	"fteboard/internal/amqp"
	"fteboard/internal/core"
	"fteboard/internal/log"
	"fteboard/internal/storage"

	"github.com/google/uuid"
)

// ImportRunner executes stored import runs.
type ImportRunner interface {
	Run(ctx context.Context, id uuid.UUID) (core.ImportRun, error)
}

// ImportWorker handles import requests delivered over AMQP.
type ImportWorker struct {
	imports ImportRunner
	logger  *log.Logger
}

func NewImportWorker(imports ImportRunner, logger *log.Logger) *ImportWorker {
	if logger == nil {
		logger = log.Wrap(nil, log.ComponentWorker)
	}
	return &ImportWorker{imports: imports, logger: logger}
}

// HandleImportRequest runs the requested import. Only errors worth a retry
// are returned, which makes the consumer requeue the delivery: a run that
// failed has its error recorded and a run that no longer exists is dropped.
func (w *ImportWorker) HandleImportRequest(ctx context.Context, msg *amqp.ImportRequestMessage) error {
	run, err := w.imports.Run(ctx, msg.ImportID)
	switch {
	case err == nil:
		w.logger.InfoContext(ctx, "Import request handled",
			log.FieldImportID, run.ID,
			log.FieldSource, run.Source,
			log.FieldRows, run.Rows,
			log.FieldRejected, run.Rejected,
			log.FieldUnpaired, run.Unpaired)
		return nil
	case errors.Is(err, storage.ErrNotFound):
		w.logger.WarnContext(ctx, "Import run not found, dropping request", log.FieldImportID, msg.ImportID)
		return nil
	case run.Status == core.ImportFailed:
		w.logger.Failure(ctx, "Import failed", err, log.FieldImportID, msg.ImportID)
		return nil
	default:
		return err
	}
}
