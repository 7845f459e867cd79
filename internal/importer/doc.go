// Package importer runs the MP import pipeline.
//
// The Orchestrator imports one batch per RunImport call. Callers loop,
// feeding back Result.Offset, until Result.Complete:
//
//	offset := 0
//	for {
//		result, err := orchestrator.RunImport(ctx, offset)
//		if err != nil {
//			return err
//		}
//		offset = result.Offset
//		if result.Complete {
//			break
//		}
//	}
//
// Each record is mapped by internal/mapper and upserted by its upstream id.
// Storage is reached through small interfaces (EntityStore, plus the
// optional FieldWriter) implemented by internal/database/mps.
//
// PreviewService serves a small cached sample of the upstream data so an
// admin can check the mapping before importing.
package importer
