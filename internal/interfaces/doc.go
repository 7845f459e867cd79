// Package interfaces documents the core abstractions used throughout the application.
//
// Consumers declare the small interfaces they need next to the code that uses
// them; concrete types live in their own packages and are wired together in
// internal/entrypoint. checks.go pins every pairing at compile time.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - importer.EntityStore: MP post columns keyed by external id (internal/importer/orchestrator.go)
//   - importer.FieldWriter: Typed profile fields, optional (internal/importer/orchestrator.go)
//   - importer.PreviewStore: Serialized preview with expiry (internal/importer/preview.go)
//   - photos.Store: Featured image attachment (internal/photos/sideload.go)
//   - http.MPReader: Public directory reads (internal/http/mps.go)
//   - auth.UserStore: Admin accounts and API tokens (internal/auth/service.go)
//
// ## Upstream Interfaces
//
//   - importer.Source: One normalized page of MP records (internal/importer/orchestrator.go)
//   - mpapi.PageFetcher: Page source for the pagination walker (internal/mpapi/walker.go)
//   - http.Upstream: Connection test and raw fetch (internal/http/import.go)
//
// ## Settings Interfaces
//
//   - SettingsProvider: Effective import settings, declared separately by
//     mpapi, importer and scheduler and all served by settingsstore.SettingsStore
//
// ## Background Work Interfaces
//
//   - importer.PhotoSideloader: Inline download or task queue enqueue
//   - scheduler.BatchRunner: One import batch (internal/scheduler/import.go)
//   - scheduler.ProgressReporter: Run progress row (internal/scheduler/import.go)
//   - tasks.ImportRunner: Full import run executed by a queue worker (internal/tasks/import_run.go)
//
// # Adding a New Upstream Source
//
// To import MPs from an API that cannot be expressed through the import
// settings (e.g., one needing a login handshake):
//
//  1. Implement importer.Source:
//
//     type SessionClient struct {
//     inner *mpapi.Client
//     }
//
//     func (c *SessionClient) GetMPs(ctx context.Context, page, perPage int) (*mpapi.Page, error)
//
//     var _ importer.Source = (*SessionClient)(nil)
//
//  2. Pass it to importer.NewOrchestrator and importer.NewPreviewService in
//     internal/entrypoint/pipeline.go
//
// # Adding a New Mapped Field
//
//  1. Add the column to entities.MPFields
//
//  2. Add the source key to knownKeys and copy it in Mapper.Map (internal/mapper)
//
//  3. Extend the compile-time checks if a new store interface is involved
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
