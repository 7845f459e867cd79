// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── mps/             # Imported MP records, filters and facet lists
//	├── sync/            # Import run progress tracking
//	├── settings/        # Key/value application settings
//	└── users/           # Admin user management
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./mp-directory.db")
//
//	mpRepo := mps.NewRepository(db.DB)
//	mp, err := mpRepo.FindByExternalID(ctx, "123")
//	parties, err := mpRepo.DistinctParties(ctx)
//
// # Interface Implementations
//
//   - mps.Repository: implements importer.EntityStore, importer.FieldWriter,
//     importer.FeaturedImageStore and http.MPStore
//   - sync.Repository: implements scheduler.ProgressReporter
//   - settings.Repository: backs settingsstore.SettingsStore
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Register the entity in Models()
//  5. Add a compile-time interface check in internal/interfaces/checks.go
package database
