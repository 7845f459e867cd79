package settingsstore

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/mpdirectory/internal/database/settings"
	"github.com/mrlokans/mpdirectory/internal/entities"
)

var testDefaults = Defaults{
	APIBaseURL:      "https://api.sejm.gov.pl/sejm/term10/MP",
	Pagination:      entities.PaginationNone,
	PreviewCacheTTL: 20,
	ImportBatchSize: 100,
	CronInterval:    entities.CronIntervalDaily,
}

func setupTestDB(t *testing.T) (*settings.Repository, func()) {
	t.Helper()
	dbPath := "./test_settingsstore_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Setting{}))

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}
	return settings.NewRepository(db), cleanup
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func TestGetImportSettings_Defaults(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	store := New(repo, testDefaults)

	got := store.GetImportSettings()
	assert.Equal(t, testDefaults.APIBaseURL, got.APIBaseURL)
	assert.Equal(t, 20, got.PreviewCacheTTL)
	assert.Equal(t, 100, got.ImportBatchSize)
	assert.False(t, got.EnableCron)
	assert.Equal(t, entities.CronIntervalDaily, got.CronInterval)
	assert.Equal(t, entities.PaginationNone, got.Pagination)

	info := store.GetImportSettingsInfo()
	assert.Equal(t, SourceDefault, info.ImportBatchSizeSource)
	assert.False(t, info.HasAPIKey)
}

func TestGetImportSettings_ClampsDefaults(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	defaults := testDefaults
	defaults.PreviewCacheTTL = 1000
	defaults.ImportBatchSize = 3
	defaults.CronInterval = "weekly"
	store := New(repo, defaults)

	got := store.GetImportSettings()
	assert.Equal(t, 120, got.PreviewCacheTTL)
	assert.Equal(t, 10, got.ImportBatchSize)
	assert.Equal(t, entities.CronIntervalDaily, got.CronInterval)
}

func TestUpdateImportSettings_DatabaseOverridesDefaults(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	store := New(repo, testDefaults)

	err := store.UpdateImportSettings(ImportSettingsUpdate{
		APIKey:          strPtr("supersecrettoken"),
		PreviewCacheTTL: intPtr(2),
		ImportBatchSize: intPtr(9000),
		EnableCron:      boolPtr(true),
		CronInterval:    strPtr(entities.CronIntervalHourly),
		Pagination:      strPtr(entities.PaginationPage),
	})
	require.NoError(t, err)

	got := store.GetImportSettings()
	assert.Equal(t, "supersecrettoken", got.APIKey)
	assert.Equal(t, 5, got.PreviewCacheTTL)
	assert.Equal(t, 500, got.ImportBatchSize)
	assert.True(t, got.EnableCron)
	assert.Equal(t, entities.CronIntervalHourly, got.CronInterval)
	assert.Equal(t, entities.PaginationPage, got.Pagination)

	info := store.GetImportSettingsInfo()
	assert.Equal(t, "supe****oken", info.APIKey)
	assert.Equal(t, SourceDatabase, info.APIKeySource)
	assert.Equal(t, SourceDatabase, info.CronIntervalSource)
	assert.Equal(t, "Every hour at :00", info.CronDescription)
}

func TestUpdateImportSettings_Validation(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	store := New(repo, testDefaults)

	assert.ErrorIs(t, store.UpdateImportSettings(ImportSettingsUpdate{APIBaseURL: strPtr("not a url")}), ErrInvalidBaseURL)
	assert.ErrorIs(t, store.UpdateImportSettings(ImportSettingsUpdate{CronInterval: strPtr("weekly")}), ErrInvalidCronInterval)
	assert.ErrorIs(t, store.UpdateImportSettings(ImportSettingsUpdate{Pagination: strPtr("cursor")}), ErrInvalidPagination)
	assert.NoError(t, store.UpdateImportSettings(ImportSettingsUpdate{}))
}

func TestImportSettings_EnvironmentSource(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	store := New(repo, testDefaults)

	t.Setenv(EnvImportBatchSize, "250")

	info := store.GetImportSettingsInfo()
	assert.Equal(t, SourceEnvironment, info.ImportBatchSizeSource)

	require.NoError(t, store.UpdateImportSettings(ImportSettingsUpdate{ImportBatchSize: intPtr(50)}))
	info = store.GetImportSettingsInfo()
	assert.Equal(t, SourceDatabase, info.ImportBatchSizeSource)
	assert.Equal(t, 50, info.ImportBatchSize)
}

func TestUpdateImportSettings_BlankKeyOverridesEnvironment(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	defaults := testDefaults
	defaults.APIKey = "env-secret-key"
	store := New(repo, defaults)

	require.NoError(t, store.UpdateImportSettings(ImportSettingsUpdate{APIKey: strPtr("")}))

	assert.Empty(t, store.GetImportSettings().APIKey)
	info := store.GetImportSettingsInfo()
	assert.False(t, info.HasAPIKey)
	assert.Equal(t, SourceDatabase, info.APIKeySource)

	require.NoError(t, store.UpdateImportSettings(ImportSettingsUpdate{APIBaseURL: strPtr("")}))
	assert.Empty(t, store.GetImportSettings().APIBaseURL)

	// Reset restores the environment values.
	require.NoError(t, store.ClearImportSettings())
	assert.Equal(t, "env-secret-key", store.GetImportSettings().APIKey)
	assert.Equal(t, testDefaults.APIBaseURL, store.GetImportSettings().APIBaseURL)
}

func TestClearImportSettings(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	store := New(repo, testDefaults)

	require.NoError(t, store.UpdateImportSettings(ImportSettingsUpdate{ImportBatchSize: intPtr(50)}))
	require.NoError(t, store.ClearImportSettings())

	assert.Equal(t, 100, store.GetImportSettings().ImportBatchSize)
}

func TestImportStatus(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	store := New(repo, testDefaults)

	empty := store.GetImportStatus()
	assert.Nil(t, empty.LastImportAt)
	assert.Empty(t, empty.Status)

	require.NoError(t, store.SetImportStatus(ImportStatusSuccess, "Imported 3 new MPs, updated 0 existing MPs."))

	status := store.GetImportStatus()
	require.NotNil(t, status.LastImportAt)
	assert.WithinDuration(t, time.Now(), *status.LastImportAt, 5*time.Second)
	assert.Equal(t, ImportStatusSuccess, status.Status)
	assert.Equal(t, "Imported 3 new MPs, updated 0 existing MPs.", status.Message)
}

func TestPreviewCache(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	store := New(repo, testDefaults)

	_, _, ok, err := store.LoadPreview()
	require.NoError(t, err)
	assert.False(t, ok)

	expires := time.Now().Add(20 * time.Minute)
	require.NoError(t, store.SavePreview([]byte(`{"total":1}`), expires))

	payload, gotExpires, ok, err := store.LoadPreview()
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"total":1}`, string(payload))
	assert.WithinDuration(t, expires, gotExpires, time.Millisecond)

	require.NoError(t, store.ClearPreview())
	_, _, ok, err = store.LoadPreview()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCronExpression(t *testing.T) {
	assert.Equal(t, "0 * * * *", CronExpression(entities.CronIntervalHourly))
	assert.Equal(t, "0 */12 * * *", CronExpression(entities.CronIntervalTwiceDaily))
	assert.Equal(t, "0 0 * * *", CronExpression(entities.CronIntervalDaily))
	assert.Equal(t, "0 0 * * *", CronExpression("bogus"))

	for _, interval := range []string{entities.CronIntervalHourly, entities.CronIntervalTwiceDaily, entities.CronIntervalDaily} {
		assert.NoError(t, ValidateCronSchedule(CronExpression(interval)))
	}
	assert.Error(t, ValidateCronSchedule("every day"))
}

func TestGetNextRunTime(t *testing.T) {
	from := time.Date(2024, 5, 1, 10, 30, 0, 0, time.Local)

	next, err := GetNextRunTime(entities.CronIntervalHourly, from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 11, 0, 0, 0, time.Local), *next)

	next, err = GetNextRunTime(entities.CronIntervalTwiceDaily, from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local), *next)

	next, err = GetNextRunTime(entities.CronIntervalDaily, from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.Local), *next)
}
