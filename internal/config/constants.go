package config

// Default paths for on-disk state
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./mp-directory.db"

	// DefaultPhotosDir is where sideloaded MP photos are stored
	DefaultPhotosDir = "./photos"

	// DefaultAPIBaseURL points at the current Sejm term MP listing
	DefaultAPIBaseURL = "https://api.sejm.gov.pl/sejm/term10/MP"
)
