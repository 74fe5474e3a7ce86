package models

type (
	Config struct {
		// Connection/Auth
		ApiKey string `toml:"ApiKey"`

		// Paths
		IniPath        string `toml:"IniPath"`        // Server ini (servertest.ini) to manage
		WorkshopPath   string `toml:"WorkshopPath"`   // Steam workshop content root for scanning
		DatabasePath   string `toml:"DatabasePath"`   // Bitcask cache for fetched workshop details
		BleveIndexPath string `toml:"BleveIndexPath"` // Local search index built by 'scan --index'

		// Game/Format
		AppID           string `toml:"AppID"`           // Steam app id, defaults to 108600 (Project Zomboid)
		LegacyModPrefix bool   `toml:"LegacyModPrefix"` // B42+ backslash prefix on Mods= entries

		// API Query Behavior
		SearchPageSize      int `toml:"SearchPageSize"`
		ApiClientTimeoutSec int `toml:"ApiClientTimeoutSec"`

		// Other
		LogApiRequests bool `toml:"LogApiRequests"`
	}

	// Mod is the unit managed throughout: one entry of the server's mod list.
	// ModID is the game-internal id (mod.info id=), WorkshopID the numeric
	// Steam workshop item id. Either may be empty while unresolved.
	Mod struct {
		ModID       string `json:"mod_id"`
		WorkshopID  string `json:"workshop_id"`
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		Enabled     bool   `json:"enabled"`
	}

	// Api Calls and Responses

	DetailsResponse struct {
		Response struct {
			PublishedFileDetails []PublishedFileDetail `json:"publishedfiledetails"`
		} `json:"response"`
	}

	PublishedFileDetail struct {
		Result          int       `json:"result"`
		PublishedFileID string    `json:"publishedfileid"`
		Title           string    `json:"title"`
		FileDescription string    `json:"file_description"`
		PreviewURL      string    `json:"preview_url"`
		Subscriptions   int       `json:"subscriptions"`
		Tags            []FileTag `json:"tags"`
	}

	FileTag struct {
		Tag         string `json:"tag"`
		DisplayName string `json:"display_name"`
	}

	QueryFilesResponse struct {
		Response struct {
			Total                int                   `json:"total"`
			PublishedFileDetails []PublishedFileDetail `json:"publishedfiledetails"`
		} `json:"response"`
	}

	TagListResponse struct {
		Response struct {
			Tags []FileTag `json:"tags"`
		} `json:"response"`
	}

	// SearchResult is one page of workshop search hits plus the total match
	// count reported by the API.
	SearchResult struct {
		Total int
		Items []PublishedFileDetail
	}
)
