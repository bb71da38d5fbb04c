package precog

// Config defines the configuration for the client.
type Config struct {
	// Endpoint is the URL of the Precog API, e.g. "https://api.precog.io".
	//
	// Account operations require an HTTPS endpoint. Ingest and query
	// operations accept whatever scheme the deployment exposes.
	Endpoint string `json:"endpoint"`
	// APIKey authorizes ingest and query operations.
	APIKey string `json:"apiKey"`
	// BasePath is the account-scoped path prefix applied to every ingest
	// and query path. It must be absolute. The root path "/" means no
	// prefix.
	BasePath string `json:"basePath"`
}
