package constants

import (
	"os"
	"strconv"
)

func GetOutDir() string {
	path := os.Getenv("OUT_PATH")
	if path != "" {
		return path
	}
	return "./out"
}

func GetScoresDir() string {
	path := os.Getenv("SCORES_PATH")
	if path != "" {
		return path
	}

	panic("SCORES_PATH environment variable is not set!")
}

// GetMetadataEndpoint returns the DynamoDB endpoint for score metadata, or
// empty when metadata lookup is disabled.
func GetMetadataEndpoint() string {
	return os.Getenv("METADATA_ENDPOINT")
}

// DefaultExpandLimit bounds how many measures one part may expand to before
// the expander gives up on it.
const DefaultExpandLimit = 10000

func GetExpandLimit() int {
	raw := os.Getenv("EXPAND_LIMIT")
	if raw == "" {
		return DefaultExpandLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return DefaultExpandLimit
	}
	return n
}
