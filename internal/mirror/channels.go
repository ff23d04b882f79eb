package mirror

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultChannels is used when no channel configuration file exists.
var DefaultChannels = []Channel{
	{
		ID:    "nasa-live",
		Name:  "NASA Live",
		URL:   "https://www.youtube.com/@NASA/live",
		Logo:  "https://upload.wikimedia.org/wikipedia/commons/e/e5/NASA_logo.svg",
		Group: "Science",
	},
}

// LoadChannels reads the ordered channel list from a JSON file. A missing
// file yields DefaultChannels; a malformed file is an error.
func LoadChannels(path string) ([]Channel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultChannels, nil
		}
		return nil, fmt.Errorf("read channels file: %w", err)
	}

	var channels []Channel
	if err := json.Unmarshal(data, &channels); err != nil {
		return nil, fmt.Errorf("parse channels file: %w", err)
	}
	return channels, nil
}
