package configuration

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DotenvReader reads .env style files with godotenv. Later files override
// earlier ones. Only keys carrying [EnvPrefix] are returned, and a prefixed
// key which is not a known setting is an error naming the file, so a typo
// in a tunable does not silently fall back to its default.
type DotenvReader struct{}

// Read parses the files in order and returns the merged settings.
func (*DotenvReader) Read(filenames ...string) (map[string]string, error) {
	known := Defaults()
	merged := make(map[string]string, len(known))

	for _, name := range filenames {
		envMap, err := parseDotenv(name)
		if err != nil {
			return nil, fmt.Errorf("(config-dotenv) %w", err)
		}

		for k, v := range envMap {
			if !strings.HasPrefix(k, EnvPrefix) {
				continue
			}
			if _, ok := known[k]; !ok {
				return nil, fmt.Errorf("(config-dotenv) %s: %w: unknown key %s", name, ErrInvalidSetting, k)
			}
			merged[k] = v
		}
	}

	return merged, nil
}

func parseDotenv(name string) (map[string]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	defer f.Close()

	envMap, err := godotenv.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return envMap, nil
}
