package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/bidsmeta/bidsmeta/internal/branding"
	"github.com/bidsmeta/bidsmeta/internal/dataset"
	"github.com/bidsmeta/bidsmeta/internal/metadata"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Setting keys.
const (
	KeyBIDSRoot           = "bids_root"
	KeyDataType           = "data_type"
	KeyFileExtension      = "file_extension"
	KeyVerbose            = "verbose"
	KeyOverwrite          = "overwrite"
	KeyDescriptions       = "descriptions"
	KeyBIDSVersion        = "bids_version"
	KeyParticipantColumns = "participant_columns"
	KeyDatasetName        = "dataset.name"
	KeyDatasetLicense     = "dataset.license"
	KeyDatasetAuthors     = "dataset.authors"
)

// ErrUnknownKey is returned by Set for keys bidsmeta does not read.
var ErrUnknownKey = errors.New("unknown config key")

var defaults = map[string]any{
	KeyBIDSRoot:           "",
	KeyDataType:           dataset.DefaultDataType,
	KeyFileExtension:      []string{dataset.DefaultExtension},
	KeyVerbose:            true,
	KeyOverwrite:          false,
	KeyDescriptions:       "",
	KeyBIDSVersion:        metadata.DefaultBIDSVersion,
	KeyParticipantColumns: []string{},
	KeyDatasetName:        "",
	KeyDatasetLicense:     "",
	KeyDatasetAuthors:     []string{},
}

var listKeys = []string{KeyFileExtension, KeyParticipantColumns, KeyDatasetAuthors}

var boolKeys = []string{KeyVerbose, KeyOverwrite}

// Dir returns the path to the bidsmeta config directory (~/.bidsmeta/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.bidsmeta/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Keys returns every known setting key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Load initializes Viper to read from the config file and environment.
// Nested keys map to variables with dots and dashes replaced, so
// dataset.name is read from BIDSMETA_DATASET_NAME.
func Load() {
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}

	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// BindFlag makes flag override key when it was set on the command line.
func BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("binding %s: no such flag", key)
	}
	if err := viper.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("binding %s to --%s: %w", key, flag.Name, err)
	}
	return nil
}

// Get returns a config value by key. Lists are joined with commas. Returns
// empty string if not set.
func Get(key string) string {
	if slices.Contains(listKeys, key) {
		return strings.Join(viper.GetStringSlice(key), ",")
	}
	return viper.GetString(key)
}

// Set validates value for key, stores it and saves the config file. List
// keys take a comma-separated value.
func Set(key, value string) error {
	parsed, err := parseValue(key, value)
	if err != nil {
		return err
	}

	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, parsed)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

func parseValue(key, value string) (any, error) {
	if _, ok := defaults[key]; !ok {
		return nil, fmt.Errorf("%w %q (known keys: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}

	switch {
	case slices.Contains(listKeys, key):
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		if key == KeyFileExtension {
			items = dataset.NormalizeExtensions(items)
		}
		return items, nil
	case slices.Contains(boolKeys, key):
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false, got %q", key, value)
		}
		return b, nil
	case key == KeyBIDSVersion:
		v, err := metadata.ParseBIDSVersion(value)
		if err != nil {
			return nil, err
		}
		return v, nil
	case key == KeyDataType && strings.TrimSpace(value) == "":
		return nil, fmt.Errorf("%s must not be empty", key)
	}
	return value, nil
}
