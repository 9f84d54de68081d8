package config

import (
	"fmt"
	"strings"

	"github.com/bidsmeta/bidsmeta/internal/dataset"
	"github.com/bidsmeta/bidsmeta/internal/metadata"
	"github.com/spf13/viper"
)

// Settings is a validated snapshot of the effective configuration.
type Settings struct {
	BIDSRoot           string
	DataType           string
	Extensions         []string
	Verbose            bool
	Overwrite          bool
	Descriptions       string
	BIDSVersion        string
	ParticipantColumns []string
	Dataset            DatasetSettings
}

// DatasetSettings prefills dataset_description.json.
type DatasetSettings struct {
	Name    string
	License string
	Authors []string
}

// Current reads the effective settings and rejects values no run could use.
func Current() (*Settings, error) {
	s := &Settings{
		BIDSRoot:           viper.GetString(KeyBIDSRoot),
		DataType:           strings.TrimSpace(viper.GetString(KeyDataType)),
		Extensions:         dataset.NormalizeExtensions(viper.GetStringSlice(KeyFileExtension)),
		Verbose:            viper.GetBool(KeyVerbose),
		Overwrite:          viper.GetBool(KeyOverwrite),
		Descriptions:       viper.GetString(KeyDescriptions),
		ParticipantColumns: viper.GetStringSlice(KeyParticipantColumns),
		Dataset: DatasetSettings{
			Name:    viper.GetString(KeyDatasetName),
			License: viper.GetString(KeyDatasetLicense),
			Authors: viper.GetStringSlice(KeyDatasetAuthors),
		},
	}

	if s.DataType == "" {
		return nil, fmt.Errorf("%s must not be empty", KeyDataType)
	}
	if len(s.Extensions) == 0 {
		return nil, fmt.Errorf("%s must list at least one extension", KeyFileExtension)
	}

	version, err := metadata.ParseBIDSVersion(viper.GetString(KeyBIDSVersion))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyBIDSVersion, err)
	}
	s.BIDSVersion = version

	return s, nil
}

// DescriptionOptions returns the dataset_description.json prefill.
func (s *Settings) DescriptionOptions() metadata.DescriptionOptions {
	return metadata.DescriptionOptions{
		BIDSVersion: s.BIDSVersion,
		Name:        s.Dataset.Name,
		License:     s.Dataset.License,
		Authors:     s.Dataset.Authors,
	}
}
