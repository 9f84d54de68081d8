package metadata

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Fixed dataset_description.json values.
const (
	DefaultBIDSVersion = "1.9.0"
	DatasetTypeRaw     = "raw"
)

// DatasetDescription is the dataset_description.json template. Field order
// is the key order of the written file.
type DatasetDescription struct {
	Name               string          `json:"Name"`
	BIDSVersion        string          `json:"BIDSVersion"`
	DatasetType        string          `json:"DatasetType"`
	License            string          `json:"License"`
	Authors            []string        `json:"Authors"`
	Acknowledgements   string          `json:"Acknowledgements"`
	HowToAcknowledge   string          `json:"HowToAcknowledge"`
	Funding            []string        `json:"Funding"`
	EthicsApprovals    []string        `json:"EthicsApprovals"`
	ReferencesAndLinks []string        `json:"ReferencesAndLinks"`
	DatasetDOI         string          `json:"DatasetDOI"`
	HEDVersion         string          `json:"HEDVersion"`
	SourceDatasets     []SourceDataset `json:"SourceDatasets"`
}

// SourceDataset is one entry of SourceDatasets.
type SourceDataset struct {
	URL     string `json:"URL"`
	Version string `json:"Version"`
}

// DescriptionOptions prefills parts of the template. Zero values leave the
// template blank.
type DescriptionOptions struct {
	BIDSVersion string
	Name        string
	License     string
	Authors     []string
}

// NewDatasetDescription builds the template. BIDSVersion must be a full
// MAJOR.MINOR.PATCH version and defaults to DefaultBIDSVersion.
func NewDatasetDescription(opts DescriptionOptions) (*DatasetDescription, error) {
	version, err := ParseBIDSVersion(opts.BIDSVersion)
	if err != nil {
		return nil, err
	}

	authors := opts.Authors
	if len(authors) == 0 {
		authors = []string{"", ""}
	}

	return &DatasetDescription{
		Name:               opts.Name,
		BIDSVersion:        version,
		DatasetType:        DatasetTypeRaw,
		License:            opts.License,
		Authors:            authors,
		Funding:            []string{"", ""},
		EthicsApprovals:    []string{""},
		ReferencesAndLinks: []string{"", ""},
		SourceDatasets:     []SourceDataset{{}},
	}, nil
}

// ParseBIDSVersion validates v and returns its canonical form. An empty v
// yields DefaultBIDSVersion.
func ParseBIDSVersion(v string) (string, error) {
	if v == "" {
		return DefaultBIDSVersion, nil
	}
	parsed, err := semver.StrictNewVersion(v)
	if err != nil {
		return "", fmt.Errorf("invalid BIDS version %q: %w", v, err)
	}
	return parsed.String(), nil
}

// EmitDatasetDescription writes dataset_description.json at the dataset root.
// A nil desc writes the default template.
func (e *Emitter) EmitDatasetDescription(desc *DatasetDescription) error {
	if desc == nil {
		var err error
		if desc, err = NewDatasetDescription(DescriptionOptions{}); err != nil {
			return err
		}
	}
	return e.writeJSON(e.rootPath(DatasetDescriptionFile), desc)
}
