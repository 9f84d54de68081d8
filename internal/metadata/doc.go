// Package metadata writes the BIDS companion files for a behavioral dataset:
// one JSON sidecar per events file, participants.tsv and participants.json,
// dataset_description.json, and a README.md template.
//
// Every file follows the same write policy. A file that already exists is
// left alone and reported as skipped unless overwrite is set, in which case it
// is replaced. Generate runs the whole sequence after scanning the dataset.
package metadata
