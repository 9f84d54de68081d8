// Package dataset discovers behavioral event files in a BIDS dataset tree.
// It walks the dataset root, keeps the "*events*" files that live under a
// data-type directory (default "beh"), and parses the subject, session, run,
// and task entities out of each filename.
package dataset
