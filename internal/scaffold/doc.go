// Package scaffold writes a starter description tables file for a dataset.
// It powers the "bidsmeta descriptions init" command: every task found by the
// scanner is listed together with the columns declared in the header rows of
// its event files, leaving only the descriptions to fill in.
package scaffold
