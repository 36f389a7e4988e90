// Package staging reclaims scratch files left behind by interrupted runs:
// encoder verification files in the work directory and half-written commit
// temp files next to rewritten decks in the output directory.
package staging
