// Package progress derives a worker's daily status from the three check-in
// timestamps and folds a day's records into a crew summary.
//
// Everything here is pure: no storage, no clock. Callers load the active
// workers and the records of one date and hand them in.
package progress
