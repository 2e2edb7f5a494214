// Package cli is the interactive terminal client: account sign-up and
// sign-in, submitting readings, and viewing or exporting dashboard series.
//
// Readings that cannot reach the server are kept in the local database
// and sent later with the sync command.
package cli
