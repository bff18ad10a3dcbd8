// Package database stores the history of scan reports in SQLite.
//
// Every scan report is kept as JSON together with its target, criteria tag
// and status summary, so that the history can be listed without decoding
// the reports. The driver is modernc.org/sqlite, which needs no cgo.
package database
