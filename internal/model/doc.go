// Package model defines the data structures shared by the criteria, the
// report writers and the database.
//
// This package contains the following main types:
//   - Result: the outcome of one criteria run, with its evidence
//   - Anomaly: an element declaring only one of color and background-color
//   - ForbiddenElements: elements using presentational tags or attributes
//   - Help: the self-description of a criteria
//   - ScanReport: the record of scanning one target, rendered and stored
//
// Models are kept apart from the packages producing them so that criteria,
// report and database can share them without import cycles. They are
// serializable to JSON for report output and database storage; element
// references keep their parsed node only in memory.
package model
