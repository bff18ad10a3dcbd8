// Package report renders criteria runs and scan reports.
//
// Two families of outputs live here:
//   - ConsoleReporter implements criteria.Reporter and shows help, progress
//     and results while criteria run, styled with lipgloss when the output
//     is a terminal. Recorder and MultiReporter let a scan capture those
//     calls alongside the console.
//   - Writer implementations (JSON, Markdown, plain text) render a finished
//     model.ScanReport for files and tools.
package report
