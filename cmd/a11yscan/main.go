// Package main provides the entry point for the a11yscan CLI.
//
// a11yscan audits HTML documents against RGAA accessibility criteria.
//
// Usage:
//
//	a11yscan scan <tag> <file-or-url>...
//	a11yscan scan <tag> --criteria-help
//	a11yscan criteria
//
// See --help for all available options.
package main

func main() {
	Execute()
}
