// Package config defines the options of a scan: CLI settings, defaults,
// validation, and the per-host settings of the .a11yscan YAML file.
package config
