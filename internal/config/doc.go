// Package config provides configuration loading, merging, and validation
// facilities for the application.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Built-in defaults
//  2. Environment variables, after a dotenv file has been loaded
//  3. Command-line flags
//  4. JSON config file
//
// The main entry point is [GetStructuredConfig]. The returned value is passed
// explicitly to constructors; the package keeps no global state.
package config
