// Package shared holds helpers used across packages that belong to no single layer.
//
// The testutil subpackage provides a capturing slog handler and dataset
// fixtures that write production, price, storage and forecast files into a
// temporary directory laid out exactly like a real deployment.
package shared
