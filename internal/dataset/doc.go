// Package dataset synthesises the package-scan records a SmartPack session
// works against. A Dataset is generated once and never mutated; readers only
// ever receive copies of its records.
package dataset
