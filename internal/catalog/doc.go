// Package catalog holds the static reference data SmartPack samples from and
// reports against: which material each product is made of, the cities scans
// can come from, the recycling centers per city and the recovered value of a
// recycled unit per material.
//
// A Catalog is built once at startup, either from Default or from a YAML
// file, and is treated as read-only afterwards.
package catalog
