// Package engine resolves scanned codes against a dataset, decides the reward
// and instructions for a scanned package and reduces a whole dataset into the
// administrator report.
package engine
