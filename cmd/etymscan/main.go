// Package main provides the entry point for the etymscan CLI.
//
// etymscan crawls a paged lexicographic web database into structured
// records and cross-validates them against a reference dictionary's
// search endpoint.
//
// Usage:
//
//	etymscan crawl <listing-url>
//	etymscan validate --input records.csv <search-url>
//
// See --help for all available options.
package main

// main is the entry point for etymscan.
func main() {
	Execute()
}
