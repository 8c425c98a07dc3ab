// Package record defines the core data model shared by the crawler and
// the validator: generic field/value records, content fingerprints,
// crawl state, and the output document.
//
// The model is deliberately schema-free. Source pages expose a different
// field vocabulary per database, so a record is an ordered list of
// name/value pairs rather than a fixed struct. Downstream consumers look
// up the keys they know about and tolerate absent ones.
package record
