// Package extractor parses fetched pages into generic field/value
// records and expandable child links.
//
// Field discovery is fully schema-free: every labeled sub-element
// contributes a field named by its label, so the extractor works across
// databases with different field vocabularies. Two structural rules are
// fixed, though:
//
//   - Fields whose normalized name contains "etymology" are dropped.
//     They are back-references to the parent entry and, if followed,
//     would re-enter the page that produced the current one.
//   - Child links are taken only from sub-elements carrying an expand
//     marker (the plus icon with a follow-up query payload). Plain
//     hyperlinks are ignored even when syntactically valid.
package extractor
