// Package checkpoint persists crawl progress so an interrupted run can
// resume without re-fetching or duplicating already-seen content.
//
// A checkpoint is written after every completed listing page, not only
// at exit, so a crash loses at most the in-flight page. Writes are
// atomic (temp file then rename) so a crash mid-write cannot leave a
// corrupt resume file. A checkpoint belongs to exactly one job: loading
// one whose start URL differs from the requested one is a hard
// configuration error, never a silent resume.
package checkpoint
