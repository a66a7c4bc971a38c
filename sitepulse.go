// Package sitepulse discovers the content URLs a set of websites publish
// through their XML sitemap indexes and streams a per-URL analysis report
// for each of them to a live subscriber.
//
// This package contains domain types and interfaces. Implementations live in
// subdirectories named after their primary dependency (e.g., sqlite/, http/,
// toml/), with orchestration in crawl/.
package sitepulse
