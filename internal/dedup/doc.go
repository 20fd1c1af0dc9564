// Package dedup detects revisits of effectively identical pages.
//
// CMS-driven sites routinely serve the same content under several URLs
// (trailing slashes, print views, tracking paths). Comparing URLs cannot
// catch that, so pages are fingerprinted by their normalized visible text:
// markup is stripped, script and style content dropped, entities unescaped,
// whitespace collapsed, and the result case-folded before hashing. Two
// pages whose rendered text matches produce the same fingerprint no matter
// how their markup differs.
//
// The Registry keeps the fingerprints seen during one crawl and is safe for
// use from concurrent fetch workers. Membership is the sole dedup decision:
// exact match only, no similarity threshold.
package dedup
