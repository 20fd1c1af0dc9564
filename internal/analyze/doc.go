// Package analyze turns a parsed page into inventory records.
//
// It hosts the structure-agnostic extraction passes that must work on any
// reasonably marked-up CMS page without site-specific selectors:
//
//   - Chrome extraction: locating the header/footer landmark regions and
//     pulling navigation labels, logo text, contact details, footer links,
//     and social platform links out of them
//   - Component classification: an ordered sequence of predicate+extractor
//     rules (form, table, hero_banner, media_gallery, list, rich_text,
//     text_block) applied to each content block in document order
//   - Link categorization: partitioning anchor targets into internal and
//     external sets relative to the page's host
//   - Page metadata: titles, meta descriptions, and URL-derived slugs
//
// # Components
//
// Each classification rule lives in its own file and implements the Rule
// interface. Rules are tried in fixed priority order and the first match
// wins, so a block never produces two components. All passes are pure
// functions of their input; they hold no crawl state and may run fully in
// parallel across pages.
//
// The caller controls destructive order: DetachChrome removes the chrome
// regions from the document (returning them for extraction) so that
// classification and link recording never see site-wide navigation.
package analyze
