// Package intercept rewrites the three client calls that make custom capes
// appear in the dressing room.
//
// Each exchange is classified once, on its request, as one of:
//
//   - CatalogPage: the response body is replaced by capesv2.json.
//   - CatalogLookup: a POST naming a known cape records a pending lookup
//     under the exchange token; the response is replaced by a synthesized
//     item whose single download URL embeds a freshly minted asset id.
//   - ArchiveDownload: a request for <asset host>/.../<asset id>/primary.zip
//     is answered directly with the built archive, but only for asset ids this
//     process minted.
//
// Everything else passes through untouched. Per-exchange state travels in an
// Exchange value the proxy runtime hands from the request hook to the
// response hook; shared state lives in a Registry.
package intercept
