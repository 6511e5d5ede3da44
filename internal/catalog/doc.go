// Package catalog maintains capesv2.json, the dressing room page the proxy
// serves in place of the real catalog.
//
// Only the items array of the first itemListComp component in the GridList
// row is mutated, together with its totalItems count and, when present,
// customStoreRowConfiguration.maxOffers. Every other field of the document is
// preserved.
package catalog
