// Package workshop talks to the Steam Workshop catalog for Wallpaper Engine.
//
// The Client wraps IPublishedFileService/QueryFiles (paginated, single
// required-tag queries) and ISteamRemoteStorage/GetPublishedFileDetails
// (batch detail backfill) behind a rate limiter and a retry policy. The
// Fetcher layers the union strategy on top: one query per included tag,
// server-side exclusions only, with an early stop once the locally filtered
// accumulator reaches the requested candidate count.
//
// The remote service intersects required tags, which is the wrong semantics
// for OR-within-dimension filters; never add a second entry to requiredtags.
//
// QueryFiles needs a Web API key; the details endpoint does not. Keyless
// clients use FetchBrowseUnion instead, which scrapes the public community
// browse pages for ids and backfills metadata through Details before
// filtering locally.
package workshop
