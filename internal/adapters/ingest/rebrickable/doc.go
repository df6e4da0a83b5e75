// Package rebrickable downloads the Rebrickable catalog CSV dumps
//
// Design choices:
// - The whole gzip body is read into memory, then inflated in one pass.
// - A non 2xx status is an error; there is no retry.
// - Sources are an ordered list so runs write files in a stable order.
// - A mirror base can replace the CDN host for tests and air gapped setups.
package rebrickable
