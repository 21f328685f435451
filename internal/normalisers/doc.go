// Package normalisers holds the record clean-up steps applied to crawled
// batches before version sync.
//
// The snapshot normaliser converts source dates to ISO form, drops the
// "data being updated" placeholder and fills in missing content hashes.
package normalisers
