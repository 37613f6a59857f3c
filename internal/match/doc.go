// Package match resolves a user-supplied company query against noisy register
// search results. It canonicalizes company names across legal-form spelling
// variants, parses registration identifiers across the German register
// divisions, and fuses name similarity with registration similarity into a
// single ranking. A correct registration number is treated as authoritative;
// name text is scrape output and acts as a tiebreaker.
//
// The package is pure and stateless: every call allocates its own working
// data, so it is safe to invoke concurrently with disjoint inputs.
package match
