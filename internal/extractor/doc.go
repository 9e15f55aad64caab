// Package extractor decides which handler is responsible for an input
// identifier (a URL or a search query such as "ytsearch5:cats").
//
// A Registry holds an ordered list of flat Descriptor records. Resolve walks
// them in registration order and returns the first whose suitability
// predicate accepts the input, falling back to the single catch-all
// descriptor. Suitability is the descriptor's pattern set (compiled with
// github.com/dlclark/regexp2, anchored at the start of the input) optionally
// narrowed by an Override strategy that disambiguates overlapping patterns,
// such as a video URL that also carries a playlist marker.
//
// Descriptors are bound to Handler implementations when the registry is
// built, so resolution never loads anything lazily and never performs I/O.
package extractor
