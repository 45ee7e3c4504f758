// Package framegraph groups captured GPU events into render passes, files
// texture usages under those passes and infers the dependency edges between
// them.
//
// A build runs three stages over a capture.Source:
//
//  1. BuildPasses splits the flat event list into passes wherever the
//     output targets change or a frame ends.
//  2. CollectUsages files each texture usage under the pass whose event
//     range contains it, as a read or a draw attachment.
//  3. LinkDependencies connects every read to the most recent earlier pass
//     that drew the same resource.
//
// Build composes the stages, reports progress and returns an immutable
// Graph that answers the queries used by the exporters and viewers.
package framegraph
