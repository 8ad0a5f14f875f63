// Package pkg holds the libraries behind trackviz.
//
// A chart is built in stages, each in its own package:
//
//	source       open a table from a file, URL or gs:// bucket
//	  ↓
//	catalog      decode the CSV and normalize rows into the working set
//	  ↓
//	scales       derive x, y, radius and color scales from the working set
//	  ↓
//	layout       axes, ticks, titles and the follower legend
//	  ↓
//	join         one mark per record, with entrance transitions on a timeline
//	  ↓
//	interact     the hover and click state machine over the marks
//	  ↓
//	sink         html, svg, png and json artifacts
//
// [pipeline] strings the stages together for the CLI and the server, with
// [cache] in front of remote loads and rendered artifacts. [errors] carries
// the error codes shared by every stage, and [observability] the hooks the
// stages report into.
//
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/trackviz/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/trackviz/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/trackviz/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/trackviz/pkg/observability
package pkg
