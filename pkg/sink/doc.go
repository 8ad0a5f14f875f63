// Package sink renders a joined chart into output artifacts.
//
// # Formats
//
//   - HTML: [RenderHTML] embeds the SVG in a page with the tooltip element
//     and a small script that plays the entrance and the hover and click
//     interaction in the browser.
//   - SVG: [RenderSVG] writes the chart with svgo. With [WithEntrance] the
//     marks start collapsed and carry their resting radius in data-r.
//   - PNG: [RenderPNG] draws a static raster with go-chart.
//   - JSON: [RenderJSON] exports scale domains, ticks, legend stops and the
//     marks at rest.
//
// # Failure surface
//
// When the table cannot be loaded no partial chart is drawn. Instead
// [RenderErrorHTML] produces the page with an error panel inside the chart
// container, naming the source that was looked for.
//
//	page, err := sink.RenderHTML(sink.Chart{Scene: scene, Layout: l},
//	    sink.WithContainerID("chart"),
//	    sink.WithTooltipID("tooltip"),
//	)
//
// Every renderer is read-only with respect to the chart and is safe to call
// concurrently on the same value.
package sink
