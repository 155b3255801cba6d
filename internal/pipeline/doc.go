// Package pipeline turns Markdown into a standalone HTML document ready for
// browser rendering. PDF generation itself lives in the root doctoolkit
// package.
package pipeline
