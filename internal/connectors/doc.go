// Package connectors provides BatchSource implementations that hand crawled
// document batches to docsync. The filesystem connector reads JSON and JSON
// Lines files and watches a drop directory for new ones.
package connectors
