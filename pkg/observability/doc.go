/*
Package observability provides Prometheus metrics for a running installation.

Metrics is both an EventServer (counting entered states per book) and a source
of lifecycle hooks (counting transitions by cause and book switches by outcome).
*/
package observability
