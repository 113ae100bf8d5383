// Package bulk runs destructive actions over the rows selected in a grid.
//
// Selected ids are split into fixed-size batches so a large selection never
// becomes one oversized provider call. Batches run sequentially or with
// bounded concurrency, and failures from every batch are joined into one
// error. Execute ties a run to a grid's bulk action lifecycle: the selection
// is cleared and the grid refetches only when every batch succeeded.
package bulk
