// Package dataset reads the maize production, price and storage datasets and
// the forecast artifacts written by the trainer.
//
// Every call re-reads its backing file; nothing is cached. Mandatory datasets
// fail with an error wrapping ErrDatasetNotFound (and therefore fs.ErrNotExist)
// when absent, while forecast loaders report a found flag instead because the
// trainer may not have run yet.
//
// Files are CSV with a single header row. A sibling .xlsx workbook is read
// from its first sheet when the CSV is not present.
package dataset
