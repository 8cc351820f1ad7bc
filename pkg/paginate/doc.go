// Package paginate walks GitHub collection endpoints to exhaustion.
//
// A Paginator asks for pages of up to 100 records and concatenates them in
// server order. It never retries a page and never de-duplicates records.
package paginate
