// Package view merges the two independently arriving data sources —
// live push records and historical pulled pages — into one
// duplicate-free sequence for display.
//
// Live items come first in buffer order (newest first), but only those
// that match the active filter and have not already arrived in a
// historical page. Historical items follow in fetch order. Identity is
// the only dedup criterion; item contents are never compared.
package view
