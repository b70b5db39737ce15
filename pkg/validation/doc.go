// Package validation validates and formats Polish business identifiers:
// NIP tax numbers, NRB/IBAN bank accounts, postal codes and street addresses.
//
// Every function is total: malformed input yields false or an empty/partial
// formatted value, never a panic.
package validation
