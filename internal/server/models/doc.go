// Package models contains the account records read by the resolver and
// updated by the account service.
package models
