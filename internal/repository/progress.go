// Package repository holds the errors shared by every progress store implementation.
package repository

import "errors"

var ErrProgressNotFound = errors.New("progress not found")
