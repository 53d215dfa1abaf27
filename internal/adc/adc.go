// Package adc reads the battery divider through a single ADC channel.
package adc

import (
	"errors"
	"time"
)

// ErrTimeout is returned when a conversion does not complete in time.
var ErrTimeout = errors.New("adc: conversion timed out")

// Reader performs one blocking conversion.
type Reader interface {
	// Sample returns the raw reading or ErrTimeout after timeout.
	Sample(timeout time.Duration) (uint16, error)
}
