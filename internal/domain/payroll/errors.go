package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput     = errors.New("invalid payroll input")
	ErrInvalidRates     = errors.New("invalid statutory rate configuration")
	ErrUnknownRateTable = errors.New("unknown rate table")
)

var (
	ErrNegativeSalary       = fmt.Errorf("%w: basic salary must not be negative", ErrInvalidInput)
	ErrMalformedAmount      = fmt.Errorf("%w: amount must be a finite number", ErrInvalidInput)
	ErrNegativeAllowance    = fmt.Errorf("%w: allowance amount must not be negative", ErrInvalidInput)
	ErrBlankAllowanceType   = fmt.Errorf("%w: allowance type is required", ErrInvalidInput)
	ErrMissingEmployeeRates = fmt.Errorf("%w: at least one SSNIT employee rate is required", ErrInvalidRates)
	ErrRateOutOfRange       = fmt.Errorf("%w: rates must be within [0,1]", ErrInvalidRates)
	ErrEmployeeRatesTooHigh = fmt.Errorf("%w: employee SSNIT and NHIS rates exceed 100%%", ErrInvalidRates)
)
