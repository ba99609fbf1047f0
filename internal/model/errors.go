package model

import "errors"

// ErrorKind classifies a rule failure. None of the kinds is a systemic fault.
type ErrorKind int

const (
	KindFormat ErrorKind = iota + 1
	KindConflict
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindFormat:
		return "format"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// RuleError is the single named failure returned by a core operation.
// Error() yields the human-readable rule description.
type RuleError struct {
	Kind    ErrorKind
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

func newRule(kind ErrorKind, message string) *RuleError {
	return &RuleError{Kind: kind, Message: message}
}

// Signup and lookup rules.
var (
	ErrInvalidName      = newRule(KindFormat, "Invalid name format. Name must contain first and last name.")
	ErrInvalidEmail     = newRule(KindFormat, "Invalid Email format.")
	ErrDuplicatedEmail  = newRule(KindConflict, "Duplicated email")
	ErrInvalidDocument  = newRule(KindFormat, "Invalid document format.")
	ErrInvalidPassword  = newRule(KindFormat, "Invalid password format.")
	ErrInvalidAccountID = newRule(KindFormat, "Invalid accountId format.")
	ErrAccountNotFound  = newRule(KindNotFound, "Account not found")
)

// Ledger rules.
var (
	ErrInvalidLedgerAccount   = newRule(KindFormat, "Invalid accountId")
	ErrInvalidQuantity        = newRule(KindFormat, "Invalid quantity")
	ErrInvalidAssetID         = newRule(KindFormat, "Invalid assetId")
	ErrAccountOrAssetNotFound = newRule(KindNotFound, "Account or asset not found")
	ErrInsufficientQuantity   = newRule(KindConflict, "Insufficient asset quantity")
)

// ErrPositionExists is returned by an asset store when a position is saved twice for one key.
var ErrPositionExists = errors.New("position already exists")

// ErrOrderNotFound is returned by an order store when updating an unknown order.
var ErrOrderNotFound = errors.New("order not found")

// AsRuleError reports whether err carries a rule failure and returns it.
func AsRuleError(err error) (*RuleError, bool) {
	var ruleErr *RuleError
	if errors.As(err, &ruleErr) {
		return ruleErr, true
	}
	return nil, false
}
