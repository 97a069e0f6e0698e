package universe

import "errors"

//engine error taxonomy, callers match with errors.Is
var (
	ErrInvalidDimension = errors.New("invalid grid dimension")
	ErrOutOfRange       = errors.New("coordinate out of range")
	ErrNoFreePatch      = errors.New("no free patch")
	ErrUnknownCellType  = errors.New("unknown cell type")
	ErrUnknownEdgeRule  = errors.New("unknown edge rule")
	ErrUnknownState     = errors.New("unknown state code")
	ErrMalformedBoard   = errors.New("malformed board")
	ErrInvalidParam     = errors.New("invalid rule parameter")
)
