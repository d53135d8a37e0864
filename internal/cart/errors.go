package cart

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive whole number")
	ErrExceedsStock    = errors.New("quantity exceeds available stock")
	ErrLineNotFound    = errors.New("cart line not found")
)

// StockError reports the stock ceiling a quantity change ran into.
type StockError struct {
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("only %d available", e.Available)
}

func (e *StockError) Is(target error) bool {
	return target == ErrExceedsStock
}
