package aperture

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mohammed-shakir/aperture-engine/internal/effects"
)

var (
	ErrSchema       = errors.New("schema")
	ErrTypeMismatch = effects.ErrTypeMismatch
)

type TypeMismatchError = effects.TypeMismatchError

// SchemaError lists required columns or keys that are absent.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: missing required columns: %s", strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }
