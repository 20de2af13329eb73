package layout

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/daviszhen/flashsize/pkg/util"
)

// Warning records a value the calculator replaced.
type Warning struct {
	Field     string
	Original  string
	Corrected string
	Reason    string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s should be %s (was %s): %s", w.Field, w.Corrected, w.Original, w.Reason)
}

type Warnings []Warning

func (ws *Warnings) add(field, original, corrected, reason string) {
	if ws == nil {
		return
	}
	*ws = append(*ws, Warning{
		Field:     field,
		Original:  original,
		Corrected: corrected,
		Reason:    reason,
	})
	util.Warn("corrected layout parameter",
		zap.String("field", field),
		zap.String("original", original),
		zap.String("corrected", corrected),
		zap.String("reason", reason))
}

func (ws Warnings) Has(field string) bool {
	for _, w := range ws {
		if w.Field == field {
			return true
		}
	}
	return false
}
