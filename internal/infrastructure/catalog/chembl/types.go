package chembl

import (
	"bytes"
	stdliberrors "errors"
	"strconv"

	"github.com/turtacn/OrphaMine/internal/domain/molecule"
)

// optFloat accepts a JSON number, a numeric string, an empty string or null.
type optFloat struct{ v *float64 }

func (f *optFloat) UnmarshalJSON(b []byte) error {
	s, err := scalarText(b)
	if err != nil {
		return err
	}
	f.v, err = molecule.ParseOptionalFloat(s)
	return err
}

// optInt accepts the same inputs as optFloat but requires an integral value.
type optInt struct{ v *int }

func (i *optInt) UnmarshalJSON(b []byte) error {
	s, err := scalarText(b)
	if err != nil {
		return err
	}
	i.v, err = molecule.ParseOptionalInt(s)
	return err
}

// scalarText returns the text of a JSON number or string; null yields "".
// Objects, arrays and booleans are schema drift.
func scalarText(b []byte) (string, error) {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		return "", nil
	case b[0] == '"':
		return strconv.Unquote(string(b))
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		return string(b), nil
	default:
		return "", stdliberrors.New("expected number, numeric string or null, got " + string(b))
	}
}

//Personal.AI order the ending
