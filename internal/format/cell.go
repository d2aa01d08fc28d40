package format

import "fmt"

var tagNames = [...]string{
	TagUninit: TagNameUninit,
	TagAtom:   TagNameAtom,
	TagCons:   TagNameCons,
	TagFreed:  TagNameFreed,
}

// Valid reports whether t is one of the four known tags.
func (t Tag) Valid() bool {
	return t >= TagUninit && t <= TagFreed
}

// Live reports whether a cell with this tag holds meaningful data and may be
// referenced by a cons cell.
func (t Tag) Live() bool {
	return t == TagAtom || t == TagCons
}

func (t Tag) String() string {
	if !t.Valid() {
		return fmt.Sprintf("tag(%d)", int32(t))
	}
	return tagNames[t]
}

// ParseTag maps a tag name (uninit, atom, cons, freed) to its code.
func ParseTag(name string) (Tag, error) {
	for i, n := range tagNames {
		if n == name {
			return Tag(i), nil
		}
	}
	return TagUninit, fmt.Errorf("%w: %q", ErrUnknownTag, name)
}

// Valid reports whether f names one of the four cell fields.
func (f Field) Valid() bool {
	return f >= FieldCar && f <= FieldRefCount
}

func (f Field) String() string {
	switch f {
	case FieldCar:
		return "car"
	case FieldCdr:
		return "cdr"
	case FieldTag:
		return "tag"
	case FieldRefCount:
		return "refcount"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}
