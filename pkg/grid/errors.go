package grid

import "errors"

// Sentinel errors for container operations. Call sites wrap these with
// context via fmt.Errorf("%w: ..."), so callers can branch with errors.Is.
//
// Every violation is a synchronous failure raised before any mutation is
// applied: an operation either fully applies or leaves the container
// exactly as it was.
var (
	// ErrColumnNotFound reports a reference to a column the registry does
	// not contain.
	ErrColumnNotFound = errors.New("column not found")

	// ErrDuplicateColumn reports a re-declaration of an existing column.
	ErrDuplicateColumn = errors.New("duplicate column")

	// ErrInvalidColumnName reports an empty or non-string-convertible
	// column name.
	ErrInvalidColumnName = errors.New("invalid column name")

	// ErrTypeMismatch reports a value whose kind differs from the kind the
	// column locked onto.
	ErrTypeMismatch = errors.New("column type mismatch")

	// ErrIndexOutOfRange reports a row index outside [0, RowCount).
	ErrIndexOutOfRange = errors.New("row index out of range")

	// ErrInvalidRowShape reports a row argument that is not a plain
	// key/value object.
	ErrInvalidRowShape = errors.New("invalid row shape")

	// ErrUnsortableValue reports an object/array cell under a row sort, or
	// a value that fails to parse under integer-order sorting.
	ErrUnsortableValue = errors.New("unsortable value")

	// ErrNestedContainer reports an attempt to nest a Table or Record
	// inside a Table cell.
	ErrNestedContainer = errors.New("nested container value")

	// ErrNotStorable reports a value outside the closed kind set.
	ErrNotStorable = errors.New("value not storable")

	// ErrInvalidArgument reports a nil predicate, validator, or other
	// non-callable argument.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoColumns reports a row operation on a table with no declared
	// columns.
	ErrNoColumns = errors.New("no columns declared")

	// ErrKeyNotString reports a Record key that is not a string.
	ErrKeyNotString = errors.New("record key must be a non-empty string")

	// ErrValueKind reports a Record value that does not match the kind the
	// accessor or setter requires.
	ErrValueKind = errors.New("unexpected record value kind")
)
