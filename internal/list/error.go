package list

import "errors"

// ErrSplitRange is returned by SplitAt when the list has fewer than two
// entries, or the requested cut index is out of [0, count-1].
var ErrSplitRange = errors.New("list: split index out of range")
