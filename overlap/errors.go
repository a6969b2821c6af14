// SPDX-License-Identifier: MIT

package overlap

import "errors"

// ErrNilPack indicates a nil domain pack argument.
var ErrNilPack = errors.New("overlap: nil pack")
