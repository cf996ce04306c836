package course

import "errors"

var errScoreOutOfRange = errors.New("value must be between 0 and 100")
