package answer

import "errors"

// ErrTemplateNotFound reports a missing prompt template file. A prompt
// cannot be constructed without its template, so synthesis aborts.
var ErrTemplateNotFound = errors.New("prompt template not found")
