package metrics

import "errors"

// ErrExportFailed wraps failures writing the metrics textfile.
var ErrExportFailed = errors.New("metrics export failed")
