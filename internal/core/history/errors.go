package history

import "errors"

// ErrBatchDisposed is wrapped by the panic raised when a batch is ended or
// cancelled a second time.
var ErrBatchDisposed = errors.New("batch already disposed")
