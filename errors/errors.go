package errors

import "fmt"

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrStoreUnavailable = fmt.Errorf("session store unavailable")
	ErrUnknownTaskField = fmt.Errorf("unknown task field")
)
