package tenant

import "errors"

// Resolution and registry errors. Handlers and middleware match on these
// with errors.Is to pick the response status and machine-readable code.
var (
	// ErrStoreNotFound means the store code has no directory entry.
	ErrStoreNotFound = errors.New("store not found")

	// ErrOwnerNotFound means the email has no directory entry.
	ErrOwnerNotFound = errors.New("owner not found")

	// ErrTenantIDMissing means the request carried no usable tenant signal.
	ErrTenantIDMissing = errors.New("tenant id missing")

	// ErrConnectionFailed wraps a failed tenant database open. The failure
	// is transient from the registry's point of view: it is never cached,
	// and the next request for the same tenant retries the open.
	ErrConnectionFailed = errors.New("tenant connection failed")

	// ErrEntityBindFailed means an entity's schema could not be bound to a
	// tenant connection.
	ErrEntityBindFailed = errors.New("entity bind failed")

	// ErrAlreadyBound is returned by a Binder when the underlying driver
	// reports the entity as already registered on the connection. The
	// registry recovers by returning the existing registration.
	ErrAlreadyBound = errors.New("entity already bound")

	// ErrRegistryClosed means the registry has been shut down.
	ErrRegistryClosed = errors.New("tenant registry closed")
)
