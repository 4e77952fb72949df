// Package tree implements the shadow filesystem tree: an in-memory mirror
// of a directory subtree kept consistent with the real filesystem across
// structural mutations.
//
// This file contains error types and error classification.
package tree

import (
	"errors"
	"fmt"
	"os"

	"shadowtree/internal/logging"
)

var (
	errLogger = logging.GetLogger().WithPrefix("error")

	// ErrNotFound indicates a path or node doesn't exist
	ErrNotFound = errors.New("path not found")

	// ErrInvalidParent indicates the operation needs a directory parent
	// and got something else
	ErrInvalidParent = errors.New("parent is not a directory")

	// ErrPolicyViolation indicates an operation that is rejected by policy
	// before any disk access, such as deleting the tree root
	ErrPolicyViolation = errors.New("operation not permitted by policy")

	// ErrBadPattern indicates a malformed search pattern
	ErrBadPattern = errors.New("malformed search pattern")

	// ErrExists indicates the target path already exists
	ErrExists = errors.New("path already exists")

	// ErrNotRegularFile indicates the path refers to something other than
	// a regular file
	ErrNotRegularFile = errors.New("not a regular file")

	// ErrInvalidName indicates an empty name or one containing separators
	ErrInvalidName = errors.New("invalid name")

	// ErrNotChild indicates the target node is not a child of the given parent
	ErrNotChild = errors.New("node is not a child of the given parent")

	// ErrStaleNode indicates a node reference from before a Refresh
	ErrStaleNode = errors.New("node reference is stale")
)

// Error wraps tree operation errors with context about the operation and
// affected path to provide more detailed error information.
type Error struct {
	Op   string // Operation that failed (e.g., "build", "rename")
	Path string // Affected path
	Err  error  // Underlying error
}

// Error implements the error interface, providing a formatted error message
func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("operation %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("operation %s on %s failed: %v", e.Op, e.Path, e.Err)
}

// Unwrap implements error unwrapping for the errors.Is/As functions
func (e *Error) Unwrap() error {
	return e.Err
}

// newError creates a new Error with the given operation, path, and underlying error
func newError(op string, path string, err error) *Error {
	opErr := &Error{
		Op:   op,
		Path: path,
		Err:  err,
	}
	errLogger.Debug("Created new tree error: %v", opErr)
	return opErr
}

// ErrorKind classifies a tree error for callers that branch on failure
// category rather than on individual sentinel values.
type ErrorKind int

const (
	// KindIO covers underlying filesystem failures (permission,
	// already-exists, disk full, cross-device move) and anything not
	// classified more specifically
	KindIO ErrorKind = iota
	// KindNotFound covers absent paths and nodes
	KindNotFound
	// KindInvalidParent covers operations handed a non-directory parent
	KindInvalidParent
	// KindPattern covers malformed search patterns
	KindPattern
	// KindPolicy covers operations rejected before any disk access
	KindPolicy
)

// String returns a string representation of the ErrorKind.
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalidParent:
		return "invalid parent"
	case KindPattern:
		return "bad pattern"
	case KindPolicy:
		return "policy violation"
	default:
		return "io error"
	}
}

// KindOf maps an error returned by any tree operation to its ErrorKind.
// Unknown or wrapped filesystem errors classify as KindIO.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, os.ErrNotExist),
		errors.Is(err, ErrNotChild):
		return KindNotFound
	case errors.Is(err, ErrInvalidParent):
		return KindInvalidParent
	case errors.Is(err, ErrBadPattern):
		return KindPattern
	case errors.Is(err, ErrPolicyViolation), errors.Is(err, ErrStaleNode):
		return KindPolicy
	default:
		return KindIO
	}
}

// Common operation names for consistent logging and error reporting
const (
	OpBuild   = "build"   // Scanning a directory subtree
	OpLookup  = "lookup"  // Finding a node by name
	OpResolve = "resolve" // Resolving a relative path
	OpMkdir   = "mkdir"   // Creating a new directory
	OpCreate  = "create"  // Creating a new file
	OpRemove  = "remove"  // Removing a file or directory
	OpRename  = "rename"  // Renaming/moving a file or directory
	OpImport  = "import"  // Copying an outside file into the tree
	OpSearch  = "search"  // Pattern search over node names
	OpRefresh = "refresh" // Discarding and rebuilding the tree
	OpPreview = "preview" // Reading the head of a file
)
