package keystack

import "errors"

// Sentinel errors returned by keystack operations.
//
// Callers should use [errors.Is] to check error types:
//
//	if err := s.PopKey(k); errors.Is(err, keystack.ErrKeyNotFound) {
//	    // k has no live entries
//	}
var (
	// ErrEmpty indicates the stack holds no entries.
	//
	// Returned by [Stack.Pop], [Stack.Top] and [Stack.TopPtr] when
	// Len() == 0, and by [Stack.PopKey], [Stack.TopKey] and
	// [Stack.TopKeyPtr] before the key is even considered.
	//
	// The stack is left unchanged. Check Len() first to avoid it.
	ErrEmpty = errors.New("keystack: empty")

	// ErrKeyNotFound indicates the requested key has no live entries.
	//
	// Returned by [Stack.PopKey], [Stack.TopKey] and [Stack.TopKeyPtr]
	// when the stack is non-empty but Count(key) == 0. A key whose
	// entries were all popped behaves exactly like a key never pushed.
	//
	// The stack is left unchanged. Check Count(key) first to avoid it.
	ErrKeyNotFound = errors.New("keystack: key not found")
)
