// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package kerrors

// Context is the explicit, per-goroutine analogue of a lazily-faulted-in
// per-thread ErrorInfo. A goroutine that wants last-error semantics creates
// one Context (typically once, near the top of its run loop) and calls
// SetKernel/SetHost/ThrowHost on it instead of relying on ambient
// thread-local storage, which Go does not provide.
//
// A zero-value Context is ready to use and behaves as if no error has ever
// been set: Last().Kernel == NoError until the first Set* call.
type Context struct {
	last Error
}

// NewContext returns a ready-to-use Context with the default ErrorInfo.
func NewContext() *Context {
	return &Context{}
}

// Last returns the most recently recorded error on this context. Safe to
// call before any Set*; returns the zero Error (Kernel == NoError).
func (c *Context) Last() Error {
	return c.last
}

// SetKernel installs a kernel error directly, with an optional host code
// when the kernel error did not originate from a host table lookup.
func (c *Context) SetKernel(code ErrorCode, host int64) {
	c.last = Error{Kernel: code, Host: host}
}

// SetHost maps host through table and installs the result.
func (c *Context) SetHost(host int64, table HostTable) {
	c.last = Error{Kernel: table.Lookup(host), Host: host}
}

// ThrowHost maps host through table and returns it as an error, while also
// recording it on the context, giving callers both a boolean-style check
// via Last() and a throwing-style error return from the same call.
func (c *Context) ThrowHost(host int64, table HostTable) error {
	c.SetHost(host, table)
	e := c.last
	return &e
}

// Throw records err's kernel/host codes (if it is a *Error) on the context
// and returns it unchanged, or wraps a plain error as GenFailure.
func (c *Context) Throw(err error) error {
	var kerr *Error
	if As(err, &kerr) {
		c.last = *kerr
		return err
	}
	c.last = Error{Kernel: GenFailure, Detail: err.Error()}
	e := c.last
	return &e
}
