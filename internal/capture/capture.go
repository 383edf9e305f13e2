// Package capture scopes redirection of the process stdout/stderr streams
// into per-call buffers. Engines are noisy; their chatter is attached to the
// result envelope as diagnostics rather than leaking onto the transport.
//
// The streams are process-wide resources, so callers must hold the gateway
// lock: at most one capture scope may be open at a time.
package capture

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Scoped invokes fn with os.Stdout and os.Stderr redirected into buffers for
// the dynamic extent of the call. The original streams are restored on every
// exit path, including panic. fn's error is returned untouched; capture only
// intercepts text.
func Scoped(fn func() error) (stdout, stderr string, err error) {
	outR, outW, perr := os.Pipe()
	if perr != nil {
		return "", "", fmt.Errorf("create stdout pipe: %w", perr)
	}
	errR, errW, perr := os.Pipe()
	if perr != nil {
		_ = outR.Close()
		_ = outW.Close()
		return "", "", fmt.Errorf("create stderr pipe: %w", perr)
	}

	origOut, origErr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = outW, errW

	outCh := drain(outR)
	errCh := drain(errR)

	defer func() {
		os.Stdout, os.Stderr = origOut, origErr
		_ = outW.Close()
		_ = errW.Close()
		stdout = <-outCh
		stderr = <-errCh
		_ = outR.Close()
		_ = errR.Close()
	}()

	err = fn()
	return
}

// drain copies everything written to r into a buffer and delivers the text
// once the write end closes.
func drain(r *os.File) <-chan string {
	ch := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		ch <- buf.String()
	}()
	return ch
}
