// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package platform

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrTimeout is a transient transport failure: the platform did not
	// answer within the configured request timeout.
	ErrTimeout = errors.New("platform request timed out")

	// ErrConnection is a transient transport failure: the platform could
	// not be reached or the connection was reset.
	ErrConnection = errors.New("platform connection failed")

	// ErrMalformed means the platform answered with a response that does
	// not satisfy the adapter contract.
	ErrMalformed = errors.New("malformed platform response")

	// ErrKeyUnavailable means the signing collaborator holds no key for
	// the requested identity.
	ErrKeyUnavailable = errors.New("signing key unavailable")
)

// IsRetryable reports whether the error is a transient transport failure
// worth retrying. Platform-level rejections and malformed responses are
// terminal.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrConnection)
}

// classifyTransport maps a raw transport error onto the adapter taxonomy.
func classifyTransport(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %s", ErrConnection, err)
}
