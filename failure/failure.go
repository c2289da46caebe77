// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package failure

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"
)

// A Kind is the failure category of a transport error, as reported by
// function Classify.
type Kind int

const (
	// Not indicates an error outside the taxonomy. Errors of this kind
	// are never reported to a failure handler.
	Not Kind = iota
	// Timeout indicates the request did not complete in time, or the
	// server closed the connection without sending any response.
	//
	// Function Classify returns Timeout if the error or any of its
	// wrapped causes has a Timeout() function that reports true, or is
	// context.DeadlineExceeded, os.ErrDeadlineExceeded, io.EOF or
	// io.ErrUnexpectedEOF.
	Timeout
	// Socket indicates a generic failure of the underlying network
	// connection, for example a connection reset by the peer.
	Socket
	// Protocol indicates the client could not speak HTTP to the remote
	// host: the connection was refused, the TLS handshake failed, or
	// the server sent something that is not a valid HTTP response.
	Protocol
	// Resolution indicates the host name could not be resolved.
	Resolution
	// kindSentinel provides the total number of kinds typed as a Kind.
	kindSentinel

	// numKinds provides the total number of kinds as an int.
	numKinds = int(kindSentinel)
)

var kindNames = []string{
	"unclassified",
	"timeout",
	"socket",
	"protocol",
	"resolution",
}

// Kinds returns a slice containing every classified kind, that is,
// every kind except Not.
func Kinds() []Kind {
	return []Kind{
		Timeout,
		Socket,
		Protocol,
		Resolution,
	}
}

// Name returns the name of the kind.
func (k Kind) Name() string {
	if k < 0 || int(k) >= numKinds {
		return kindNames[Not]
	}
	return kindNames[k]
}

// String returns the name of the kind.
func (k Kind) String() string {
	return k.Name()
}

// Classify returns the failure kind of the given error. A nil error,
// and an error outside the taxonomy, both produce the return value Not.
//
// Classify looks at wrapped cause errors contained within err, not
// just err itself. The rules are tried in order Timeout, Resolution,
// Protocol, Socket, so for example a DNS lookup that timed out is a
// Timeout and a refused connection is a Protocol failure even though
// both also look like socket errors.
func Classify(err error) Kind {
	if err == nil {
		return Not
	}

	if isTimeout(err) {
		return Timeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return Resolution
	}

	if isProtocol(err) {
		return Protocol
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return Socket
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return Socket
	}

	return Not
}

func isTimeout(err error) bool {
	if anyTimeout(err) {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, os.ErrDeadlineExceeded) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

// anyTimeout walks the whole chain. errors.As would stop at the first
// Timeout method, and *url.Error only consults its direct cause.
func anyTimeout(err error) bool {
	if t, ok := err.(hasTimeout); ok && t.Timeout() {
		return true
	}
	switch x := err.(type) {
	case interface{ Unwrap() error }:
		if inner := x.Unwrap(); inner != nil {
			return anyTimeout(inner)
		}
	case interface{ Unwrap() []error }:
		for _, inner := range x.Unwrap() {
			if inner != nil && anyTimeout(inner) {
				return true
			}
		}
	}
	return false
}

func isProtocol(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) && errno == syscall.ECONNREFUSED {
		return true
	}

	var recordHeaderErr tls.RecordHeaderError
	if errors.As(err, &recordHeaderErr) {
		return true
	}
	var alertErr tls.AlertError
	if errors.As(err, &alertErr) {
		return true
	}
	var verifyErr *tls.CertificateVerificationError
	if errors.As(err, &verifyErr) {
		return true
	}
	var hostnameErr x509.HostnameError
	if errors.As(err, &hostnameErr) {
		return true
	}
	var unknownAuthorityErr x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthorityErr) {
		return true
	}
	var certInvalidErr x509.CertificateInvalidError
	if errors.As(err, &certInvalidErr) {
		return true
	}
	var protocolErr *http.ProtocolError
	if errors.As(err, &protocolErr) {
		return true
	}

	// Remote TLS alerts and malformed responses have no exported type.
	s := err.Error()
	for _, fragment := range protocolFragments {
		if strings.Contains(s, fragment) {
			return true
		}
	}

	return false
}

var protocolFragments = []string{
	"tls: ",
	"malformed HTTP",
	"server gave HTTP response to HTTPS client",
}

type hasTimeout interface {
	Timeout() bool
}
