package pipeline

import "errors"

// ErrNoSignature reports a submission with an empty signature payload. It is
// a flow signal rather than a failure; callers send the user back to the
// start of the flow.
var ErrNoSignature = errors.New("no signature submitted")

// ErrorKind classifies pipeline failures so transport code can choose a
// status and message without inspecting wrapped causes.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindMissingParameters
	KindMalformedSignature
	KindUploadFailed
	KindRetrievalFailed
	KindImageEmbed
)

// Error wraps a pipeline failure with its classification.
type Error struct {
	Kind ErrorKind
	err  error
}

func (e *Error) Error() string {
	if e == nil || e.err == nil {
		return "pipeline error"
	}
	return e.err.Error()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

func missingParameters(err error) error  { return &Error{Kind: KindMissingParameters, err: err} }
func malformedSignature(err error) error { return &Error{Kind: KindMalformedSignature, err: err} }
func uploadFailed(err error) error       { return &Error{Kind: KindUploadFailed, err: err} }
func retrievalFailed(err error) error    { return &Error{Kind: KindRetrievalFailed, err: err} }
func imageEmbed(err error) error         { return &Error{Kind: KindImageEmbed, err: err} }

// KindOf extracts the classification from err, or KindUnknown when err is
// not a pipeline error.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}
