package inference

import "errors"

// Failure modes of the upstream model services, by origin rather than by
// transport detail. The HTTP boundary maps these onto user-facing
// statuses: ErrModelLoading is a "try again shortly" condition, the rest
// are hard failures.
var (
	// ErrModelLoading means the hosted model is cold-starting. Retryable.
	ErrModelLoading = errors.New("model is loading, try again shortly")

	// ErrUnsupportedFormat means the image bytes were rejected by the model.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrPayloadTooLarge means the image exceeded the service's size limit.
	ErrPayloadTooLarge = errors.New("image payload too large")

	// ErrCaptionUnavailable means captioning failed on both the primary
	// and the fallback model; no usable caption exists.
	ErrCaptionUnavailable = errors.New("caption unavailable from all providers")
)

// IsRetryable reports whether the caller should surface a transient
// "try again" condition instead of a permanent failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrModelLoading)
}
