// Package checkout opens payment sessions with the external providers and
// converges their confirmation signals onto the enrollment store.
//
// Session creation leaves no local state behind: the (user, course) pair is
// baked into the provider session as metadata and echoed back verbatim on
// confirmation, so an abandoned checkout has nothing to clean up. Every
// confirmation path ends in enrollment.Reconcile, never in its own mutation.
package checkout

import "errors"

// ErrBadMetadata marks a confirmation whose correlation metadata is missing
// or malformed. Retrying the same payload can never fix it, so webhook
// deliveries carrying it are acknowledged and dropped.
var ErrBadMetadata = errors.New("missing or malformed session metadata")

const (
	metadataUserID   = "userId"
	metadataCourseID = "courseId"
)

type CheckoutNew struct {
	CourseID string `json:"courseId" validate:"required,uuid"`
}

type CheckoutRedirect struct {
	RedirectURL string `json:"redirectUrl"`
}

type VerifyResult struct {
	Enrolled bool `json:"enrolled"`
}
