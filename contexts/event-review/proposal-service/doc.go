// Package proposalservice implements proposal review inside the event-review
// context.
//
// The module owns organizer-facing proposal search (text, status, track and
// review filters with stable ordering and pagination), the proposal status
// triad of deliberation, publication and speaker confirmation, reviewer
// ratings with their denormalized averages, and result publication with
// speaker email fan-out. Business rules live in application/domain layers and
// infrastructure stays behind ports and adapters.
package proposalservice
