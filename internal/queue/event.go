// Package queue consumes moderation messages from an AMQP broker and
// applies them to the venue directory.
package queue

// Action is a moderation command.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionRefresh Action = "refresh"
)

// ModerationMessage is the payload of one moderation command. SubmissionID
// is ignored for refresh.
type ModerationMessage struct {
	SubmissionID string `json:"submissionId"`
	Action       Action `json:"action"`
}
