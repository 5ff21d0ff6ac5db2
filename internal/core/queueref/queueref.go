// Package queueref selects the message queue reference to use for the
// queue trigger.
package queueref

// Resolve picks the queue identifier: the ARN when set, otherwise the URL,
// otherwise empty. Empty is a valid terminal state — the deployment then
// proceeds without wiring the queue trigger.
func Resolve(arn, url string) string {
	if arn != "" {
		return arn
	}
	return url
}
