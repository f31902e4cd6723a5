package actions

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/go-github/v81/github"
)

// maxUpstreamMessageLen bounds raw upstream messages carried into outcomes so
// reports stay readable.
const maxUpstreamMessageLen = 40

// errorRule maps an upstream failure to a ReasonKind. Status 0 matches any
// HTTP status; an empty substring matches any message. Substring matching is
// case-insensitive. Rules are evaluated in order and the first match wins.
type errorRule struct {
	status    int
	substring string
	reason    ReasonKind
}

// deleteBranchRules classifies branch deletion failures. The table is data so
// it can be tested independently of the transport.
var deleteBranchRules = []errorRule{
	{status: http.StatusNotFound, reason: ReasonNotFound},
	{status: http.StatusUnprocessableEntity, substring: "protected", reason: ReasonProtected},
	{status: http.StatusUnprocessableEntity, substring: "required by", reason: ReasonRequiredByRule},
	{status: http.StatusUnprocessableEntity, substring: "ruleset", reason: ReasonRequiredByRule},
	{status: http.StatusUnprocessableEntity, substring: "open pull request", reason: ReasonOpenReference},
	{status: http.StatusForbidden, substring: "rate limit", reason: ReasonTransient},
	{status: http.StatusForbidden, reason: ReasonPermissionDenied},
	{status: http.StatusUnauthorized, reason: ReasonPermissionDenied},
	{status: http.StatusTooManyRequests, reason: ReasonTransient},
	{status: http.StatusBadGateway, reason: ReasonTransient},
	{status: http.StatusServiceUnavailable, reason: ReasonTransient},
	{status: http.StatusGatewayTimeout, reason: ReasonTransient},
}

// closePRRules classifies pull request closure failures.
var closePRRules = []errorRule{
	{status: http.StatusNotFound, reason: ReasonNotFound},
	{status: http.StatusForbidden, substring: "rate limit", reason: ReasonTransient},
	{status: http.StatusForbidden, reason: ReasonPermissionDenied},
	{status: http.StatusUnauthorized, reason: ReasonPermissionDenied},
	{status: http.StatusTooManyRequests, reason: ReasonTransient},
	{status: http.StatusBadGateway, reason: ReasonTransient},
	{status: http.StatusServiceUnavailable, reason: ReasonTransient},
	{status: http.StatusGatewayTimeout, reason: ReasonTransient},
}

// classifyError resolves err against a rule table, returning the matched
// reason and a bounded human-readable message.
func classifyError(rules []errorRule, err error) (ReasonKind, string) {
	status, msg := upstreamStatusAndMessage(err)
	lower := strings.ToLower(msg)
	for _, r := range rules {
		if r.status != 0 && r.status != status {
			continue
		}
		if r.substring != "" && !strings.Contains(lower, r.substring) {
			continue
		}
		return r.reason, msg
	}
	return ReasonUnknown, msg
}

func upstreamStatusAndMessage(err error) (int, string) {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		msg := ghErr.Message
		if msg == "" && ghErr.Response != nil {
			msg = ghErr.Response.Status
		}
		status := 0
		if ghErr.Response != nil {
			status = ghErr.Response.StatusCode
		}
		return status, truncateMessage(msg)
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return http.StatusForbidden, "rate limit exceeded"
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return http.StatusForbidden, "rate limit exceeded"
	}
	return 0, truncateMessage(err.Error())
}

// truncateMessage bounds msg to maxUpstreamMessageLen runes, never splitting
// a multi-byte character.
func truncateMessage(msg string) string {
	if utf8.RuneCountInString(msg) <= maxUpstreamMessageLen {
		return msg
	}
	return string([]rune(msg)[:maxUpstreamMessageLen])
}
