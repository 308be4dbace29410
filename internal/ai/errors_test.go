package ai

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestTypedErrorsExposeAPIError(t *testing.T) {
	base := &APIError{StatusCode: 429, Code: "rate_limit", RequestID: "req_1", Message: "slow down"}
	err := fmt.Errorf("generate: %w", &RateLimitError{APIError: base, RetryAfter: 1500 * time.Millisecond})

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr != base {
		t.Fatalf("expected to reach the APIError through the wrapper")
	}
	want := "generate: rate limited (retry after 2s): api error: status=429 code=rate_limit request_id=req_1 message=slow down"
	if err.Error() != want {
		t.Fatalf("unexpected message:\n got %q\nwant %q", err.Error(), want)
	}
	if got := (&APIError{StatusCode: 500}).Error(); got != "api error: status=500" {
		t.Fatalf("empty fields should be omitted, got %q", got)
	}
}

func TestRetryable(t *testing.T) {
	api := &APIError{StatusCode: 500}
	cases := []struct {
		err  error
		want bool
	}{
		{&ServerError{APIError: api}, true},
		{fmt.Errorf("wrapped: %w", &RateLimitError{APIError: api}), true},
		{&AuthError{APIError: api}, false},
		{&QuotaExceededError{APIError: api}, false},
		{&BadRequestError{APIError: api}, false},
		{&ModelNotFoundError{APIError: api}, false},
		{&UnreachableError{Err: errors.New("refused")}, false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := Retryable(tc.err); got != tc.want {
			t.Errorf("Retryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
