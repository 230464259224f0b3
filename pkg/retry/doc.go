// Package retry runs a bounded, strictly sequential chain of attempts against
// a fixed delay schedule.
//
// The schedule lists the wait before each attempt; the first entry is
// normally zero. With the default schedule [0, 2s, 5s] a logical call makes at
// most three attempts and waits at most seven seconds between them. After each
// failed attempt the failure is classified exactly once:
//
//   - Permanent: the chain stops and returns a failure.PermanentUpstream error.
//   - Transient with attempts left: wait for the next delay and try again.
//   - Transient on the last attempt: return failure.RetriesExhausted wrapping
//     the last failure.
//
// Waits use a cancellable timer and block only the calling goroutine.
//
//	s := retry.New(retry.DefaultSchedule())
//	resp, err := retry.Do(ctx, s, "analyze", func(ctx context.Context, n int) (*Response, error) {
//		return send(ctx)
//	})
package retry
