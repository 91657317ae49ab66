package retry

import "time"

// Do runs f up to attempts times, sleeping delay between tries, as long as
// shouldRetry approves the error. The last error is returned when the budget
// is exhausted or shouldRetry declines.
func Do(attempts int, delay time.Duration, shouldRetry func(err error, attempt int) bool, f func() error) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = f()
		if err == nil {
			return nil
		}
		if attempt == attempts || !shouldRetry(err, attempt) {
			return err
		}
		time.Sleep(delay)
	}
	return err
}
