package utils

import "time"

// Retry runs fn up to attempts times. The wait between tries starts at delay
// and grows by delay after each failure. There is no cancellation: callers
// cannot abort an in-flight retry loop.
func Retry(attempts int, delay time.Duration, fn func() error) error {
    var err error
    for i := 0; i < attempts; i++ {
        if err = fn(); err == nil {
            return nil
        }
        if i < attempts-1 {
            time.Sleep(delay * time.Duration(i+1))
        }
    }
    return err
}
