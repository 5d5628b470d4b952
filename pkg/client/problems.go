package client

import "errors"

// DefaultProblem is shown when a failure carries no text of its own.
const DefaultProblem = "An error occurred"

// Problems reduces the outcome of a client call to the ordered list of
// messages a page shows under the triggering form. Precedence:
//
//  1. an error carrying a structured error list: that list, verbatim;
//  2. an error carrying a structured message: that message;
//  3. a resolved call whose envelope failed: its errors, else its message,
//     else fallback;
//  4. any other error: its text, else fallback.
//
// ErrUnauthorized yields nil because it is handled globally, and a
// *ValidationError yields one message per rejected field. A successful
// outcome yields nil.
func Problems(res Outcome, err error, fallback string) []string {
	if fallback == "" {
		fallback = DefaultProblem
	}
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil
		}
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return validationErr.Messages()
		}
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			if len(httpErr.Errors) > 0 {
				return append([]string(nil), httpErr.Errors...)
			}
			if httpErr.Message != "" {
				return []string{httpErr.Message}
			}
		}
		if msg := err.Error(); msg != "" {
			return []string{msg}
		}
		return []string{fallback}
	}

	if res == nil {
		return nil
	}
	message, errs, failed := res.Failure()
	switch {
	case !failed:
		return nil
	case len(errs) > 0:
		return append([]string(nil), errs...)
	case message != "":
		return []string{message}
	default:
		return []string{fallback}
	}
}
