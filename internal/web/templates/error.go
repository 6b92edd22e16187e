// Package templates holds the HTML fragments returned to HTMX clients.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// ErrorAlert renders a dismissible error box with the user-facing message,
// the suggested action and the error code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div class="error-alert" role="alert"><p class="error-message">`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, templ.EscapeString(message)); err != nil {
			return err
		}
		io.WriteString(w, `</p>`)
		if action != "" {
			io.WriteString(w, `<p class="error-action">`)
			io.WriteString(w, templ.EscapeString(action))
			io.WriteString(w, `</p>`)
		}
		io.WriteString(w, `<span class="error-code">`)
		io.WriteString(w, templ.EscapeString(code))
		_, err := io.WriteString(w, `</span></div>`)
		return err
	})
}
